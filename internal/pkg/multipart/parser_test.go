package multipart

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func buildBody(boundary string, parts ...string) []byte {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString(p)
		b.WriteString("\r\n")
	}
	b.WriteString("--" + boundary + "--\r\n")
	return []byte(b.String())
}

func filePart(name, contentType, data string) string {
	header := fmt.Sprintf("Content-Disposition: form-data; name=\"file\"; filename=\"%s\"\r\n", name)
	if contentType != "" {
		header += "Content-Type: " + contentType + "\r\n"
	}
	return header + "\r\n" + data
}

func TestParseSinglePart(t *testing.T) {
	body := buildBody("XYZ", filePart("a.txt", "", "hello"))

	parts := Parse(body, "XYZ")
	if len(parts) != 1 {
		t.Fatalf("len(parts) = %d, want 1", len(parts))
	}
	if parts[0].Filename != "a.txt" {
		t.Errorf("Filename = %q, want a.txt", parts[0].Filename)
	}
	if string(parts[0].Data) != "hello" {
		t.Errorf("Data = %q, want hello", parts[0].Data)
	}
	if parts[0].ContentType != "" {
		t.Errorf("ContentType = %q, want empty", parts[0].ContentType)
	}
}

func TestParseMultipleParts(t *testing.T) {
	binary := string([]byte{0x00, 0xff, '\r', '\n', 0x10, '-', '-'})
	body := buildBody("b0undary",
		filePart("one.png", "image/png", binary),
		filePart("two.txt", "text/plain", "second file\r\nwith lines"),
		filePart("three.bin", "application/octet-stream", ""),
	)

	parts := Parse(body, "b0undary")
	if len(parts) != 3 {
		t.Fatalf("len(parts) = %d, want 3", len(parts))
	}

	want := []Part{
		{Filename: "one.png", ContentType: "image/png", Data: []byte(binary)},
		{Filename: "two.txt", ContentType: "text/plain", Data: []byte("second file\r\nwith lines")},
		{Filename: "three.bin", ContentType: "application/octet-stream", Data: []byte{}},
	}
	for i, w := range want {
		got := parts[i]
		if got.Filename != w.Filename || got.ContentType != w.ContentType {
			t.Errorf("part %d = (%q, %q), want (%q, %q)", i, got.Filename, got.ContentType, w.Filename, w.ContentType)
		}
		if !bytes.Equal(got.Data, w.Data) {
			t.Errorf("part %d data = %q, want %q", i, got.Data, w.Data)
		}
	}
}

func TestParseDropsFieldsWithoutFilename(t *testing.T) {
	body := buildBody("XYZ",
		"Content-Disposition: form-data; name=\"description\"\r\n\r\nsome text",
		filePart("keep.txt", "text/plain", "kept"),
		"Content-Disposition: form-data; name=\"empty\"; filename=\"\"\r\n\r\n",
	)

	parts := Parse(body, "XYZ")
	if len(parts) != 1 {
		t.Fatalf("len(parts) = %d, want 1", len(parts))
	}
	if parts[0].Filename != "keep.txt" {
		t.Errorf("Filename = %q, want keep.txt", parts[0].Filename)
	}
}

func TestParseSkipsPartWithoutHeaderBlock(t *testing.T) {
	body := buildBody("XYZ",
		"Content-Disposition: form-data; name=\"file\"; filename=\"broken.txt\"",
		filePart("ok.txt", "", "fine"),
	)

	parts := Parse(body, "XYZ")
	if len(parts) != 1 || parts[0].Filename != "ok.txt" {
		t.Fatalf("parts = %+v, want only ok.txt", parts)
	}
}

func TestParseNoDelimiter(t *testing.T) {
	if parts := Parse([]byte("just some bytes"), "XYZ"); len(parts) != 0 {
		t.Fatalf("len(parts) = %d, want 0", len(parts))
	}
	if parts := Parse(nil, "XYZ"); len(parts) != 0 {
		t.Fatalf("len(parts) = %d, want 0", len(parts))
	}
}

func TestParseWithoutClosingDelimiter(t *testing.T) {
	body := []byte("--XYZ\r\n" + filePart("a.txt", "", "hello") + "\r\n")

	if parts := Parse(body, "XYZ"); len(parts) != 0 {
		t.Fatalf("len(parts) = %d, want 0 when no delimiter follows the part", len(parts))
	}
}

func TestParseCopiesData(t *testing.T) {
	body := buildBody("XYZ", filePart("a.txt", "", "hello"))
	parts := Parse(body, "XYZ")
	if len(parts) != 1 {
		t.Fatalf("len(parts) = %d, want 1", len(parts))
	}

	for i := range body {
		body[i] = 'x'
	}
	if string(parts[0].Data) != "hello" {
		t.Errorf("Data = %q after mutating the input, want hello", parts[0].Data)
	}
}

func TestParseLengthsMatchInput(t *testing.T) {
	sizes := []int{0, 1, 2, 511, 4096, 70000}
	var raw []string
	for i, n := range sizes {
		raw = append(raw, filePart(fmt.Sprintf("f%d.bin", i), "application/octet-stream", strings.Repeat("a", n)))
	}

	parts := Parse(buildBody("----WebKitFormBoundaryZ", raw...), "----WebKitFormBoundaryZ")
	if len(parts) != len(sizes) {
		t.Fatalf("len(parts) = %d, want %d", len(parts), len(sizes))
	}
	for i, n := range sizes {
		if len(parts[i].Data) != n {
			t.Errorf("part %d length = %d, want %d", i, len(parts[i].Data), n)
		}
	}
}

func TestParseContentTypeOnlyFromHeaderLine(t *testing.T) {
	tests := []struct {
		name string
		part string
		want string
	}{
		{"in filename", filePart("content-type: evil.txt", "", "x"), ""},
		{"in filename with header", filePart("Content-Type: text/html.txt", "image/png", "x"), "image/png"},
		{"lowercase header", "Content-Disposition: form-data; name=\"f\"; filename=\"a.txt\"\r\ncontent-type: text/plain\r\n\r\nx", "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts := Parse(buildBody("B", tt.part), "B")
			if len(parts) != 1 {
				t.Fatalf("len(parts) = %d, want 1", len(parts))
			}
			if parts[0].ContentType != tt.want {
				t.Errorf("ContentType = %q, want %q", parts[0].ContentType, tt.want)
			}
		})
	}
}
