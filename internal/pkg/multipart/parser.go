// Package multipart splits buffered multipart/form-data bodies into file
// parts. It works on a complete byte slice so it can be tested without a
// transport.
package multipart

import (
	"bytes"
	"regexp"
	"strings"
)

var (
	headerSeparator = []byte("\r\n\r\n")

	filenamePattern    = regexp.MustCompile(`filename="([^"]*)"`)
	contentTypePattern = regexp.MustCompile(`(?im)^content-type:[ \t]*([^\r\n]*)`)
)

// Part is one file found in a multipart body. ContentType is empty when the
// part did not declare one.
type Part struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Parse scans body for parts delimited by "--" + boundary and returns the
// ones that carry a filename, in body order. Parts without a header block
// are skipped. Data is copied out of body.
func Parse(body []byte, boundary string) []Part {
	delim := []byte("--" + boundary)

	first := bytes.Index(body, delim)
	if first < 0 {
		return nil
	}
	// skip the delimiter and the CRLF that ends its line
	start := first + len(delim) + 2

	var parts []Part
	for start <= len(body) {
		next := bytes.Index(body[start:], delim)
		if next < 0 {
			break
		}
		end := start + next

		if part, ok := parsePart(body, start, end-2); ok {
			parts = append(parts, part)
		}

		start = end + len(delim) + 2
	}

	return parts
}

// parsePart reads the part occupying body[start:end]. end excludes the CRLF
// that precedes the next delimiter.
func parsePart(body []byte, start, end int) (Part, bool) {
	if end < start {
		return Part{}, false
	}
	raw := body[start:end]

	headerEnd := bytes.Index(raw, headerSeparator)
	if headerEnd < 0 {
		return Part{}, false
	}
	header := string(raw[:headerEnd])

	m := filenamePattern.FindStringSubmatch(header)
	if m == nil || m[1] == "" {
		return Part{}, false
	}

	var contentType string
	if ct := contentTypePattern.FindStringSubmatch(header); ct != nil {
		contentType = strings.TrimSpace(ct[1])
	}

	return Part{
		Filename:    m[1],
		ContentType: contentType,
		Data:        bytes.Clone(raw[headerEnd+len(headerSeparator):]),
	}, true
}
