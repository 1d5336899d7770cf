package storage

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
)

func setupFakeS3(t *testing.T) *S3Store {
	t.Helper()
	backend := s3mem.New()
	faker := gofakes3.New(backend)
	server := httptest.NewServer(faker.Server())
	t.Cleanup(server.Close)

	bucket := "taskboard-test"
	if err := backend.CreateBucket(bucket); err != nil {
		t.Fatalf("create bucket: %v", err)
	}

	store, err := NewS3Store(S3Config{
		Endpoint:        server.URL,
		Region:          "us-east-1",
		Bucket:          bucket,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		Prefix:          "attachments",
	})
	if err != nil {
		t.Fatalf("NewS3Store: %v", err)
	}
	return store
}

func TestS3StoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupFakeS3(t)

	payload := []byte("report body \x00\x01")
	if err := store.Put(ctx, "1700000000000-abc.pdf", payload); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rc, size, err := store.Open(ctx, "1700000000000-abc.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(payload) || size != int64(len(payload)) {
		t.Errorf("Open = (%q, %d), want (%q, %d)", got, size, payload, len(payload))
	}

	if err := store.Remove(ctx, "1700000000000-abc.pdf"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, _, err := store.Open(ctx, "1700000000000-abc.pdf"); !errors.Is(err, ErrNotExist) {
		t.Errorf("Open after Remove error = %v, want ErrNotExist", err)
	}
	if err := store.Remove(ctx, "1700000000000-abc.pdf"); err != nil {
		t.Errorf("second Remove = %v, want nil", err)
	}
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	if _, err := NewS3Store(S3Config{Region: "us-east-1"}); err == nil {
		t.Fatal("NewS3Store without bucket succeeded, want error")
	}
}

func TestS3StoreHealthCheck(t *testing.T) {
	store := setupFakeS3(t)
	if err := store.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}

	store.bucket = "missing-bucket"
	if err := store.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck on a missing bucket succeeded, want error")
	}
}
