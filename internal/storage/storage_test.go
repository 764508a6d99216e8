package storage_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/clipscreen/clipscreen/internal/storage"
)

func TestNewStorageRequiresConfig(t *testing.T) {
	ctx := context.Background()

	// Should not panic with valid config (will fail to connect, but that's OK)
	_, err := storage.New(ctx, storage.Config{
		Endpoint:  "http://localhost:9000",
		Bucket:    "test",
		AccessKey: "test",
		SecretKey: "test",
	})
	if err != nil {
		t.Fatalf("expected no error creating storage client, got: %v", err)
	}
}

func TestNilStorage(t *testing.T) {
	var s *storage.Storage

	if err := s.StoreVideo(context.Background(), "k", "video/mp4", strings.NewReader("x")); err == nil {
		t.Error("StoreVideo on nil storage should error")
	}
	if _, err := s.PlaybackURL(context.Background(), "k", time.Minute); err == nil {
		t.Error("PlaybackURL on nil storage should error")
	}
	// Deleting from nowhere is a no-op so the retention worker can run
	// unconditionally.
	if err := s.DeleteObject(context.Background(), "k"); err != nil {
		t.Errorf("DeleteObject on nil storage = %v, want nil", err)
	}
}
