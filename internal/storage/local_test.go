package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ibheros/studio/internal/config"
	"github.com/ibheros/studio/internal/constants"
)

func TestLocalStorePutWritesFileAndReturnsURL(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/uploads")
	payload := []byte("fake-png")

	url, err := Put(context.Background(), store, "posts/images/1_ab_cover.png", bytes.NewReader(payload), int64(len(payload)), "image/png")
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if url != "/uploads/posts/images/1_ab_cover.png" {
		t.Fatalf("unexpected url: %s", url)
	}
	got, err := os.ReadFile(filepath.Join(dir, "posts", "images", "1_ab_cover.png"))
	if err != nil {
		t.Fatalf("read stored file failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("unexpected stored content: %q", got)
	}
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/uploads")
	err := store.Upload(context.Background(), "../escape.txt", strings.NewReader("x"), 1, "text/plain")
	if err == nil {
		t.Fatalf("expected traversal key to be rejected")
	}
}

func TestLocalStoreShortWriteLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/uploads")
	err := store.Upload(context.Background(), "posts/videos/a.mp4", strings.NewReader("abc"), 10, "video/mp4")
	if err == nil {
		t.Fatalf("expected short write error")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "posts", "videos", "a.mp4")); !os.IsNotExist(statErr) {
		t.Fatalf("partial object must not be visible")
	}
}

func TestBuildKeyLayout(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	key := BuildKey(constants.MediaPrefixPostImages, "my cover (1).png", now)
	if !strings.HasPrefix(key, "posts/images/1700000000123_") {
		t.Fatalf("unexpected key prefix: %s", key)
	}
	if !strings.HasSuffix(key, "_my_cover__1_.png") {
		t.Fatalf("unexpected key suffix: %s", key)
	}
	if BuildKey(constants.MediaPrefixPostImages, "a.png", now) == BuildKey(constants.MediaPrefixPostImages, "a.png", now) {
		t.Fatalf("keys for the same name and instant must differ")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd": "passwd",
		"微积分.mp4":          "微积分.mp4",
		"":                 "file",
		"...":              "file",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Fatalf("sanitize %q: got %q want %q", in, got, want)
		}
	}
}

func TestNewSelectsDriver(t *testing.T) {
	store, err := New(config.MediaConfig{Driver: "local", Local: config.LocalMediaConfig{Dir: t.TempDir(), BaseURL: "/m"}})
	if err != nil {
		t.Fatalf("new local store failed: %v", err)
	}
	if _, ok := store.(*LocalStore); !ok {
		t.Fatalf("expected local store, got %T", store)
	}
	if _, err := New(config.MediaConfig{Driver: "ftp"}); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}
