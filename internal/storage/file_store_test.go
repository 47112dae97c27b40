package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStorePutAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	key := "journals/user-1/abc.wav"
	if err := store.Put(context.Background(), key, strings.NewReader("RIFF"), 4, "audio/wav"); err != nil {
		t.Fatalf("put: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "journals", "user-1", "abc.wav"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "RIFF" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := store.Delete(context.Background(), key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "journals", "user-1", "abc.wav")); !os.IsNotExist(err) {
		t.Fatalf("file should be gone, stat err=%v", err)
	}
	if err := store.Delete(context.Background(), key); err != nil {
		t.Fatalf("deleting a missing file should succeed: %v", err)
	}
}

func TestFileStoreKeepsKeysInsideBase(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(filepath.Join(dir, "base"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	path, err := store.Path("../../etc/passwd")
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if !strings.HasPrefix(path, filepath.Join(dir, "base")) {
		t.Fatalf("key escaped the base dir: %s", path)
	}

	if err := store.Put(context.Background(), " ", strings.NewReader("x"), 1, ""); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if _, err := store.Path("../.."); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for dot-only key, got %v", err)
	}
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFileStore("  "); err == nil {
		t.Fatalf("expected error for empty base path")
	}
}
