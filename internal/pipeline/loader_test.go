package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDirLoader(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte("# A"), 0o644); err != nil {
		t.Fatal(err)
	}
	load := DirLoader(dir)
	ctx := context.Background()

	data, err := load(ctx, "a.md")
	if err != nil || string(data) != "# A" {
		t.Fatalf("got %q, %v", data, err)
	}
	if _, err := load(ctx, "missing.md"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
	if _, err := load(ctx, "../a.md"); err == nil {
		t.Error("expected error for path outside dir")
	}
}
