package storefs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-questionpaper/paper"
)

func TestStore_PutOpenDelete(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root, "")

	ref, err := store.Put(context.Background(), "math_20260101T000000Z_abc.pdf", bytes.NewBufferString("%PDF-1.3"), paper.ArtifactMeta{
		ContentType: "application/pdf",
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if ref.Meta.Size != 8 {
		t.Fatalf("expected size 8, got %d", ref.Meta.Size)
	}
	if ref.Meta.CreatedAt.IsZero() || ref.Meta.Filename != "math_20260101T000000Z_abc.pdf" {
		t.Fatalf("expected defaults filled, got %+v", ref.Meta)
	}

	reader, meta, err := store.Open(context.Background(), ref.Key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(reader)
	_ = reader.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "%PDF-1.3" {
		t.Fatalf("expected payload, got %q", string(data))
	}
	if meta.ContentType != "application/pdf" {
		t.Fatalf("expected content type, got %q", meta.ContentType)
	}

	entries, _ := os.ReadDir(root)
	if len(entries) != 2 {
		t.Fatalf("expected artifact and metadata only, got %d entries", len(entries))
	}

	if err := store.Delete(context.Background(), ref.Key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, _, err = store.Open(context.Background(), ref.Key)
	var paperErr *paper.Error
	if !errors.As(err, &paperErr) || paperErr.Kind != paper.KindNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := store.Delete(context.Background(), ref.Key); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
}

func TestStore_KeysStayInsideRoot(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root, "")

	ref, err := store.Put(context.Background(), "../../escape.pdf", bytes.NewBufferString("x"), paper.ArtifactMeta{})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	path, err := store.PathFor(ref.Key)
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	abs, _ := filepath.Abs(root)
	if path != filepath.Join(abs, "escape.pdf") {
		t.Fatalf("expected key to be rooted, got %s", path)
	}

	for _, key := range []string{"", "/", ".."} {
		if _, err := store.PathFor(key); paper.KindFromError(err) != paper.KindValidation {
			t.Fatalf("expected validation error for %q, got %v", key, err)
		}
	}
}

func TestStore_URLFor(t *testing.T) {
	store := NewStore(t.TempDir(), "https://example.test/papers/")
	if got := store.URLFor("2026/math final.pdf"); got != "https://example.test/papers/2026/math%20final.pdf" {
		t.Fatalf("unexpected url %q", got)
	}
	if got := NewStore(t.TempDir(), "").URLFor("a.pdf"); got != "" {
		t.Fatalf("expected empty url without base, got %q", got)
	}
}

func TestStore_ImplementsPaperInterfaces(t *testing.T) {
	var _ paper.ArtifactStore = (*Store)(nil)
	var _ paper.Locator = (*Store)(nil)
}
