package storefs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-questionpaper/paper"
)

// Store keeps generated papers in a directory. Writes go to a temp file that is
// renamed into place, so a failed write never leaves a partial PDF behind.
type Store struct {
	Root    string
	BaseURL string
	Now     func() time.Time
}

// NewStore creates a filesystem-backed artifact store.
func NewStore(root, baseURL string) *Store {
	return &Store{Root: root, BaseURL: baseURL, Now: time.Now}
}

// Put stores an artifact on disk.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, meta paper.ArtifactMeta) (paper.ArtifactRef, error) {
	_ = ctx
	target, err := s.prepare(key)
	if err != nil {
		return paper.ArtifactRef{}, err
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return paper.ArtifactRef{}, err
	}

	size, err := writeAtomic(dir, target, ".paper-*", r)
	if err != nil {
		return paper.ArtifactRef{}, err
	}

	meta.Size = size
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = s.now()
	}
	if meta.ContentType == "" {
		meta.ContentType = mime.TypeByExtension(filepath.Ext(target))
	}
	if meta.Filename == "" {
		meta.Filename = filepath.Base(target)
	}

	payload, err := json.Marshal(meta)
	if err != nil {
		return paper.ArtifactRef{}, err
	}
	if _, err := writeAtomic(dir, metaPath(target), ".meta-*", strings.NewReader(string(payload))); err != nil {
		_ = os.Remove(target)
		return paper.ArtifactRef{}, err
	}

	return paper.ArtifactRef{Key: key, Meta: meta}, nil
}

// Open reads an artifact from disk.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, paper.ArtifactMeta, error) {
	_ = ctx
	target, err := s.prepare(key)
	if err != nil {
		return nil, paper.ArtifactMeta{}, err
	}

	file, err := os.Open(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, paper.ArtifactMeta{}, paper.NewError(paper.KindNotFound, fmt.Sprintf("artifact %q not found", key), err)
		}
		return nil, paper.ArtifactMeta{}, err
	}

	meta := readMeta(target)
	if meta.ContentType == "" {
		meta.ContentType = mime.TypeByExtension(filepath.Ext(target))
	}
	if meta.Size == 0 {
		if info, err := file.Stat(); err == nil {
			meta.Size = info.Size()
			if meta.CreatedAt.IsZero() {
				meta.CreatedAt = info.ModTime()
			}
		}
	}
	return file, meta, nil
}

// Delete removes an artifact and its metadata. Missing files are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_ = ctx
	target, err := s.prepare(key)
	if err != nil {
		return err
	}
	for _, name := range []string{target, metaPath(target)} {
		if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// PathFor returns the absolute file path for key.
func (s *Store) PathFor(key string) (string, error) {
	return s.prepare(key)
}

// URLFor returns the public URL for key, or "" without a BaseURL.
func (s *Store) URLFor(key string) string {
	if s == nil || s.BaseURL == "" {
		return ""
	}
	rel, err := cleanKey(key)
	if err != nil {
		return ""
	}
	segments := strings.Split(rel, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.TrimRight(s.BaseURL, "/") + "/" + strings.Join(segments, "/")
}

func (s *Store) prepare(key string) (string, error) {
	if s == nil {
		return "", paper.NewError(paper.KindInternal, "store is nil", nil)
	}
	if s.Root == "" {
		return "", paper.NewError(paper.KindValidation, "store root is required", nil)
	}
	if key == "" {
		return "", paper.NewError(paper.KindValidation, "artifact key is required", nil)
	}
	rel, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", err
	}
	target := filepath.Join(root, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", paper.NewError(paper.KindValidation, "artifact key escapes root", nil)
	}
	return target, nil
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func cleanKey(key string) (string, error) {
	rel := strings.TrimPrefix(path.Clean("/"+key), "/")
	if rel == "" || rel == "." {
		return "", paper.NewError(paper.KindValidation, "invalid artifact key", nil)
	}
	return rel, nil
}

func writeAtomic(dir, target, pattern string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	size, err := io.Copy(tmp, r)
	if err != nil {
		return 0, err
	}
	if err := tmp.Sync(); err != nil {
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	return size, os.Rename(tmp.Name(), target)
}

func readMeta(target string) paper.ArtifactMeta {
	data, err := os.ReadFile(metaPath(target))
	if err != nil {
		return paper.ArtifactMeta{}
	}
	var meta paper.ArtifactMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return paper.ArtifactMeta{}
	}
	return meta
}

func metaPath(target string) string {
	return target + ".meta.json"
}
