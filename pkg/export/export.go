package export

import (
	"bytes"
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/vango-dev/weft/pkg/render"
)

// ContentTypeHTML is the content type of page snapshots.
const ContentTypeHTML = "text/html; charset=utf-8"

// Export errors.
var (
	// ErrInvalidName is returned for empty names or names that escape the
	// store root.
	ErrInvalidName = errors.New("export: invalid snapshot name")

	// ErrTooLarge is returned when a snapshot exceeds the store's limit.
	ErrTooLarge = errors.New("export: snapshot too large")
)

// Snapshot is one stored page.
type Snapshot struct {
	Name        string
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

// Store persists snapshots and returns where each one ended up.
type Store interface {
	Put(ctx context.Context, snap *Snapshot) (location string, err error)
}

// Page renders page with r and writes it to store under name.
func Page(ctx context.Context, store Store, r *render.Renderer, name string, page render.PageData) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderPage(&buf, page); err != nil {
		return "", err
	}
	return store.Put(ctx, &Snapshot{
		Name:        name,
		ContentType: ContentTypeHTML,
		Body:        buf.Bytes(),
		CreatedAt:   time.Now(),
	})
}

// cleanName validates a slash-separated snapshot name.
func cleanName(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return "", ErrInvalidName
	}
	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidName
	}
	return clean, nil
}
