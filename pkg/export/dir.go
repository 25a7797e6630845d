package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// DirStore writes snapshots below a local directory. Each snapshot gets a
// sidecar "<name>.meta.json" with its content type and creation time.
type DirStore struct {
	dir     string
	maxSize int64
}

type dirMeta struct {
	ContentType string    `json:"content_type"`
	Size        int       `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewDirStore creates the directory if needed.
//
// Parameters:
//   - dir: Directory to write snapshots into
//   - maxSize: Maximum snapshot size in bytes (0 = no limit)
func NewDirStore(dir string, maxSize int64) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DirStore{dir: dir, maxSize: maxSize}, nil
}

// Put implements Store. The file is written to a temporary name and
// renamed into place.
func (s *DirStore) Put(ctx context.Context, snap *Snapshot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, err := cleanName(snap.Name)
	if err != nil {
		return "", err
	}
	if s.maxSize > 0 && int64(len(snap.Body)) > s.maxSize {
		return "", ErrTooLarge
	}

	dst := filepath.Join(s.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}
	if err := writeAtomic(dst, snap.Body); err != nil {
		return "", err
	}

	meta, err := json.Marshal(dirMeta{
		ContentType: snap.ContentType,
		Size:        len(snap.Body),
		CreatedAt:   snap.CreatedAt,
	})
	if err != nil {
		return "", err
	}
	if err := writeAtomic(dst+".meta.json", meta); err != nil {
		return "", err
	}
	return dst, nil
}

func writeAtomic(dst string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(dst), ".weft-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
