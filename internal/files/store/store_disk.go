package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"onboard/internal/files/models"
	"onboard/internal/sentinel"
)

// Disk stores blobs under a root directory. All access goes through os.Root,
// so keys cannot escape the directory.
type Disk struct {
	root *os.Root
}

// NewDisk opens dir, creating it when missing.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open upload dir: %w", err)
	}
	return &Disk{root: root}, nil
}

// Put writes at most limit bytes from r to key. When r holds more, the partial
// file is removed and sentinel.ErrTooLarge returned. Existing keys are never
// overwritten.
func (d *Disk) Put(ctx context.Context, key string, r io.Reader, limit int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if dir := path.Dir(key); dir != "." {
		if err := d.root.Mkdir(dir, 0o750); err != nil && !errors.Is(err, fs.ErrExist) {
			return 0, fmt.Errorf("create owner dir: %w", err)
		}
	}
	f, err := d.root.OpenFile(key, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, fmt.Errorf("blob %s: %w", key, sentinel.ErrAlreadyUsed)
		}
		return 0, fmt.Errorf("create blob: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > limit {
		err = sentinel.ErrTooLarge
	}
	if err != nil {
		_ = d.root.Remove(key) //nolint:errcheck // best effort cleanup of a partial write
		return 0, fmt.Errorf("write blob %s: %w", key, err)
	}
	return n, nil
}

func (d *Disk) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := d.root.Open(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("blob %s: %w", key, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

func (d *Disk) Stat(_ context.Context, key string) (models.BlobInfo, error) {
	fi, err := d.root.Stat(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.BlobInfo{}, fmt.Errorf("blob %s: %w", key, sentinel.ErrNotFound)
		}
		return models.BlobInfo{}, fmt.Errorf("stat blob: %w", err)
	}
	if fi.IsDir() {
		return models.BlobInfo{}, fmt.Errorf("blob %s: %w", key, sentinel.ErrNotFound)
	}
	return models.BlobInfo{Size: fi.Size(), ModTime: fi.ModTime().UTC()}, nil
}

func (d *Disk) Delete(_ context.Context, key string) error {
	if err := d.root.Remove(key); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("blob %s: %w", key, sentinel.ErrNotFound)
		}
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

// Ping reports whether the upload directory is still reachable.
func (d *Disk) Ping(_ context.Context) error {
	if _, err := d.root.Stat("."); err != nil {
		return fmt.Errorf("upload dir: %w", err)
	}
	return nil
}

func (d *Disk) Close() error {
	return d.root.Close()
}
