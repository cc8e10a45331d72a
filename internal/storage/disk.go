package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &DiskStore{dir: abs}, nil
}

func (d *DiskStore) Dir() string { return d.dir }

// resolve maps name to a path strictly inside the upload directory.
func (d *DiskStore) resolve(name string) (string, error) {
	if !ValidName(name) {
		return "", ErrInvalidName
	}
	p := filepath.Join(d.dir, name)
	rel, err := filepath.Rel(d.dir, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrInvalidName
	}
	return p, nil
}

func (d *DiskStore) Save(_ context.Context, name string, content io.Reader) error {
	p, err := d.resolve(name)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(p)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(p)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (d *DiskStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	p, err := d.resolve(name)
	if err != nil {
		return nil, ErrNotFound
	}
	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return nil, ErrNotFound
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (d *DiskStore) Remove(_ context.Context, name string) error {
	p, err := d.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
