package io

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalConfig holds local filesystem configuration.
type LocalConfig struct {
	// BaseDir resolves relative locations. Empty means the working directory.
	BaseDir string
}

// LocalFileIO implements FileIO for the local filesystem.
type LocalFileIO struct {
	baseDir string
}

// NewLocalFileIO creates a new local file I/O handler.
func NewLocalFileIO(cfg *LocalConfig) *LocalFileIO {
	l := &LocalFileIO{}
	if cfg != nil {
		l.baseDir = cfg.BaseDir
	}
	return l
}

// Scheme returns "file".
func (l *LocalFileIO) Scheme() string {
	return "file"
}

// resolve removes a file:// prefix and anchors relative paths at the base
// directory.
func (l *LocalFileIO) resolve(location string) string {
	p := strings.TrimPrefix(location, "file://")
	if l.baseDir != "" && !filepath.IsAbs(p) {
		p = filepath.Join(l.baseDir, p)
	}
	return filepath.Clean(p)
}

// Create writes to a temporary file next to location and renames it into
// place on Close, so readers never observe a partial export.
func (l *LocalFileIO) Create(ctx context.Context, location string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := l.resolve(location)
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return &atomicFile{File: tmp, target: p}, nil
}

// Open opens a file for reading.
func (l *LocalFileIO) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(l.resolve(location))
}

// Exists checks if a file exists.
func (l *LocalFileIO) Exists(ctx context.Context, location string) (bool, error) {
	_, err := os.Stat(l.resolve(location))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Delete deletes a file.
func (l *LocalFileIO) Delete(ctx context.Context, location string) error {
	return os.Remove(l.resolve(location))
}

type atomicFile struct {
	*os.File
	target string
	closed bool
}

func (f *atomicFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	if err := f.File.Close(); err != nil {
		os.Remove(f.File.Name())
		return err
	}
	if err := os.Rename(f.File.Name(), f.target); err != nil {
		os.Remove(f.File.Name())
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// Abort removes the temporary file without touching the target.
func (f *atomicFile) Abort() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.File.Close()
	return os.Remove(f.File.Name())
}
