// Package io provides the storage backends exports are written to.
package io

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// FileIO is the interface for export destinations.
type FileIO interface {
	// Create creates or overwrites the file at location. The content is
	// committed when the writer is closed.
	Create(ctx context.Context, location string) (io.WriteCloser, error)

	// Open opens the file at location for reading.
	Open(ctx context.Context, location string) (io.ReadCloser, error)

	// Exists checks if a file exists.
	Exists(ctx context.Context, location string) (bool, error)

	// Delete deletes a file.
	Delete(ctx context.Context, location string) error

	// Scheme returns the URI scheme the backend serves.
	Scheme() string
}

// Aborter is implemented by writers that can discard their content instead
// of committing it on Close.
type Aborter interface {
	Abort() error
}

// Abort discards w when it supports it and closes it otherwise.
func Abort(w io.WriteCloser) error {
	if a, ok := w.(Aborter); ok {
		return a.Abort()
	}
	return w.Close()
}

// StorageType selects a FileIO backend.
type StorageType string

const (
	StorageLocal StorageType = "local"
	StorageS3    StorageType = "s3"
)

// ParseStorageType parses a storage type name. An empty name is local.
func ParseStorageType(s string) (StorageType, error) {
	switch StorageType(strings.ToLower(strings.TrimSpace(s))) {
	case "", StorageLocal, "file":
		return StorageLocal, nil
	case StorageS3:
		return StorageS3, nil
	default:
		return "", fmt.Errorf("unknown storage type: %s", s)
	}
}

// Join appends name to a directory location, keeping any URI scheme intact.
func Join(dir, name string) string {
	if scheme, rest, ok := strings.Cut(dir, "://"); ok {
		return scheme + "://" + path.Join(rest, name)
	}
	return path.Join(dir, name)
}

// IsDir reports whether location names a directory rather than a file.
func IsDir(location string) bool {
	return location == "" || strings.HasSuffix(location, "/")
}

// contentType guesses the content type of an export file from its extension.
func contentType(location string) string {
	switch path.Ext(location) {
	case ".parquet":
		return "application/vnd.apache.parquet"
	case ".avro":
		return "application/avro"
	case ".ndjson", ".jsonl":
		return "application/x-ndjson"
	default:
		return "application/octet-stream"
	}
}
