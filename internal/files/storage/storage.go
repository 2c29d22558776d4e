// Package storage holds the binary object backends behind file attachments.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// ObjectStore stores attachment bodies by key. Delete of a missing key succeeds.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

var ErrInvalidKey = errors.New("invalid object key")

// ValidKey accepts flat keys only, so a key can never escape the upload dir.
func ValidKey(key string) bool {
	return key != "" && key != "." && key != ".." &&
		!strings.ContainsAny(key, `/\`) && filepath.Base(key) == key
}
