// Package storage holds the bytes of uploaded attachments. Metadata lives
// in the relational store; a Store only knows stored names.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist is returned by Open when no object has the given name.
var ErrNotExist = errors.New("stored file does not exist")

// Store persists attachment bytes under their stored name.
type Store interface {
	// Put writes data under name. Readers never observe a partially
	// written object.
	Put(ctx context.Context, name string, data []byte) error
	// Open returns the object's contents and size.
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)
	// Remove deletes the object. A missing object is not an error.
	Remove(ctx context.Context, name string) error
}
