package model

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

var (
	ErrMalformedRequest     = errors.New("malformed request")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrNotFound             = errors.New("not found")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrInternal             = errors.New("internal failure")
)

// PayloadTooLargeError names the part that exceeded the size ceiling.
type PayloadTooLargeError struct {
	Filename string
	Size     int64
	Limit    int64
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("file %q exceeds the %s limit", e.Filename, humanize.IBytes(uint64(e.Limit)))
}

func (e *PayloadTooLargeError) Is(target error) bool {
	return target == ErrPayloadTooLarge
}
