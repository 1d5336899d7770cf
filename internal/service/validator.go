package service

import (
	"tush00nka/taskboard/internal/model"
	"tush00nka/taskboard/internal/pkg/multipart"
)

// DefaultMaxFileSize is the per-file ceiling when none is configured.
const DefaultMaxFileSize int64 = 25 << 20

// ValidatePart rejects parts larger than limit. The request body has
// already been buffered by the time this runs, so the limit bounds what is
// stored rather than what is received.
func ValidatePart(part multipart.Part, limit int64) error {
	if size := int64(len(part.Data)); size > limit {
		return &model.PayloadTooLargeError{
			Filename: part.Filename,
			Size:     size,
			Limit:    limit,
		}
	}
	return nil
}
