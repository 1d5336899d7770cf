package multipart

import (
	"errors"
	"strings"
)

var (
	ErrNotMultipart    = errors.New("content type is not multipart/form-data")
	ErrMissingBoundary = errors.New("multipart boundary is missing")
)

const formDataMediaType = "multipart/form-data"

// Boundary returns the boundary parameter of a multipart/form-data
// content type. The token is returned as written, except that a quoted
// value is unquoted (RFC 2045 section 5.1 allows boundary="...").
func Boundary(contentType string) (string, error) {
	mediaType, params, _ := strings.Cut(contentType, ";")
	if !strings.EqualFold(strings.TrimSpace(mediaType), formDataMediaType) {
		return "", ErrNotMultipart
	}

	for _, param := range strings.Split(params, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "boundary") {
			continue
		}

		value = strings.TrimSpace(value)
		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}
		if value == "" {
			break
		}
		return value, nil
	}

	return "", ErrMissingBoundary
}
