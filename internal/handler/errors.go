package handler

import (
	"errors"
	"net/http"
	"tush00nka/taskboard/internal/model"
)

// errorStatus maps service errors to a status code, a client-facing
// message and a metrics label.
func errorStatus(err error) (int, string, string) {
	var tooLarge *model.PayloadTooLargeError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, tooLarge.Error(), "too_large"
	case errors.Is(err, model.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "file too large", "too_large"
	case errors.Is(err, model.ErrUnsupportedMediaType):
		return http.StatusBadRequest, "request must be multipart/form-data", "bad_request"
	case errors.Is(err, model.ErrMalformedRequest):
		return http.StatusBadRequest, err.Error(), "bad_request"
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "not found", "not_found"
	default:
		return http.StatusInternalServerError, "internal server error", "error"
	}
}
