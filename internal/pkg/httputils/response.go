package httputils

import (
	"encoding/json"
	"net/http"
	"tush00nka/taskboard/api/response"
)

func ResponseError(w http.ResponseWriter, errorCode int, errorMessage string) {
	ResponseJSON(w, errorCode, response.ErrorResponse{
		Message: errorMessage,
	})
}

// ResponseJSON writes data as the body. Headers are already sent when
// encoding starts, so an encoding failure only truncates the body.
func ResponseJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return json.NewEncoder(w).Encode(data)
}
