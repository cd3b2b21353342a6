package errors

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

const genericMessage = "internal server error"

// Write renders err as a JSON error response. Unknown errors and server side
// codes are logged and replaced by a generic message.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	var e *Error
	if !errors.As(err, &e) {
		slog.Error("Unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: genericMessage})
		return
	}

	status := e.HTTPStatusCode()
	message := e.Message
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "code", e.Code, "error", err)
		if e.Code != ErrCodeDeliveryFailed {
			message = genericMessage
		}
	}
	if retry, ok := e.Details["retry_after"].(int); ok {
		w.Header().Set("Retry-After", strconv.Itoa(retry))
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message})
}
