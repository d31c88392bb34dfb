package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hongminglow/messagely/internal/apperr"
)

// ErrorBody is the inner object of every error response.
type ErrorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Envelope wraps rejections. Message repeats the error message at the top level.
type Envelope struct {
	Error   ErrorBody `json:"error"`
	Message string    `json:"message"`
}

// JSON writes payload as the response body.
func JSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("respond: encode payload failed")
	}
}

// Error writes an error envelope with an explicit status and message.
func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	JSON(w, r, status, Envelope{
		Error:   ErrorBody{Message: message, Status: status},
		Message: message,
	})
}

// Fail translates err through apperr and writes the envelope. Internal causes
// are logged and replaced with a generic message.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}
	Error(w, r, status, apperr.PublicMessage(err))
}
