package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hongminglow/messagely/internal/access"
	"github.com/hongminglow/messagely/internal/apperr"
	"github.com/hongminglow/messagely/internal/http/respond"
	"github.com/hongminglow/messagely/internal/metrics"
	"github.com/hongminglow/messagely/internal/models/dto"
)

const maxBodyBytes = 1 << 20

// decodeBody fills dst from a JSON or form-encoded body. An empty body leaves
// dst untouched, so GET requests may omit it.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.InvalidInput("request body too large")
		}
		return apperr.InvalidInput("unreadable request body")
	}
	if len(raw) == 0 {
		return nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return apperr.InvalidInput("invalid form payload")
		}
		flat := make(map[string]string, len(values))
		for k := range values {
			flat[k] = values.Get(k)
		}
		// Re-encode so form fields land on the same json tags as JSON bodies.
		if raw, err = json.Marshal(flat); err != nil {
			return apperr.Internal(err)
		}
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return apperr.InvalidInput("invalid JSON payload")
	}
	return nil
}

// requestToken reads _token from the body (already decoded into carrier) or the query string.
func requestToken(r *http.Request, carrier dto.TokenCarrier) string {
	return access.Token(carrier.Token, r.URL.Query().Get("_token"))
}

// tokenOnly decodes a body that carries nothing but _token.
func tokenOnly(w http.ResponseWriter, r *http.Request) (string, error) {
	var carrier dto.TokenCarrier
	if err := decodeBody(w, r, &carrier); err != nil {
		return "", err
	}
	return requestToken(r, carrier), nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidInput("message id must be a positive integer")
	}
	return id, nil
}

// deny counts a failed authorization check and writes err.
func deny(w http.ResponseWriter, r *http.Request, check string, err error) {
	metrics.AuthorizationDenials.WithLabelValues(check).Inc()
	respond.Fail(w, r, err)
}
