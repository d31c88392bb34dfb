package handlers

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hongminglow/messagely/internal/apperr"
	"github.com/hongminglow/messagely/internal/http/respond"
	"github.com/hongminglow/messagely/internal/metrics"
	"github.com/hongminglow/messagely/internal/models/dto"
	"github.com/hongminglow/messagely/internal/service"
)

// AuthHandler owns the register/login endpoints.
type AuthHandler struct {
	credentials *service.Credentials
	wrap        func(http.Handler) http.Handler
}

// NewAuthHandler constructs the handler. wrap decorates both routes, e.g. with a
// rate limiter; nil leaves them undecorated.
func NewAuthHandler(credentials *service.Credentials, wrap func(http.Handler) http.Handler) *AuthHandler {
	if wrap == nil {
		wrap = func(h http.Handler) http.Handler { return h }
	}
	return &AuthHandler{credentials: credentials, wrap: wrap}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.Handle("POST /auth/register", h.wrap(http.HandlerFunc(h.handleRegister)))
	mux.Handle("POST /auth/login", h.wrap(http.HandlerFunc(h.handleLogin)))
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeBody(w, r, &req); err != nil {
		respond.Fail(w, r, err)
		return
	}

	user, err := h.credentials.Register(r.Context(), service.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	metrics.RegistrationsTotal.Inc()

	// Registering logs the user in.
	if err := h.credentials.TouchLogin(r.Context(), user.Username); err != nil {
		respond.Fail(w, r, err)
		return
	}
	token, err := h.credentials.IssueToken(user.Username)
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	zerolog.Ctx(r.Context()).Info().Str("username", user.Username).Msg("user registered")
	respond.JSON(w, r, http.StatusOK, dto.TokenResponse{Token: token})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		respond.Fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		respond.Fail(w, r, apperr.InvalidInput("username and password are required"))
		return
	}

	token, err := h.credentials.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUnauthorized {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		}
		respond.Fail(w, r, err)
		return
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	respond.JSON(w, r, http.StatusOK, dto.TokenResponse{Token: token})
}
