package handlers

import (
	"net/http"

	"github.com/hongminglow/messagely/internal/access"
	"github.com/hongminglow/messagely/internal/http/respond"
	"github.com/hongminglow/messagely/internal/models"
	"github.com/hongminglow/messagely/internal/models/dto"
	"github.com/hongminglow/messagely/internal/service"
)

// UserHandler serves the user directory.
type UserHandler struct {
	directory *service.Directory
	access    *access.Mediator
}

func NewUserHandler(directory *service.Directory, mediator *access.Mediator) *UserHandler {
	return &UserHandler{directory: directory, access: mediator}
}

// Register attaches user routes to the mux.
func (h *UserHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /users", h.handleList)
	mux.HandleFunc("GET /users/{username}", h.handleDetail)
	mux.HandleFunc("GET /users/{username}/to", h.handleTo)
	mux.HandleFunc("GET /users/{username}/from", h.handleFrom)
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	token, err := tokenOnly(w, r)
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	if _, err := h.access.RequireAuthenticated(token); err != nil {
		deny(w, r, "authenticated", err)
		return
	}
	users, err := h.directory.ListUsers(r.Context())
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, dto.UsersResponse{Users: users})
}

func (h *UserHandler) handleDetail(w http.ResponseWriter, r *http.Request) {
	username, ok := h.requireSelf(w, r)
	if !ok {
		return
	}
	user, err := h.directory.GetUserDetail(r.Context(), username)
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, dto.UserResponse{User: user})
}

func (h *UserHandler) handleTo(w http.ResponseWriter, r *http.Request) {
	username, ok := h.requireSelf(w, r)
	if !ok {
		return
	}
	msgs, err := h.directory.ThreadTo(r.Context(), username)
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, dto.MessagesResponse[models.InboxEntry]{Messages: msgs})
}

func (h *UserHandler) handleFrom(w http.ResponseWriter, r *http.Request) {
	username, ok := h.requireSelf(w, r)
	if !ok {
		return
	}
	msgs, err := h.directory.ThreadFrom(r.Context(), username)
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, dto.MessagesResponse[models.OutboxEntry]{Messages: msgs})
}

// requireSelf checks the token belongs to the {username} path segment and
// writes the rejection itself when it does not.
func (h *UserHandler) requireSelf(w http.ResponseWriter, r *http.Request) (string, bool) {
	token, err := tokenOnly(w, r)
	if err != nil {
		respond.Fail(w, r, err)
		return "", false
	}
	username, err := h.access.RequireSelf(token, r.PathValue("username"))
	if err != nil {
		deny(w, r, "self", err)
		return "", false
	}
	return username, true
}
