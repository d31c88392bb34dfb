package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hongminglow/messagely/internal/access"
	"github.com/hongminglow/messagely/internal/http/respond"
	"github.com/hongminglow/messagely/internal/metrics"
	"github.com/hongminglow/messagely/internal/models/dto"
	"github.com/hongminglow/messagely/internal/service"
)

// MessageHandler serves message creation, lookup and read-marking.
type MessageHandler struct {
	messages *service.Messages
	access   *access.Mediator
}

func NewMessageHandler(messages *service.Messages, mediator *access.Mediator) *MessageHandler {
	return &MessageHandler{messages: messages, access: mediator}
}

// Register attaches message routes to the mux.
func (h *MessageHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /messages", h.handleCreate)
	mux.HandleFunc("GET /messages/{id}", h.handleGet)
	mux.HandleFunc("POST /messages/{id}/read", h.handleMarkRead)
}

func (h *MessageHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.SendMessageRequest
	if err := decodeBody(w, r, &req); err != nil {
		respond.Fail(w, r, err)
		return
	}
	from, err := h.access.RequireAuthenticated(requestToken(r, req.TokenCarrier))
	if err != nil {
		deny(w, r, "authenticated", err)
		return
	}

	msg, err := h.messages.Create(r.Context(), from, req.ToUsername, req.Body)
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	metrics.MessagesSentTotal.Inc()
	zerolog.Ctx(r.Context()).Debug().Int64("message_id", msg.ID).Str("from", from).Msg("message sent")
	respond.JSON(w, r, http.StatusOK, dto.MessageResponse{Message: msg})
}

func (h *MessageHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	token, err := tokenOnly(w, r)
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	if _, err := h.access.RequireAuthenticated(token); err != nil {
		deny(w, r, "authenticated", err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, r, err)
		return
	}

	detail, err := h.messages.Get(r.Context(), id)
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	if _, err := h.access.RequireParticipant(token, detail); err != nil {
		deny(w, r, "participant", err)
		return
	}
	respond.JSON(w, r, http.StatusOK, dto.MessageResponse{Message: detail})
}

func (h *MessageHandler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	token, err := tokenOnly(w, r)
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	if _, err := h.access.RequireAuthenticated(token); err != nil {
		deny(w, r, "authenticated", err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, r, err)
		return
	}

	msg, err := h.messages.Find(r.Context(), id)
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	username, err := h.access.RequireRecipient(token, msg)
	if err != nil {
		deny(w, r, "recipient", service.ErrNotRecipient)
		return
	}

	read, err := h.messages.MarkRead(r.Context(), id, username)
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	metrics.MessagesReadTotal.Inc()
	respond.JSON(w, r, http.StatusOK, dto.MessageResponse{Message: read})
}
