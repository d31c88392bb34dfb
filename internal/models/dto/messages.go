package dto

import "github.com/hongminglow/messagely/internal/models"

type SendMessageRequest struct {
	TokenCarrier
	ToUsername string `json:"to_username"`
	Body       string `json:"body"`
}

type MessageResponse struct {
	Message any `json:"message"`
}

type MessagesResponse[T any] struct {
	Messages []T `json:"messages"`
}

type UsersResponse struct {
	Users []models.UserSummary `json:"users"`
}

type UserResponse struct {
	User models.User `json:"user"`
}
