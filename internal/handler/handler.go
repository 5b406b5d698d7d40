package handler

import (
	"courtside/backend/internal/mailer"

	"go.uber.org/zap"
)

// Wired from main at startup.
var (
	Mailer mailer.Sender
	Logger = zap.NewNop()
)

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}
