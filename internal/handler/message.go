package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mizuki/heatboard/internal/domain"
	"github.com/mizuki/heatboard/internal/service"
)

// MessageHandler handles message board endpoints.
type MessageHandler struct {
	messages *service.MessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

type postMessageRequest struct {
	Message string `json:"message" validate:"required,max=280"`
}

// Post creates a message authored by the authenticated user.
func (h *MessageHandler) Post(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	var req postMessageRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	msg, err := h.messages.Post(c.Request().Context(), userID, req.Message)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusCreated, msg)
}

// Last3 returns the three most recent messages. No auth required.
func (h *MessageHandler) Last3(c echo.Context) error {
	msgs, err := h.messages.Last3(c.Request().Context())
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, msgs)
}
