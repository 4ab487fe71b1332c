package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mizuki/heatboard/internal/domain"
)

const maxMessageLength = 280

// MessageStore defines the message data access interface consumed by MessageService.
type MessageStore interface {
	Create(ctx context.Context, msg domain.Message) (*domain.Message, error)
	FindLast3(ctx context.Context) ([]domain.MessageWithAuthor, error)
}

// MessageService handles message board operations.
type MessageService struct {
	messages MessageStore
}

// NewMessageService creates a new MessageService.
func NewMessageService(messages MessageStore) *MessageService {
	return &MessageService{messages: messages}
}

// Post creates a message authored by the given user.
func (s *MessageService) Post(ctx context.Context, userID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message text is empty", domain.ErrInvalidInput)
	}
	if len(text) > maxMessageLength {
		return nil, fmt.Errorf("%w: message exceeds %d characters", domain.ErrInvalidInput, maxMessageLength)
	}

	msg, err := s.messages.Create(ctx, domain.Message{
		ID:     uuid.NewString(),
		UserID: userID,
		Text:   text,
	})
	if err != nil {
		return nil, fmt.Errorf("post message: %w", err)
	}
	return msg, nil
}

// Last3 returns the three most recent messages, newest first.
func (s *MessageService) Last3(ctx context.Context) ([]domain.MessageWithAuthor, error) {
	return s.messages.FindLast3(ctx)
}
