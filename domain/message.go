package domain

import (
	"context"
	"time"
)

// Message is a short post owned by exactly one user. Messages are never
// edited in place, and deleting one removes the row permanently.
type Message struct {
	ID     int    `json:"id"`
	Text   string `json:"text" gorm:"not null"`
	UserID int    `json:"user_id" gorm:"not null;index"`
	User   User   `json:"user" gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
}

// MessageService is a set of methods to manipulate and work with the Message model.
type MessageService interface {
	Create(ctx context.Context, message *Message) error
	Delete(ctx context.Context, message *Message) error
	ByID(id int) (*Message, error)
	ByUserID(userID int) ([]Message, error)
	Feed(userID, limit int) ([]Message, error)
	CountByUserID(userID int) (int, error)
}
