package domain

import (
	"context"
	"time"
)

// Like marks a message as liked by a user. The (user, message) pair is
// unique: liking an already-liked message removes the edge instead of
// adding a second one.
type Like struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id" gorm:"not null;uniqueIndex:idx_user_message"`
	User      User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	MessageID int       `json:"message_id" gorm:"not null;uniqueIndex:idx_user_message"`
	Message   Message   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeService is a set of methods to manipulate and work with the Like model.
type LikeService interface {
	// Toggle creates the like edge if it does not exist and deletes it if it
	// does. The returned bool reports whether the edge exists afterwards.
	Toggle(ctx context.Context, userID, messageID int) (bool, error)
	ByUserID(userID int) ([]Message, error)
	CountByMessageID(messageID int) (int, error)
	CountByUserID(userID int) (int, error)
}
