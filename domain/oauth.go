package domain

import (
	"context"
	"time"
)

// OAuth links a user to an account at an external identity provider.
type OAuth struct {
	ID             int       `json:"id"`
	UserID         int       `json:"user_id" gorm:"not null;index"`
	User           User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Provider       string    `json:"provider" gorm:"not null;uniqueIndex:idx_provider_user"`
	ProviderUserID string    `json:"provider_user_id" gorm:"not null;uniqueIndex:idx_provider_user"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OAuthService is a set of methods to manipulate and work with the OAuth model.
type OAuthService interface {
	Create(ctx context.Context, oauth *OAuth) error
	ByProviderUserID(provider, providerUserID string) (*OAuth, error)
}
