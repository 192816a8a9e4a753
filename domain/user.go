package domain

import (
	"context"
	"time"
)

// User is a registered account. The Password field only carries the
// plaintext between the request and the validator that bcrypts it; it is
// never written to the database and is cleared as soon as PasswordHash is
// set.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	ImageURL string `json:"image_url"`

	Password     string `json:"password,omitempty" gorm:"-"`
	PasswordHash string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserService is a set of methods to manipulate and work with the User model.
type UserService interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Authenticate(username, password string) (*User, error)
	ByID(id int) (*User, error)
	ByUsername(username string) (*User, error)
	Search(q string) ([]User, error)
}
