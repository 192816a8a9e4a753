package domain

import (
	"context"
	"time"
)

// Follow is a directed edge between two users: the follower observes the
// followed user's messages. The pair is unique, so the same edge cannot
// exist twice, and it carries no implication in the opposite direction.
type Follow struct {
	ID         int       `json:"id"`
	FollowerID int       `json:"follower_id" gorm:"not null;uniqueIndex:idx_follower_followed"`
	Follower   User      `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	FollowedID int       `json:"followed_id" gorm:"not null;uniqueIndex:idx_follower_followed"`
	Followed   User      `json:"-" gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `json:"created_at"`
}

// FollowService is a set of methods to manipulate and work with the Follow model.
type FollowService interface {
	Create(ctx context.Context, follow *Follow) error
	Delete(ctx context.Context, followerID, followedID int) error
	Following(userID int) ([]User, error)
	Followers(userID int) ([]User, error)
	IsFollowing(followerID, followedID int) (bool, error)
	IsFollowedBy(userID, otherID int) (bool, error)
	CountFollowing(userID int) (int, error)
	CountFollowers(userID int) (int, error)
}
