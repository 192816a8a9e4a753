package crud

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"warbler/domain"
	"warbler/errs"
)

// LikeService manages Likes.
// It implements the domain.LikeService interface.
type LikeService struct {
	likeGorm
}

// likeGorm runs CRUD operations on the database using incoming Like data.
type likeGorm struct {
	db *gorm.DB
}

// NewLikeService returns an instance of LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{
		likeGorm{
			db: db,
		},
	}
}

// Ensure the LikeService struct properly implements the domain.LikeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.LikeService = &LikeService{}

// Toggle creates the like edge if the user has not yet liked the message,
// and deletes it if they have. It runs inside one transaction, so a failure
// leaves the like set unchanged. Two concurrent first-likes race at the
// composite unique index; the loser's insert is rejected and rolled back.
func (lg *likeGorm) Toggle(ctx context.Context, userID, messageID int) (bool, error) {
	if userID <= 0 {
		return false, errs.Errorf(errs.EINVALID, "Liking user is required.")
	}
	var liked bool
	err := lg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&domain.Message{}, "id = ?", messageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.Errorf(errs.ENOTFOUND, "The liked message does not exist.")
			}
			return err
		}
		var existing domain.Like
		err := tx.Where("user_id = ? AND message_id = ?", userID, messageID).First(&existing).Error
		if err == nil {
			liked = false
			return tx.Delete(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		liked = true
		err = tx.Create(&domain.Like{UserID: userID, MessageID: messageID}).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.Errorf(errs.ECONFLICT, "You already like this message.")
		}
		return err
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}

// ByUserID returns the messages the given user currently likes, resolved by
// a join at call time.
func (lg *likeGorm) ByUserID(userID int) ([]domain.Message, error) {
	var messages []domain.Message
	err := lg.db.
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Preload("User").
		Order("messages.created_at desc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// CountByMessageID returns the number of likes a message has.
func (lg *likeGorm) CountByMessageID(messageID int) (int, error) {
	var count int64
	err := lg.db.Model(&domain.Like{}).Where("message_id = ?", messageID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// CountByUserID returns the number of messages the given user likes.
func (lg *likeGorm) CountByUserID(userID int) (int, error) {
	var count int64
	err := lg.db.Model(&domain.Like{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
