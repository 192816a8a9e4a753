package crud

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"warbler/domain"
	"warbler/errs"
)

// MessageService manages Messages.
// It implements the domain.MessageService interface.
type MessageService struct {
	messageValidator
}

// messageValidator runs validations on incoming Message data.
// On success, it passes the data on to messageGorm.
// Otherwise, it returns the error of the validation that has failed.
type messageValidator struct {
	messageGorm
}

// messageGorm runs CRUD operations on the database using incoming Message data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type messageGorm struct {
	db *gorm.DB
}

// NewMessageService returns an instance of MessageService.
func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{
		messageValidator{
			messageGorm{
				db: db,
			},
		},
	}
}

// Ensure the MessageService struct properly implements the domain.MessageService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.MessageService = &MessageService{}

// Create runs validations needed for creating new Message database records.
func (mv *messageValidator) Create(ctx context.Context, message *domain.Message) error {
	err := runMessageValFns(message,
		mv.userIDValid,
		mv.textRequired)
	if err != nil {
		return err
	}
	return mv.messageGorm.Create(ctx, message)
}

// Delete runs validations needed for deleting existing Message database records.
func (mv *messageValidator) Delete(ctx context.Context, message *domain.Message) error {
	err := runMessageValFns(message, mv.idValid)
	if err != nil {
		return err
	}
	return mv.messageGorm.Delete(ctx, message)
}

// runMessageValFns runs any number of functions of type messageValFn on the passed in Message object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runMessageValFns(message *domain.Message, fns ...messageValFn) error {
	for _, fn := range fns {
		if err := fn(message); err != nil {
			return err
		}
	}
	return nil
}

// A messageValFn is any function that takes in a pointer to a domain.Message object and returns an error.
type messageValFn func(message *domain.Message) error

// idValid makes sure that the passed in ID of a Message to be deleted is greater than 0.
func (mv *messageValidator) idValid(message *domain.Message) error {
	if message.ID <= 0 {
		return errs.Errorf(errs.EINVALID, "Message ID is invalid.")
	}
	return nil
}

// textRequired makes sure that the Message's text is not empty.
func (mv *messageValidator) textRequired(message *domain.Message) error {
	if strings.TrimSpace(message.Text) == "" {
		return errs.Errorf(errs.EINVALID, "Message text must not be empty.")
	}
	return nil
}

// userIDValid ensures that the owning user's ID is not empty.
func (mv *messageValidator) userIDValid(message *domain.Message) error {
	if message.UserID <= 0 {
		return errs.Errorf(errs.EINVALID, "Message owner is required.")
	}
	return nil
}

// ByID retrieves a single Message by ID, along with its author.
// If the record doesn't exist, it returns ENOTFOUND.
func (mg *messageGorm) ByID(id int) (*domain.Message, error) {
	var message domain.Message
	err := mg.db.
		Preload("User").
		First(&message, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The message does not exist.")
		}
		return nil, err
	}
	return &message, nil
}

// ByUserID retrieves all messages of a user, newest first.
func (mg *messageGorm) ByUserID(userID int) ([]domain.Message, error) {
	var messages []domain.Message
	err := mg.db.
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Feed retrieves the home timeline of a user: their own messages and the
// messages of everyone they follow, newest first.
func (mg *messageGorm) Feed(userID, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := mg.db.
		Where("user_id = ? OR user_id IN (?)",
			userID,
			mg.db.Model(&domain.Follow{}).Select("followed_id").Where("follower_id = ?", userID),
		).
		Preload("User").
		Order("created_at desc").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// CountByUserID returns the number of messages a user has posted.
func (mg *messageGorm) CountByUserID(userID int) (int, error) {
	var count int64
	err := mg.db.Model(&domain.Message{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// Create stores the data from the Message object in a new database record.
func (mg *messageGorm) Create(ctx context.Context, message *domain.Message) error {
	return mg.db.WithContext(ctx).Create(message).Error
}

// Delete permanently deletes a Message record from the database, along with
// its like edges. No soft delete: the row is gone.
func (mg *messageGorm) Delete(ctx context.Context, message *domain.Message) error {
	return mg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", message.ID).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(message).Error
	})
}
