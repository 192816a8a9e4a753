package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"warbler/domain"
)

const testPepper = "test-pepper"

// newTestDB returns a gorm connection to a fresh in-memory sqlite database
// with all tables migrated. The pool is pinned to one connection, otherwise
// every pooled connection would see its own empty in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		domain.User{},
		domain.OAuth{},
		domain.Message{},
		domain.Follow{},
		domain.Like{},
	)
	require.NoError(t, err)
	return db
}

// newTestServices wires all crud services onto one test database.
func newTestServices(t *testing.T) (*gorm.DB, *Services) {
	t.Helper()
	db := newTestDB(t)
	services, err := NewServices(
		db,
		WithUser(testPepper),
		WithMessage(),
		WithFollow(),
		WithLike(),
		WithOAuth(),
	)
	require.NoError(t, err)
	return db, services
}

// createTestUser signs up a user with the password "password" and fails the
// test if that doesn't work. A non-zero id is assigned explicitly.
func createTestUser(t *testing.T, us *UserService, id int, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:       id,
		Username: username,
		Email:    username + "@email.com",
		Password: "password",
	}
	require.NoError(t, us.Create(context.Background(), user))
	return user
}
