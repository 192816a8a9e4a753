package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warbler/domain"
	"warbler/errs"
)

func TestFollowIsDirectional(t *testing.T) {
	_, services := newTestServices(t)
	user1 := createTestUser(t, services.User, 40, "user1")
	user2 := createTestUser(t, services.User, 80, "user2")

	err := services.Follow.Create(context.Background(), &domain.Follow{
		FollowerID: user1.ID,
		FollowedID: user2.ID,
	})
	require.NoError(t, err)

	following, err := services.Follow.Following(user1.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, user2.ID, following[0].ID)

	followers, err := services.Follow.Followers(user2.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, user1.ID, followers[0].ID)

	// The edge carries nothing in the opposite direction.
	reverse, err := services.Follow.Following(user2.ID)
	require.NoError(t, err)
	assert.Empty(t, reverse)
	reverse, err = services.Follow.Followers(user1.ID)
	require.NoError(t, err)
	assert.Empty(t, reverse)
}

func TestIsFollowing(t *testing.T) {
	_, services := newTestServices(t)
	user1 := createTestUser(t, services.User, 40, "user1")
	user2 := createTestUser(t, services.User, 80, "user2")

	err := services.Follow.Create(context.Background(), &domain.Follow{
		FollowerID: user1.ID,
		FollowedID: user2.ID,
	})
	require.NoError(t, err)

	ok, err := services.Follow.IsFollowing(user1.ID, user2.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = services.Follow.IsFollowing(user2.ID, user1.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsFollowedBy(t *testing.T) {
	_, services := newTestServices(t)
	user1 := createTestUser(t, services.User, 40, "user1")
	user2 := createTestUser(t, services.User, 80, "user2")

	err := services.Follow.Create(context.Background(), &domain.Follow{
		FollowerID: user2.ID,
		FollowedID: user1.ID,
	})
	require.NoError(t, err)

	ok, err := services.Follow.IsFollowedBy(user1.ID, user2.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = services.Follow.IsFollowedBy(user2.ID, user1.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollowCreate_Duplicate(t *testing.T) {
	_, services := newTestServices(t)
	user1 := createTestUser(t, services.User, 40, "user1")
	user2 := createTestUser(t, services.User, 80, "user2")

	ctx := context.Background()
	require.NoError(t, services.Follow.Create(ctx, &domain.Follow{FollowerID: user1.ID, FollowedID: user2.ID}))

	err := services.Follow.Create(ctx, &domain.Follow{FollowerID: user1.ID, FollowedID: user2.ID})
	require.Error(t, err)
	assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))

	count, err := services.Follow.CountFollowing(user1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFollowCreate_UnknownFollowed(t *testing.T) {
	_, services := newTestServices(t)
	user1 := createTestUser(t, services.User, 40, "user1")

	err := services.Follow.Create(context.Background(), &domain.Follow{FollowerID: user1.ID, FollowedID: 666})
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestFollowDelete(t *testing.T) {
	_, services := newTestServices(t)
	user1 := createTestUser(t, services.User, 40, "user1")
	user2 := createTestUser(t, services.User, 80, "user2")

	ctx := context.Background()
	require.NoError(t, services.Follow.Create(ctx, &domain.Follow{FollowerID: user1.ID, FollowedID: user2.ID}))
	require.NoError(t, services.Follow.Delete(ctx, user1.ID, user2.ID))

	ok, err := services.Follow.IsFollowing(user1.ID, user2.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an edge that no longer exists reports not found.
	err = services.Follow.Delete(ctx, user1.ID, user2.ID)
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestFollowCounts(t *testing.T) {
	_, services := newTestServices(t)
	user1 := createTestUser(t, services.User, 40, "user1")
	user2 := createTestUser(t, services.User, 80, "user2")
	user3 := createTestUser(t, services.User, 81, "user3")

	ctx := context.Background()
	require.NoError(t, services.Follow.Create(ctx, &domain.Follow{FollowerID: user1.ID, FollowedID: user2.ID}))
	require.NoError(t, services.Follow.Create(ctx, &domain.Follow{FollowerID: user3.ID, FollowedID: user2.ID}))

	followers, err := services.Follow.CountFollowers(user2.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, followers)

	following, err := services.Follow.CountFollowing(user1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, following)
}
