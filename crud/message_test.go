package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warbler/domain"
	"warbler/errs"
)

func TestMessageCreate(t *testing.T) {
	_, services := newTestServices(t)
	user := createTestUser(t, services.User, 44, "userTest")

	msg := &domain.Message{Text: "Prova Text", UserID: user.ID}
	require.NoError(t, services.Message.Create(context.Background(), msg))

	messages, err := services.Message.ByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Prova Text", messages[0].Text)
}

func TestMessageCreate_RequiresText(t *testing.T) {
	_, services := newTestServices(t)
	user := createTestUser(t, services.User, 44, "userTest")

	err := services.Message.Create(context.Background(), &domain.Message{Text: "   ", UserID: user.ID})
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestMessageCreate_RequiresOwner(t *testing.T) {
	_, services := newTestServices(t)

	err := services.Message.Create(context.Background(), &domain.Message{Text: "orphan"})
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestMessageByID_NotFound(t *testing.T) {
	_, services := newTestServices(t)

	_, err := services.Message.ByID(123456789)
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestMessageDelete(t *testing.T) {
	_, services := newTestServices(t)
	user := createTestUser(t, services.User, 44, "userTest")

	keep := &domain.Message{Text: "something about warble", UserID: user.ID}
	gone := &domain.Message{Text: "new message warble", UserID: user.ID}
	require.NoError(t, services.Message.Create(context.Background(), keep))
	require.NoError(t, services.Message.Create(context.Background(), gone))

	require.NoError(t, services.Message.Delete(context.Background(), gone))

	_, err := services.Message.ByID(gone.ID)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))

	left, err := services.Message.ByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "something about warble", left[0].Text)
}

func TestMessageDelete_RemovesLikeEdges(t *testing.T) {
	db, services := newTestServices(t)
	author := createTestUser(t, services.User, 44, "userTest")
	reader := createTestUser(t, services.User, 46, "reader")

	msg := &domain.Message{Text: "likable warble", UserID: author.ID}
	require.NoError(t, services.Message.Create(context.Background(), msg))
	_, err := services.Like.Toggle(context.Background(), reader.ID, msg.ID)
	require.NoError(t, err)

	require.NoError(t, services.Message.Delete(context.Background(), msg))

	var count int64
	require.NoError(t, db.Model(&domain.Like{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMessageFeed(t *testing.T) {
	_, services := newTestServices(t)
	me := createTestUser(t, services.User, 40, "me")
	followed := createTestUser(t, services.User, 41, "followed")
	stranger := createTestUser(t, services.User, 42, "stranger")

	ctx := context.Background()
	require.NoError(t, services.Follow.Create(ctx, &domain.Follow{FollowerID: me.ID, FollowedID: followed.ID}))
	require.NoError(t, services.Message.Create(ctx, &domain.Message{Text: "mine", UserID: me.ID}))
	require.NoError(t, services.Message.Create(ctx, &domain.Message{Text: "theirs", UserID: followed.ID}))
	require.NoError(t, services.Message.Create(ctx, &domain.Message{Text: "unrelated", UserID: stranger.ID}))

	feed, err := services.Message.Feed(me.ID, 100)
	require.NoError(t, err)
	texts := make([]string, 0, len(feed))
	for _, m := range feed {
		texts = append(texts, m.Text)
	}
	assert.ElementsMatch(t, []string{"mine", "theirs"}, texts)
}

func TestMessageCountByUserID(t *testing.T) {
	_, services := newTestServices(t)
	user := createTestUser(t, services.User, 44, "userTest")

	ctx := context.Background()
	require.NoError(t, services.Message.Create(ctx, &domain.Message{Text: "one", UserID: user.ID}))
	require.NoError(t, services.Message.Create(ctx, &domain.Message{Text: "two", UserID: user.ID}))

	count, err := services.Message.CountByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
