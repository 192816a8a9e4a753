package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warbler/domain"
	"warbler/errs"
)

func TestOAuthCreate(t *testing.T) {
	_, services := newTestServices(t)
	user := createTestUser(t, services.User, 40, "user1")

	oauth := &domain.OAuth{
		UserID:         user.ID,
		Provider:       "github",
		ProviderUserID: "8675309",
	}
	require.NoError(t, services.OAuth.Create(context.Background(), oauth))

	found, err := services.OAuth.ByProviderUserID("github", "8675309")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.UserID)
}

func TestOAuthCreate_DuplicateLink(t *testing.T) {
	_, services := newTestServices(t)
	user1 := createTestUser(t, services.User, 40, "user1")
	user2 := createTestUser(t, services.User, 80, "user2")

	ctx := context.Background()
	link := &domain.OAuth{UserID: user1.ID, Provider: "github", ProviderUserID: "8675309"}
	require.NoError(t, services.OAuth.Create(ctx, link))

	// The same external account cannot be linked twice, not even to
	// a different local user.
	dup := &domain.OAuth{UserID: user2.ID, Provider: "github", ProviderUserID: "8675309"}
	err := services.OAuth.Create(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))
}

func TestOAuthCreate_RequiresFields(t *testing.T) {
	_, services := newTestServices(t)
	user := createTestUser(t, services.User, 40, "user1")

	ctx := context.Background()
	err := services.OAuth.Create(ctx, &domain.OAuth{Provider: "github", ProviderUserID: "8675309"})
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	err = services.OAuth.Create(ctx, &domain.OAuth{UserID: user.ID, ProviderUserID: "8675309"})
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	err = services.OAuth.Create(ctx, &domain.OAuth{UserID: user.ID, Provider: "github"})
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestOAuthByProviderUserID_NotLinked(t *testing.T) {
	_, services := newTestServices(t)

	_, err := services.OAuth.ByProviderUserID("github", "8675309")
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestOAuthProvidersAreDistinct(t *testing.T) {
	_, services := newTestServices(t)
	user := createTestUser(t, services.User, 40, "user1")

	ctx := context.Background()
	link := &domain.OAuth{UserID: user.ID, Provider: "github", ProviderUserID: "8675309"}
	require.NoError(t, services.OAuth.Create(ctx, link))

	// The same external ID at another provider is a different account.
	other := &domain.OAuth{UserID: user.ID, Provider: "gitlab", ProviderUserID: "8675309"}
	require.NoError(t, services.OAuth.Create(ctx, other))

	_, err := services.OAuth.ByProviderUserID("gitlab", "8675309")
	require.NoError(t, err)
}
