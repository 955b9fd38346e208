package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository_Directions(t *testing.T) {
	conn := openTestDB(t)
	repo := NewFollowRepository()
	ctx := context.Background()

	mustCreateUsers(t, conn, newUser(1, "u1"), newUser(2, "u2"), newUser(3, "u3"))

	// u2 -> u1, u3 -> u1
	require.NoError(t, repo.Create(ctx, conn, 2, 1))
	require.NoError(t, repo.Create(ctx, conn, 3, 1))

	exists, err := repo.Exists(ctx, conn, 2, 1)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, conn, 1, 2)
	require.NoError(t, err)
	assert.False(t, exists, "边是有向的")

	followers, err := repo.ListFollowers(ctx, conn, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u2", "u3"}, usernames(followers))

	following, err := repo.ListFollowing(ctx, conn, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, usernames(following))

	n, err := repo.CountFollowers(ctx, conn, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.CountFollowing(ctx, conn, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestFollowRepository_DuplicateEdge(t *testing.T) {
	conn := openTestDB(t)
	repo := NewFollowRepository()
	ctx := context.Background()

	mustCreateUsers(t, conn, newUser(1, "u1"), newUser(2, "u2"))
	require.NoError(t, repo.Create(ctx, conn, 2, 1))

	err := repo.Create(ctx, conn, 2, 1)
	assert.ErrorIs(t, err, ErrUniqueViolation)
}

func TestFollowRepository_Delete(t *testing.T) {
	conn := openTestDB(t)
	repo := NewFollowRepository()
	ctx := context.Background()

	mustCreateUsers(t, conn, newUser(1, "u1"), newUser(2, "u2"))
	require.NoError(t, repo.Create(ctx, conn, 2, 1))

	deleted, err := repo.Delete(ctx, conn, 2, 1)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, conn, 2, 1)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestFollowRepository_CascadeOnUserDelete(t *testing.T) {
	conn := openTestDB(t)
	follows := NewFollowRepository()
	users := NewUserRepository()
	ctx := context.Background()

	mustCreateUsers(t, conn, newUser(1, "u1"), newUser(2, "u2"), newUser(3, "u3"))
	require.NoError(t, follows.Create(ctx, conn, 2, 1))
	require.NoError(t, follows.Create(ctx, conn, 1, 3))

	require.NoError(t, users.Delete(ctx, conn, 1))

	n, err := follows.CountFollowing(ctx, conn, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = follows.CountFollowers(ctx, conn, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
