package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warbler/internal/model"
)

func newMessage(id, userID uint64, text string, offset time.Duration) *model.Message {
	return &model.Message{
		ID:        id,
		Text:      text,
		Timestamp: baseTime.Add(offset),
		UserID:    userID,
	}
}

func TestMessageRepository_CreateGetDelete(t *testing.T) {
	conn := openTestDB(t)
	repo := NewMessageRepository()
	ctx := context.Background()

	mustCreateUsers(t, conn, newUser(1, "u1"))
	require.NoError(t, repo.Create(ctx, conn, newMessage(10, 1, "hello", 0)))

	got, err := repo.GetByID(ctx, conn, 10)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, uint64(1), got.UserID)
	assert.True(t, got.Timestamp.Equal(baseTime))

	require.NoError(t, repo.Delete(ctx, conn, 10))
	_, err = repo.GetByID(ctx, conn, 10)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, conn, 10), ErrNotFound)
}

func TestMessageRepository_ListByUserNewestFirst(t *testing.T) {
	conn := openTestDB(t)
	repo := NewMessageRepository()
	ctx := context.Background()

	mustCreateUsers(t, conn, newUser(1, "u1"), newUser(2, "u2"))
	require.NoError(t, repo.Create(ctx, conn, newMessage(10, 1, "first", 0)))
	require.NoError(t, repo.Create(ctx, conn, newMessage(11, 1, "second", time.Minute)))
	require.NoError(t, repo.Create(ctx, conn, newMessage(12, 2, "other", 2*time.Minute)))

	messages, err := repo.ListByUser(ctx, conn, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, texts(messages))

	limited, err := repo.ListByUser(ctx, conn, 1, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	n, err := repo.CountByUser(ctx, conn, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMessageRepository_Timeline(t *testing.T) {
	conn := openTestDB(t)
	repo := NewMessageRepository()
	follows := NewFollowRepository()
	ctx := context.Background()

	mustCreateUsers(t, conn, newUser(1, "u1"), newUser(2, "u2"), newUser(3, "u3"))
	require.NoError(t, follows.Create(ctx, conn, 1, 2))

	require.NoError(t, repo.Create(ctx, conn, newMessage(10, 1, "mine", 0)))
	require.NoError(t, repo.Create(ctx, conn, newMessage(11, 2, "followed", time.Minute)))
	require.NoError(t, repo.Create(ctx, conn, newMessage(12, 3, "stranger", 2*time.Minute)))

	timeline, err := repo.ListTimeline(ctx, conn, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"followed", "mine"}, texts(timeline))
}

func TestMessageRepository_CascadeOnUserDelete(t *testing.T) {
	conn := openTestDB(t)
	repo := NewMessageRepository()
	ctx := context.Background()

	mustCreateUsers(t, conn, newUser(1, "u1"))
	require.NoError(t, repo.Create(ctx, conn, newMessage(10, 1, "hello", 0)))
	require.NoError(t, NewUserRepository().Delete(ctx, conn, 1))

	n, err := repo.CountByUser(ctx, conn, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func texts(messages []model.Message) []string {
	out := make([]string, 0, len(messages))
	for _, m := range messages {
		out = append(out, m.Text)
	}
	return out
}

func usernames(users []model.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Username)
	}
	return out
}
