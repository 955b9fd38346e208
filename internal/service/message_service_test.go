package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warbler/internal/form"
	"warbler/internal/repository"
)

func setupMessageService(t *testing.T) (MessageService, UserService, *sqlx.DB) {
	t.Helper()
	users, conn := setupStore(t, DefaultFollowPolicy())
	svc := NewMessageService(repository.NewMessageRepository(), repository.NewUserRepository(), newTestIDGen(t)).(*messageService)

	// 每次调用时间前进一秒，保证排序稳定
	clock := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc, users, conn
}

func TestMessage_CreateAndList(t *testing.T) {
	messages, users, conn := setupMessageService(t)
	ctx := context.Background()
	u := mustSignup(t, users, conn, "testuser")

	first, err := messages.Create(ctx, conn, u.ID, &form.MessageForm{Text: "first"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, first.UserID)

	_, err = messages.Create(ctx, conn, u.ID, &form.MessageForm{Text: "second"})
	require.NoError(t, err)

	list, err := messages.ListByUser(ctx, conn, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Text)
	assert.Equal(t, "first", list[1].Text)

	n, err := messages.Count(ctx, conn, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMessage_CreateValidation(t *testing.T) {
	messages, users, conn := setupMessageService(t)
	ctx := context.Background()
	u := mustSignup(t, users, conn, "testuser")

	_, err := messages.Create(ctx, conn, u.ID, &form.MessageForm{Text: ""})
	var fieldErrs form.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "This field is required.", fieldErrs["text"])

	_, err = messages.Create(ctx, conn, u.ID, &form.MessageForm{Text: strings.Repeat("a", 141)})
	assert.ErrorIs(t, err, ErrMessageTooLong)

	// 长度按字符计算
	_, err = messages.Create(ctx, conn, u.ID, &form.MessageForm{Text: strings.Repeat("鸟", 140)})
	assert.NoError(t, err)

	_, err = messages.Create(ctx, conn, 404, &form.MessageForm{Text: "hello"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMessage_DeleteOwnerOnly(t *testing.T) {
	messages, users, conn := setupMessageService(t)
	ctx := context.Background()
	u := mustSignup(t, users, conn, "testuser")
	u2 := mustSignup(t, users, conn, "testuser2")

	msg, err := messages.Create(ctx, conn, u.ID, &form.MessageForm{Text: "hello"})
	require.NoError(t, err)

	assert.ErrorIs(t, messages.Delete(ctx, conn, u2.ID, msg.ID), ErrNotMessageOwner)
	require.NoError(t, messages.Delete(ctx, conn, u.ID, msg.ID))
	assert.ErrorIs(t, messages.Delete(ctx, conn, u.ID, msg.ID), ErrMessageNotFound)
}

func TestMessage_Timeline(t *testing.T) {
	messages, users, conn := setupMessageService(t)
	ctx := context.Background()
	u := mustSignup(t, users, conn, "testuser")
	u2 := mustSignup(t, users, conn, "testuser2")
	u3 := mustSignup(t, users, conn, "testuser3")

	require.NoError(t, users.Follow(ctx, conn, u.ID, u2.ID))

	for _, post := range []struct {
		userID uint64
		text   string
	}{
		{u.ID, "mine"},
		{u2.ID, "followed"},
		{u3.ID, "stranger"},
	} {
		_, err := messages.Create(ctx, conn, post.userID, &form.MessageForm{Text: post.text})
		require.NoError(t, err)
	}

	timeline, err := messages.Timeline(ctx, conn, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, timeline, 2)
	assert.Equal(t, "followed", timeline[0].Text)
	assert.Equal(t, "mine", timeline[1].Text)
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, normalizeLimit(0))
	assert.Equal(t, DefaultListLimit, normalizeLimit(-1))
	assert.Equal(t, 10, normalizeLimit(10))
	assert.Equal(t, MaxListLimit, normalizeLimit(1000))
}
