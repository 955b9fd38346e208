package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"warbler/internal/form"
	"warbler/internal/model"
)

func TestFromModel(t *testing.T) {
	now := time.Now()
	user := &model.User{
		ID:           1,
		Username:     "testuser",
		Email:        "test@test.com",
		PasswordHash: "HASHED_PASSWORD",
		Bio:          "bio",
		CreatedAt:    now,
	}

	profile := FromModel(user)
	assert.Equal(t, uint64(1), profile.ID)
	assert.Equal(t, "testuser", profile.Username)
	assert.Equal(t, "bio", profile.Bio)
	assert.Equal(t, now, profile.CreatedAt)

	assert.Nil(t, FromModel(nil))
}

func TestFromUserAddForm(t *testing.T) {
	f := &form.UserAddForm{
		Username: "testuser",
		Email:    "test@test.com",
		Password: "password",
		Location: "Berlin",
	}

	signup := FromUserAddForm(f)
	assert.Equal(t, "testuser", signup.Username)
	assert.Equal(t, "password", signup.Password)
	assert.Equal(t, "Berlin", signup.Location)
}

func TestFromMessages(t *testing.T) {
	messages := []model.Message{{ID: 1, Text: "a", UserID: 9}, {ID: 2, Text: "b", UserID: 9}}

	out := FromMessages(messages)
	assert.Len(t, out, 2)
	assert.Equal(t, "b", out[1].Text)
	assert.Equal(t, uint64(9), out[0].UserID)
	assert.Empty(t, FromModels(nil))
}
