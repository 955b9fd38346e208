package dto

import (
	"warbler/internal/form"
	"warbler/internal/model"
)

// ============================================================================
// Form → DTO (表单 → Service 层)
// ============================================================================

// FromUserAddForm 注册表单 → DTO
func FromUserAddForm(f *form.UserAddForm) *SignupDTO {
	return &SignupDTO{
		Username:       f.Username,
		Email:          f.Email,
		Password:       f.Password,
		ImageURL:       f.ImageURL,
		HeaderImageURL: f.HeaderImageURL,
		Bio:            f.Bio,
		Location:       f.Location,
	}
}

// FromUserEditForm 编辑资料表单 → DTO
func FromUserEditForm(f *form.UserEditForm) *UpdateProfileDTO {
	return &UpdateProfileDTO{
		Password:       f.Password,
		ImageURL:       f.ImageURL,
		HeaderImageURL: f.HeaderImageURL,
		Bio:            f.Bio,
		Location:       f.Location,
	}
}

// ============================================================================
// Model → DTO (Repository 层 → 响应)
// ============================================================================

// FromModel Model → UserProfileDTO
func FromModel(user *model.User) *UserProfileDTO {
	if user == nil {
		return nil
	}
	return &UserProfileDTO{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		ImageURL:       user.ImageURL,
		HeaderImageURL: user.HeaderImageURL,
		Bio:            user.Bio,
		Location:       user.Location,
		CreatedAt:      user.CreatedAt,
	}
}

// FromModels 批量转换用户列表
func FromModels(users []model.User) []*UserProfileDTO {
	profiles := make([]*UserProfileDTO, 0, len(users))
	for i := range users {
		profiles = append(profiles, FromModel(&users[i]))
	}
	return profiles
}

// FromMessage Model → MessageDTO
func FromMessage(msg *model.Message) *MessageDTO {
	if msg == nil {
		return nil
	}
	return &MessageDTO{
		ID:        msg.ID,
		Text:      msg.Text,
		Timestamp: msg.Timestamp,
		UserID:    msg.UserID,
	}
}

// FromMessages 批量转换消息列表
func FromMessages(messages []model.Message) []*MessageDTO {
	out := make([]*MessageDTO, 0, len(messages))
	for i := range messages {
		out = append(out, FromMessage(&messages[i]))
	}
	return out
}
