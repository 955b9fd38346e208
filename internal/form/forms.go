package form

// MessageForm 发布消息
type MessageForm struct {
	Text string `form:"text" validate:"notblank"`
}

// UserAddForm 注册
type UserAddForm struct {
	Username       string `form:"username" validate:"notblank"`
	Email          string `form:"email" validate:"notblank,email"`
	Password       string `form:"password" validate:"min=6"`
	ImageURL       string `form:"image_url"`
	HeaderImageURL string `form:"header_image_url"`
	Bio            string `form:"bio"`
	Location       string `form:"location"`
}

// UserEditForm 编辑资料，Password 用于修改前重新认证
type UserEditForm struct {
	Password       string `form:"password" validate:"min=6"`
	ImageURL       string `form:"image_url"`
	HeaderImageURL string `form:"header_image_url"`
	Bio            string `form:"bio"`
	Location       string `form:"location"`
}

// LoginForm 登录
type LoginForm struct {
	Username string `form:"username" validate:"notblank"`
	Password string `form:"password" validate:"min=6"`
}
