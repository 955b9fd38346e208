package response

// 业务错误码定义，前三位对应 HTTP 状态码
const (
	// 成功
	CodeSuccess = 0

	// 客户端错误 (400xx)
	CodeBadRequest     = 40000 // 请求参数错误
	CodeInvalidParams  = 40001 // 表单校验失败
	CodeSelfFollow     = 40002 // 不能关注自己
	CodeMessageTooLong = 40003 // 消息过长

	// 认证错误 (401xx)
	CodeUnauthorized       = 40100 // 未登录
	CodeInvalidToken       = 40101 // Token无效或已过期
	CodeInvalidCredentials = 40103 // 用户名或密码错误

	// 权限错误 (403xx)
	CodeForbidden       = 40300 // 无权限
	CodeNotMessageOwner = 40301 // 不是消息作者

	// 资源错误 (404xx)
	CodeNotFound        = 40400 // 资源不存在
	CodeUserNotFound    = 40401 // 用户不存在
	CodeMessageNotFound = 40402 // 消息不存在

	// 冲突 (409xx)
	CodeConflict         = 40900 // 资源冲突
	CodeUserExists       = 40901 // 用户已存在
	CodeUsernameExists   = 40902 // 用户名已存在
	CodeEmailExists      = 40903 // 邮箱已存在
	CodeAlreadyFollowing = 40904 // 已经关注
	CodeNotFollowing     = 40905 // 尚未关注

	// 限流 (429xx)
	CodeTooManyRequests = 42900 // 请求过多
	CodeLoginLimited    = 42901 // 登录失败次数过多

	// 服务端错误 (500xx)
	CodeInternalServerError = 50000 // 服务器内部错误
	CodeDatabaseError       = 50001 // 数据库错误
	CodeRedisError          = 50003 // Redis错误
)

// CodeMessage 错误码默认提示
var CodeMessage = map[int]string{
	CodeSuccess: "OK",

	CodeBadRequest:     "请求参数错误",
	CodeInvalidParams:  "参数验证失败",
	CodeSelfFollow:     "不能关注自己",
	CodeMessageTooLong: "消息长度不能超过140个字符",

	CodeUnauthorized:       "未登录",
	CodeInvalidToken:       "登录已过期，请重新登录",
	CodeInvalidCredentials: "用户名或密码错误",

	CodeForbidden:       "无权限",
	CodeNotMessageOwner: "只能删除自己的消息",

	CodeNotFound:        "资源不存在",
	CodeUserNotFound:    "用户不存在",
	CodeMessageNotFound: "消息不存在",

	CodeConflict:         "资源冲突",
	CodeUserExists:       "用户已存在",
	CodeUsernameExists:   "用户名已存在",
	CodeEmailExists:      "邮箱已被注册",
	CodeAlreadyFollowing: "已经关注该用户",
	CodeNotFollowing:     "尚未关注该用户",

	CodeTooManyRequests: "请求过多",
	CodeLoginLimited:    "登录失败次数过多，请稍后再试",

	CodeInternalServerError: "服务器内部错误",
	CodeDatabaseError:       "数据库错误",
	CodeRedisError:          "Redis错误",
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := CodeMessage[code]; ok {
		return msg
	}
	return "未知错误"
}
