package handler

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"warbler/internal/form"
	"warbler/internal/middleware"
	"warbler/internal/repository"
	"warbler/internal/service"
	log "warbler/pkg/logger"
	"warbler/pkg/response"
)

const (
	// requestTimeout 单个请求内数据库和Redis操作的超时时间
	requestTimeout = 3 * time.Second

	// sessionMaxAge Cookie 有效期（秒），与 Session TTL 一致
	sessionMaxAge = 7200

	maxFormMemory = 1 << 20
)

var errMalformedBody = errors.New("malformed request body")

// requestContext 带超时的请求上下文
func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// formValues 读取提交的字段，支持 JSON 对象和 urlencoded/multipart 表单
func formValues(c *gin.Context) (map[string]string, error) {
	switch c.ContentType() {
	case binding.MIMEJSON:
		values := map[string]string{}
		if err := c.ShouldBindJSON(&values); err != nil {
			// 空请求体按未提交任何字段处理，交给表单校验
			if errors.Is(err, io.EOF) {
				return values, nil
			}
			return nil, errMalformedBody
		}
		return values, nil
	case binding.MIMEMultipartPOSTForm:
		if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, errMalformedBody
		}
	default:
		if err := c.Request.ParseForm(); err != nil {
			return nil, errMalformedBody
		}
	}

	values := make(map[string]string, len(c.Request.PostForm))
	for key, vals := range c.Request.PostForm {
		if len(vals) > 0 {
			values[key] = vals[0]
		}
	}
	return values, nil
}

// bindForm 填充并校验表单，失败时已经写好响应，返回 false
func bindForm(c *gin.Context, dst interface{}) bool {
	values, err := formValues(c)
	if err != nil {
		response.Error(c, response.CodeBadRequest, "")
		return false
	}
	if fieldErrs := form.Bind(dst, values); fieldErrs != nil {
		response.ErrorWithData(c, response.CodeInvalidParams, "", fieldErrs)
		return false
	}
	return true
}

// idParam 解析路径中的ID
func idParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, response.CodeBadRequest, "ID格式错误")
		return 0, false
	}
	return id, true
}

// limitQuery 解析 ?limit=，非法值按默认处理
func limitQuery(c *gin.Context) int {
	limit, _ := strconv.Atoi(c.Query("limit"))
	return limit
}

// mustUserID 需要登录的接口里获取当前用户
func mustUserID(c *gin.Context) (uint64, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Error(c, response.CodeUnauthorized, "")
	}
	return userID, ok
}

// writeError 把业务错误转换为响应
func writeError(c *gin.Context, err error) {
	var fieldErrs form.FieldErrors
	if errors.As(err, &fieldErrs) {
		response.ErrorWithData(c, response.CodeInvalidParams, "", fieldErrs)
		return
	}

	var violation *repository.UniqueViolationError
	if errors.As(err, &violation) {
		switch violation.Field {
		case "username":
			response.ErrorWithData(c, response.CodeUsernameExists, "", form.FieldErrors{"username": "Username already taken."})
		case "email":
			response.ErrorWithData(c, response.CodeEmailExists, "", form.FieldErrors{"email": "Email already registered."})
		default:
			response.Error(c, response.CodeUserExists, "")
		}
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, response.CodeInvalidCredentials, "")
	case errors.Is(err, service.ErrUserNotFound):
		response.Error(c, response.CodeUserNotFound, "")
	case errors.Is(err, service.ErrMessageNotFound):
		response.Error(c, response.CodeMessageNotFound, "")
	case errors.Is(err, service.ErrNotMessageOwner):
		response.Error(c, response.CodeNotMessageOwner, "")
	case errors.Is(err, service.ErrSelfFollow):
		response.Error(c, response.CodeSelfFollow, "")
	case errors.Is(err, service.ErrAlreadyFollowing):
		response.Error(c, response.CodeAlreadyFollowing, "")
	case errors.Is(err, service.ErrNotFollowing):
		response.Error(c, response.CodeNotFollowing, "")
	case errors.Is(err, service.ErrMessageTooLong):
		response.Error(c, response.CodeMessageTooLong, "")
	case errors.Is(err, service.ErrPasswordHashFailed):
		response.Error(c, response.CodeBadRequest, "密码格式不支持")
	default:
		log.Error("请求处理失败", zap.Error(err), zap.String("path", c.FullPath()))
		response.Error(c, response.CodeInternalServerError, "")
	}
}
