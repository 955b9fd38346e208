package form

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// ErrInvalidTarget Bind 的目标不是结构体指针
var ErrInvalidTarget = errors.New("form: bind target must be a non-nil struct pointer")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldErrors 字段名 -> 错误提示，校验通过时为 nil
type FieldErrors map[string]string

// Error 实现 error 接口，按字段名排序输出
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e[field])
	}
	return strings.Join(parts, "; ")
}

// Validator 返回表单共用的校验器，字段名取自 form 标签
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// notblank: 只含空白字符也视为未填写
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			panic(err)
		}
		validate = v
	})
	return validate
}

// Bind 将提交的字段映射填充到表单结构体并校验。
// 未出现在 values 中的字段保持空字符串；校验失败时返回每个字段的第一条错误。
func Bind(dst interface{}, values map[string]string) FieldErrors {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		panic(ErrInvalidTarget)
	}

	elem := rv.Elem()
	typ := elem.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" || field.Type.Kind() != reflect.String {
			continue
		}
		elem.Field(i).SetString(values[name])
	}

	return Validate(dst)
}

// Validate 校验已填充的表单
func Validate(f interface{}) FieldErrors {
	err := Validator().Struct(f)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return FieldErrors{"": err.Error()}
	}

	fieldErrs := make(FieldErrors, len(validationErrs))
	for _, fe := range validationErrs {
		if _, exists := fieldErrs[fe.Field()]; exists {
			continue
		}
		fieldErrs[fe.Field()] = message(fe)
	}
	return fieldErrs
}

// message 把校验失败翻译成面向用户的提示
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	default:
		return "Invalid value."
	}
}
