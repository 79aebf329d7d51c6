package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/eduportal/errors"
)

const (
	defaultSuccessMsg = "success"
	defaultErrorMsg   = "operation failed"

	successCode = http.StatusOK
)

// Response 标准化的 API 响应结构
type Response[T any] struct {
	Code     int               `json:"code"`
	Msg      string            `json:"msg,omitempty"`
	Data     T                 `json:"data,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// GinJSON 写入成功的 JSON 响应
//
//	GinJSON(c, user)
//	// {"code":200, "msg":"success", "data":{...}}
func GinJSON(c *gin.Context, data any) {
	if c == nil {
		return
	}
	c.JSON(http.StatusOK, &Response[any]{
		Code: successCode,
		Msg:  defaultSuccessMsg,
		Data: data,
	})
}

// GinJSONE 写入带业务码的 JSON 响应，HTTP 状态码与业务码一致
//
// data 支持:
//   - error: 取 errors.Error 的消息与 metadata
//   - string: 作为消息
//   - nil: 默认错误消息
//   - 其他类型: 作为 data 返回
func GinJSONE(c *gin.Context, code int, data any) {
	if c == nil {
		return
	}
	defer c.Abort()

	resp := &Response[any]{Code: code}
	switch v := data.(type) {
	case error:
		e := errors.FromError(v)
		resp.Msg = e.Message
		resp.Metadata = e.Metadata
	case string:
		resp.Msg = v
	case nil:
		resp.Msg = defaultErrorMsg
	default:
		resp.Data = v
	}
	c.JSON(httpStatus(code), resp)
}

// GinError 按错误自身的状态码写入错误响应
func GinError(c *gin.Context, err error) {
	GinJSONE(c, errors.Code(err), err)
}

func httpStatus(code int) int {
	if code < 100 || code > 599 {
		return http.StatusInternalServerError
	}
	return code
}

// Success 创建成功响应对象
func Success[T any](data T) *Response[T] {
	return &Response[T]{
		Code: successCode,
		Msg:  defaultSuccessMsg,
		Data: data,
	}
}

// Failure 创建失败响应对象
func Failure(code int, msg string) *Response[any] {
	return &Response[any]{
		Code: code,
		Msg:  msg,
	}
}
