package validator

import (
	stderrors "errors"
	"strings"

	"github.com/kochabx/eduportal/errors"
)

// FieldError 单个字段的校验错误
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

// Errors 一次校验产生的全部字段错误
type Errors []FieldError

func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Fields 字段名到错误消息的映射，同一字段多条消息以 "; " 连接
func (es Errors) Fields() map[string]string {
	m := make(map[string]string, len(es))
	for _, e := range es {
		if prev, ok := m[e.Field]; ok {
			m[e.Field] = prev + "; " + e.Message
			continue
		}
		m[e.Field] = e.Message
	}
	return m
}

// Has 是否包含指定字段的错误
func (es Errors) Has(field string) bool {
	for _, e := range es {
		if e.Field == field {
			return true
		}
	}
	return false
}

// ToError 转为 422 错误，字段消息放在 metadata 中；非校验错误原样包装为 400
func ToError(err error) *errors.Error {
	if err == nil {
		return nil
	}
	var es Errors
	if stderrors.As(err, &es) {
		return errors.UnprocessableEntity("validation failed").WithMetadata(es.Fields())
	}
	if ge := new(errors.Error); stderrors.As(err, &ge) {
		return ge
	}
	return errors.Wrap(err, 400, "invalid request")
}
