package validator

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/ru"
	"github.com/go-playground/locales/uz"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	ru_translations "github.com/go-playground/validator/v10/translations/ru"

	"github.com/kochabx/eduportal/errors"
)

// Default 全局校验器
var Default = New()

// Validator 带多语言错误消息的校验器
type Validator struct {
	validate    *validator.Validate
	translators map[string]ut.Translator
	defaultLang string
}

// Option 校验器选项
type Option func(*Validator)

// WithDefaultLang 设置默认错误消息语言
func WithDefaultLang(lang string) Option {
	return func(v *Validator) {
		v.defaultLang = lang
	}
}

// New 创建校验器。en、ru 使用各自的翻译，uz 暂无内置翻译，回退为英文
func New(opts ...Option) *Validator {
	v := &Validator{
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		translators: make(map[string]ut.Translator, 3),
		defaultLang: "en",
	}
	for _, opt := range opts {
		opt(v)
	}

	// 错误中的字段名使用 json 标签
	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			name, _, _ = strings.Cut(f.Tag.Get("mapstructure"), ",")
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	uni := ut.New(en.New(), en.New(), ru.New(), uz.New())
	if trans, ok := uni.GetTranslator("en"); ok {
		_ = en_translations.RegisterDefaultTranslations(v.validate, trans)
		v.translators["en"] = trans
	}
	if trans, ok := uni.GetTranslator("ru"); ok {
		_ = ru_translations.RegisterDefaultTranslations(v.validate, trans)
		v.translators["ru"] = trans
	}
	return v
}

// Engine 底层 validator 实例，用于注册自定义规则
func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

// Struct 校验结构体，错误消息使用默认语言
func (v *Validator) Struct(s any) error {
	return v.StructLang(context.Background(), v.defaultLang, s)
}

// StructCtx 同 Struct，带上下文
func (v *Validator) StructCtx(ctx context.Context, s any) error {
	return v.StructLang(ctx, v.defaultLang, s)
}

// StructLang 校验结构体并以 lang 输出错误消息
func (v *Validator) StructLang(ctx context.Context, lang string, s any) error {
	if s == nil {
		return errors.BadRequest("validation target cannot be nil")
	}
	err := v.validate.StructCtx(ctx, s)
	if err == nil {
		return nil
	}
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	return v.translate(ves, lang)
}

// Var 校验单个变量
func (v *Validator) Var(field any, tag string) error {
	return v.validate.Var(field, tag)
}

func (v *Validator) translate(ves validator.ValidationErrors, lang string) Errors {
	trans, ok := v.translators[lang]
	if !ok {
		trans = v.translators[v.defaultLang]
	}

	out := make(Errors, 0, len(ves))
	for _, fe := range ves {
		msg := fe.Error()
		if trans != nil {
			msg = fe.Translate(trans)
		}
		out = append(out, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Value:   fe.Value(),
			Message: msg,
		})
	}
	return out
}
