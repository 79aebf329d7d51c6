// Package redact 在日志输出前对凭证做脱敏
package redact

import (
	"fmt"
	"regexp"
)

// Mask 替换后的占位符
const Mask = "******"

// Rule 脱敏规则
type Rule interface {
	Name() string
	Apply(s string) string
}

// PatternRule 基于正则的内容脱敏
type PatternRule struct {
	name        string
	pattern     *regexp.Regexp
	replacement string
}

// NewPatternRule 创建内容脱敏规则，replacement 支持 $1 等分组引用
func NewPatternRule(name, pattern, replacement string) (*PatternRule, error) {
	if name == "" {
		return nil, fmt.Errorf("rule name cannot be empty")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return &PatternRule{name: name, pattern: re, replacement: replacement}, nil
}

// MustPatternRule 同 NewPatternRule，失败时 panic
func MustPatternRule(name, pattern, replacement string) *PatternRule {
	r, err := NewPatternRule(name, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *PatternRule) Name() string { return r.name }

func (r *PatternRule) Apply(s string) string {
	return r.pattern.ReplaceAllString(s, r.replacement)
}

// FieldRule 屏蔽 JSON 字符串字段的值，嵌套在字符串里的转义 JSON 同样生效
type FieldRule struct {
	field   string
	pattern *regexp.Regexp
}

// NewFieldRule 创建字段脱敏规则
func NewFieldRule(field string) *FieldRule {
	q := regexp.QuoteMeta(field)
	return &FieldRule{
		field:   field,
		pattern: regexp.MustCompile(`(\\?"` + q + `\\?"\s*:\s*\\?")[^"\\]*`),
	}
}

func (r *FieldRule) Name() string { return "field:" + r.field }

func (r *FieldRule) Apply(s string) string {
	return r.pattern.ReplaceAllString(s, "${1}"+Mask)
}
