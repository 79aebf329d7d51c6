package redact

import (
	"io"
	"slices"
	"sync"
)

// Hook 按添加顺序执行的一组规则
type Hook struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewHook 创建脱敏钩子
func NewHook(rules ...Rule) *Hook {
	h := &Hook{}
	h.Add(rules...)
	return h
}

// Add 添加规则，同名规则会被替换
func (h *Hook) Add(rules ...Rule) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range rules {
		if r == nil {
			continue
		}
		h.rules = slices.DeleteFunc(h.rules, func(e Rule) bool { return e.Name() == r.Name() })
		h.rules = append(h.rules, r)
	}
}

// Remove 按名称移除规则
func (h *Hook) Remove(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.rules)
	h.rules = slices.DeleteFunc(h.rules, func(e Rule) bool { return e.Name() == name })
	return len(h.rules) != n
}

// Len 规则数量
func (h *Hook) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rules)
}

// Redact 依次应用所有规则
func (h *Hook) Redact(s string) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, r := range h.rules {
		s = r.Apply(s)
	}
	return s
}

// Writer 在写入前对内容脱敏
type Writer struct {
	out  io.Writer
	hook *Hook
}

// NewWriter 包装 out
func NewWriter(out io.Writer, hook *Hook) *Writer {
	return &Writer{out: out, hook: hook}
}

// Write 实现 io.Writer。返回值为原始长度，避免调用方误判为短写
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 || w.hook == nil || w.hook.Len() == 0 {
		return w.out.Write(p)
	}
	text := string(p)
	masked := w.hook.Redact(text)
	if masked == text {
		return w.out.Write(p)
	}
	if _, err := w.out.Write([]byte(masked)); err != nil {
		return 0, err
	}
	return len(p), nil
}
