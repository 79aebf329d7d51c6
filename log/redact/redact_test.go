package redact

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinRules(t *testing.T) {
	hook := NewHook(Builtin()...)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bearer header",
			input:    `{"authorization":"Bearer abc.def-ghi"}`,
			expected: `{"authorization":"Bearer ******"}`,
		},
		{
			name:     "token pair",
			input:    `{"access":"a1","refresh":"r1","user":{"id":1}}`,
			expected: `{"access":"******","refresh":"******","user":{"id":1}}`,
		},
		{
			name:     "escaped body inside message",
			input:    `{"body":"{\"refresh\":\"r1\"}"}`,
			expected: `{"body":"{\"refresh\":\"******\"}"}`,
		},
		{
			name:     "bare jwt",
			input:    `token eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig-123 issued`,
			expected: `token ****** issued`,
		},
		{
			name:     "nothing sensitive",
			input:    `{"path":"/ru/news","status":200}`,
			expected: `{"path":"/ru/news","status":200}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, hook.Redact(tt.input))
		})
	}
}

func TestHookManagement(t *testing.T) {
	hook := NewHook()
	hook.Add(MustPatternRule("digits", `\d+`, "#"), nil)
	hook.Add(MustPatternRule("digits", `\d`, "*"))
	assert.Equal(t, 1, hook.Len())
	assert.Equal(t, "id=***", hook.Redact("id=123"))

	assert.True(t, hook.Remove("digits"))
	assert.False(t, hook.Remove("digits"))
	assert.Equal(t, "id=123", hook.Redact("id=123"))

	_, err := NewPatternRule("broken", "[", "")
	assert.Error(t, err)
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, NewHook(BearerRule))

	line := []byte("Authorization: Bearer secret-token\n")
	n, err := w.Write(line)
	require.NoError(t, err)
	assert.Equal(t, len(line), n)
	assert.Equal(t, "Authorization: Bearer ******\n", buf.String())
}
