package tag

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upstream struct {
	BaseURL string        `default:"http://localhost:8000"`
	Timeout time.Duration `default:"15s"`
}

type settings struct {
	Name      string            `default:"eduportal"`
	Port      int               `default:"8080"`
	Secure    bool              `default:"true"`
	Ratio     float64           `default:"0.5"`
	Locales   []string          `default:"uz, ru, en"`
	Headers   map[string]string `default:"x-env: dev"`
	Upstream  upstream
	Fallback  *upstream
	Endpoints []upstream
	untouched string `default:"x"`
}

func TestApplyDefaults(t *testing.T) {
	s := &settings{Port: 9000, Endpoints: []upstream{{BaseURL: "http://a"}}}
	require.NoError(t, ApplyDefaults(s))

	assert.Equal(t, "eduportal", s.Name)
	assert.Equal(t, 9000, s.Port)
	assert.True(t, s.Secure)
	assert.Equal(t, 0.5, s.Ratio)
	assert.Equal(t, []string{"uz", "ru", "en"}, s.Locales)
	assert.Equal(t, map[string]string{"x-env": "dev"}, s.Headers)
	assert.Equal(t, 15*time.Second, s.Upstream.Timeout)
	require.NotNil(t, s.Fallback)
	assert.Equal(t, "http://localhost:8000", s.Fallback.BaseURL)
	assert.Equal(t, "http://a", s.Endpoints[0].BaseURL)
	assert.Equal(t, 15*time.Second, s.Endpoints[0].Timeout)
	assert.Empty(t, s.untouched)
}

func TestApplyDefaultsErrors(t *testing.T) {
	assert.ErrorIs(t, ApplyDefaults(settings{}), ErrTargetMustBePointer)

	var nilPtr *settings
	assert.ErrorIs(t, ApplyDefaults(nilPtr), ErrTargetMustBePointer)

	type bad struct {
		Port int `default:"eighty"`
	}
	err := ApplyDefaults(&bad{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field Port")
}
