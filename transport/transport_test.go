package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAddress(t *testing.T) {
	valid := []string{":8080", "localhost:80", "127.0.0.1:65535", "edu-portal.uz:443"}
	for _, addr := range valid {
		assert.True(t, ValidateAddress(addr), addr)
	}
	invalid := []string{"", "8080", ":0", ":70000", "-host:80", "host_name:80"}
	for _, addr := range invalid {
		assert.False(t, ValidateAddress(addr), addr)
	}
}
