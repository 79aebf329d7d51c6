package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleTeacher.Valid())
	assert.False(t, Role("student").Valid())
	assert.False(t, Role("").Valid())
}

func TestLoginResponseDecode(t *testing.T) {
	body := `{"access":"a","refresh":"r","user":{"id":7,"username":"dilnoza","role":"teacher","fullName":"Dilnoza K."}}`

	var resp LoginResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, "a", resp.Access)
	assert.Equal(t, "r", resp.Refresh)
	require.NotNil(t, resp.User)
	assert.Equal(t, RoleTeacher, resp.User.Role)
	assert.Equal(t, "Dilnoza K.", resp.User.FullName)
}

func TestPageTotalPages(t *testing.T) {
	p := Page[News]{Count: 21}
	assert.Equal(t, 3, p.TotalPages(10))
	assert.Equal(t, 1, p.TotalPages(0))
	assert.Equal(t, 1, (&Page[News]{}).TotalPages(10))
}
