package validator

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginForm struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func TestStruct(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(&loginForm{Username: "admin", Password: "secret"}))

	err := v.Struct(&loginForm{Username: "ab", Email: "nope"})
	require.Error(t, err)

	var es Errors
	require.ErrorAs(t, err, &es)
	assert.True(t, es.Has("username"))
	assert.True(t, es.Has("password"))
	assert.True(t, es.Has("email"))
	assert.Contains(t, err.Error(), "password is a required field")
}

func TestStructLang(t *testing.T) {
	v := New()
	form := &loginForm{Username: "admin"}

	en := v.StructLang(context.Background(), "en", form)
	ru := v.StructLang(context.Background(), "ru", form)
	uz := v.StructLang(context.Background(), "uz", form)

	require.Error(t, en)
	require.Error(t, ru)
	assert.NotEqual(t, en.Error(), ru.Error())
	assert.Equal(t, en.Error(), uz.Error(), "uz falls back to the default language")
}

func TestToError(t *testing.T) {
	assert.Nil(t, ToError(nil))

	err := ToError(New().Struct(&loginForm{Username: "admin"}))
	assert.Equal(t, 422, err.Code)
	assert.Equal(t, "validation failed", err.Message)
	assert.Contains(t, err.Metadata, "password")
	assert.NotContains(t, err.Metadata, "username")
}

func TestVar(t *testing.T) {
	v := New()
	assert.NoError(t, v.Var("teacher@edu.uz", "email"))
	assert.Error(t, v.Var("invalid-email", "email"))
	assert.Error(t, v.Var("", "required"))
}

func TestConcurrentAccess(t *testing.T) {
	v := New()
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, v.Struct(&loginForm{Username: "teacher", Password: "pw"}))
		}()
	}
	wg.Wait()
}
