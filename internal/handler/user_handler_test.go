package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeNext(t *testing.T) {
	assert.True(t, safeNext("/create/"))
	assert.True(t, safeNext("/posts/1/edit/"))

	assert.False(t, safeNext(""))
	assert.False(t, safeNext("https://evil.com/"))
	// 协议相对形式也是站外跳转
	assert.False(t, safeNext("//evil.com"))
	assert.False(t, safeNext("//evil.com/create/"))
}

func TestResetConfirmURLEscapesEmail(t *testing.T) {
	assert.Equal(t,
		"/auth/password_reset/confirm/?email=leo%2Bblog%40example.com",
		resetConfirmURL("leo+blog@example.com"))
	assert.Equal(t,
		"/auth/password_reset/confirm/?email=a%26b%40example.com",
		resetConfirmURL("a&b@example.com"))
}
