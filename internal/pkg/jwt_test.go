package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccess(42)
	require.NoError(t, err)

	claims, err := ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "access", claims.Subject)
}

func TestParseAccessGarbage(t *testing.T) {
	_, err := ParseAccess("not-a-token")
	assert.Error(t, err)
}

func TestNewResetCode(t *testing.T) {
	code, err := NewResetCode()
	require.NoError(t, err)
	require.Len(t, code, ResetCodeLength)
	for _, ch := range code {
		assert.True(t, ch >= '0' && ch <= '9')
	}
}
