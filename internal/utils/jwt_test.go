package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateTokenPair(t *testing.T) {
	userID := uuid.New()

	pair, err := GenerateTokenPair(testSecret, userID, time.Hour, 24*time.Hour)
	require.NoError(t, err)

	parsedAccess, err := ParseToken(testSecret, pair.Access, TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, userID, parsedAccess)

	parsedRefresh, err := ParseToken(testSecret, pair.Refresh, TokenKindRefresh)
	require.NoError(t, err)
	assert.Equal(t, userID, parsedRefresh)
}

func TestParseTokenRejectsWrongKind(t *testing.T) {
	pair, err := GenerateTokenPair(testSecret, uuid.New(), time.Hour, 24*time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, pair.Refresh, TokenKindAccess)
	assert.Error(t, err, "a refresh token must not pass as access")

	_, err = ParseToken(testSecret, pair.Access, TokenKindRefresh)
	assert.Error(t, err, "an access token must not pass as refresh")
}

func TestParseTokenRejectsExpired(t *testing.T) {
	pair, err := GenerateTokenPair(testSecret, uuid.New(), -time.Minute, 24*time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, pair.Access, TokenKindAccess)
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	pair, err := GenerateTokenPair(testSecret, uuid.New(), time.Hour, 24*time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", pair.Access, TokenKindAccess)
	assert.Error(t, err)
}
