package auth

import (
	"testing"
	"time"

	"restaurant-directory/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{ID: 42}

	accessToken, refreshToken, err := GenerateTokenPair(testSecret, user)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, accessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "42", claims.Subject)

	_, err = ParseToken(testSecret, refreshToken, TokenTypeAccess)
	assert.ErrorContains(t, err, "expected access token")

	_, err = ParseToken(testSecret, refreshToken, TokenTypeRefresh)
	assert.NoError(t, err)
}

func TestParseTokenRejects(t *testing.T) {
	user := &models.User{ID: 7}
	good, err := GenerateToken(testSecret, user, TokenTypeAccess)
	require.NoError(t, err)

	_, err = ParseToken("another-secret-another-secret-000", good, TokenTypeAccess)
	assert.Error(t, err)

	_, err = ParseToken(testSecret, good+"x", TokenTypeAccess)
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:    7,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ParseToken(testSecret, signed, TokenTypeAccess)
	assert.ErrorContains(t, err, "invalid or expired")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 7, TokenType: TokenTypeAccess})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, unsigned, TokenTypeAccess)
	assert.Error(t, err)
}
