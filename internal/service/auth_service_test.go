package service_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"dochub/internal/config"
	"dochub/internal/domain"
	"dochub/internal/service"
)

func newAuthService(t *testing.T, password string) service.AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return service.NewAuthService(
		config.AuthConfig{Username: "operator", PasswordHash: string(hash)},
		config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Hour, Issuer: "dochub"},
	)
}

func TestLogin_Success(t *testing.T) {
	svc := newAuthService(t, "correct horse")

	token, err := svc.Login(service.LoginInput{Username: "operator", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Username)
	assert.Equal(t, "dochub", claims.Issuer)
}

func TestLogin_WrongUsername(t *testing.T) {
	svc := newAuthService(t, "pw")
	_, err := svc.Login(service.LoginInput{Username: "admin", Password: "pw"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newAuthService(t, "pw")
	_, err := svc.Login(service.LoginInput{Username: "operator", Password: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newAuthService(t, "pw")
	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := newAuthService(t, "pw")

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, &service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "operator",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Username: "operator",
	})
	signed, err := other.SignedString([]byte("a-different-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newAuthService(t, "pw")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "operator",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		Username: "operator",
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.Error(t, err)
}
