package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-key-for-unit-tests"

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func marketplaceClaims(exp time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "user-42",
		"email": "Jane@Example.com",
		"iat":   time.Now().Unix(),
		"exp":   exp.Unix(),
		"iss":   "marketplace-api",
	}
}

func TestJWTTokenService_Validate(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, "marketplace-api")
	tokenStr := signTestToken(t, testJWTSecret, marketplaceClaims(time.Now().Add(time.Hour)))

	claims, err := svc.Validate(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
	assert.Equal(t, "Jane@Example.com", claims.Email)
}

func TestJWTTokenService_ExpiredToken(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, "marketplace-api")
	tokenStr := signTestToken(t, testJWTSecret, marketplaceClaims(time.Now().Add(-time.Hour)))

	_, err := svc.Validate(tokenStr)
	assert.Error(t, err, "expired token should fail validation")
}

func TestJWTTokenService_InvalidSignature(t *testing.T) {
	svc := NewJWTTokenService("secret-2", "")
	tokenStr := signTestToken(t, "secret-1", marketplaceClaims(time.Now().Add(time.Hour)))

	_, err := svc.Validate(tokenStr)
	assert.Error(t, err, "token signed with different secret should fail")
}

func TestJWTTokenService_WrongIssuer(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, "marketplace-api")
	claims := marketplaceClaims(time.Now().Add(time.Hour))
	claims["iss"] = "someone-else"

	_, err := svc.Validate(signTestToken(t, testJWTSecret, claims))
	assert.Error(t, err)

	// Without a configured issuer any issuer is accepted.
	_, err = NewJWTTokenService(testJWTSecret, "").Validate(signTestToken(t, testJWTSecret, claims))
	assert.NoError(t, err)
}

func TestJWTTokenService_MissingSubject(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, "")
	claims := marketplaceClaims(time.Now().Add(time.Hour))
	delete(claims, "sub")

	_, err := svc.Validate(signTestToken(t, testJWTSecret, claims))
	assert.Error(t, err)
}

func TestJWTTokenService_InvalidTokenString(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, "")

	_, err := svc.Validate("not.a.valid.jwt")
	assert.Error(t, err)
}

func TestJWTTokenService_EmptyToken(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, "")

	_, err := svc.Validate("")
	assert.Error(t, err)
}
