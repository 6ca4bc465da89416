package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestGetSession_ValidToken(t *testing.T) {
	svc := NewService(nil, testSecret, 24)
	userID := uuid.New()
	exp := time.Now().Add(time.Hour)

	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": userID.String(),
		"email":   "customer@example.com",
		"exp":     exp.Unix(),
		"iat":     time.Now().Unix(),
	})

	sess, err := svc.GetSession(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, userID, sess.UserID)
	assert.Equal(t, "customer@example.com", sess.Email)
	assert.WithinDuration(t, exp, sess.ExpiresAt, time.Second)
}

func TestGetSession_ExpiredToken(t *testing.T) {
	svc := NewService(nil, testSecret, 24)

	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": uuid.NewString(),
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	sess, err := svc.GetSession(context.Background(), token)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestGetSession_WrongSecret(t *testing.T) {
	svc := NewService(nil, testSecret, 24)

	token := signToken(t, "some-other-secret", jwt.MapClaims{
		"user_id": uuid.NewString(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	sess, err := svc.GetSession(context.Background(), token)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestGetSession_GarbageToken(t *testing.T) {
	svc := NewService(nil, testSecret, 24)

	sess, err := svc.GetSession(context.Background(), "not-a-jwt")
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestGetSession_MalformedUserID(t *testing.T) {
	svc := NewService(nil, testSecret, 24)

	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": "not-a-uuid",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	sess, err := svc.GetSession(context.Background(), token)
	require.NoError(t, err)
	assert.Nil(t, sess)
}
