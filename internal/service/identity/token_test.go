package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestVerify_ValidToken(t *testing.T) {
	svc := NewTokenService(testSecret)
	userID := uuid.MustNew()

	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": userID.String(),
		"name":    "Dana",
		"role":    "driver",
		"exp":     float64(time.Now().Add(time.Hour).Unix()),
	})

	user, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "Dana", user.Name)
	assert.Equal(t, types.RoleDriver, user.Role)
}

func TestVerify_WrongSecret(t *testing.T) {
	svc := NewTokenService(testSecret)

	token := signToken(t, "other-secret", jwt.MapClaims{
		"user_id": uuid.MustNew().String(),
		"role":    "patient",
		"exp":     float64(time.Now().Add(time.Hour).Unix()),
	})

	_, err := svc.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_ExpiredToken(t *testing.T) {
	svc := NewTokenService(testSecret)

	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": uuid.MustNew().String(),
		"role":    "patient",
		"exp":     float64(time.Now().Add(-time.Hour).Unix()),
	})

	_, err := svc.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestVerify_BadClaims(t *testing.T) {
	svc := NewTokenService(testSecret)
	exp := float64(time.Now().Add(time.Hour).Unix())

	cases := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"missing user_id", jwt.MapClaims{"role": "patient", "exp": exp}},
		{"malformed user_id", jwt.MapClaims{"user_id": "nope", "role": "patient", "exp": exp}},
		{"unknown role", jwt.MapClaims{"user_id": uuid.MustNew().String(), "role": "superuser", "exp": exp}},
		{"missing role", jwt.MapClaims{"user_id": uuid.MustNew().String(), "exp": exp}},
		{"missing exp", jwt.MapClaims{"user_id": uuid.MustNew().String(), "role": "patient"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Verify(context.Background(), signToken(t, testSecret, tc.claims))
			assert.Error(t, err)
		})
	}
}

func TestVerify_Garbage(t *testing.T) {
	svc := NewTokenService(testSecret)

	_, err := svc.Verify(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
