// Package identity verifies access tokens issued by the hospital's
// identity provider. This service never issues tokens; it only checks the
// signature and extracts the caller's id, name and role.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/models"
	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	wrap "github.com/cliniktrak/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpToken     = errors.New("token has expired")
)

type TokenService struct {
	secret string
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: secret}
}

// Verify validates the given JWT token string and returns the caller
// identity carried in it.
func (s *TokenService) Verify(ctx context.Context, token string) (*models.User, error) {
	ctx = wrap.WithAction(ctx, "verify_token")

	parsedToken, err := jwt.ParseWithClaims(token, jwt.MapClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return []byte(s.secret), nil
	})
	if err != nil || !parsedToken.Valid {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	mc, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	userIDStr, _ := mc["user_id"].(string)
	if userIDStr == "" {
		return nil, wrap.Error(ctx, errors.New("invalid or missing 'user_id' in token claims"))
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, wrap.Error(ctx, errors.New("invalid 'user_id' in token claims"))
	}

	role, _ := mc["role"].(string)
	switch types.UserRole(role) {
	case types.RolePatient, types.RoleDriver, types.RoleStaff, types.RoleAdmin:
	default:
		return nil, wrap.Error(ctx, errors.New("invalid or missing 'role' in token claims"))
	}

	name, _ := mc["name"].(string)

	expFloat, ok := mc["exp"].(float64)
	if !ok {
		return nil, wrap.Error(ctx, errors.New("invalid or missing 'exp' in token claims"))
	}
	if time.Now().UTC().After(time.Unix(int64(expFloat), 0)) {
		return nil, wrap.Error(ctx, ErrExpToken)
	}

	return &models.User{
		ID:   userID,
		Name: name,
		Role: types.UserRole(role),
	}, nil
}
