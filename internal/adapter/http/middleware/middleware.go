package middleware

import (
	"context"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/models"
	"github.com/cliniktrak/ambulance-dispatch/pkg/logger"
)

type (
	// TokenVerifier turns a bearer token into a caller identity. Identity
	// issuance lives outside this service; only verification happens here.
	TokenVerifier interface {
		Verify(ctx context.Context, token string) (*models.User, error)
	}

	Middleware struct {
		tokens TokenVerifier
		log    logger.Logger
	}
)

func NewMiddleware(tokens TokenVerifier, log logger.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		log:    log,
	}
}
