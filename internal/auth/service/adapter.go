package service

import (
	"context"

	"assettrack/internal/platform/middleware"
)

// ValidatorAdapter bridges the auth service to the middleware's validator
// interface so the middleware package stays free of service imports.
type ValidatorAdapter struct {
	service *Service
}

func NewValidatorAdapter(service *Service) *ValidatorAdapter {
	return &ValidatorAdapter{service: service}
}

func (a *ValidatorAdapter) ValidateToken(ctx context.Context, tokenString string) (*middleware.TokenClaims, error) {
	claims, err := a.service.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{
		UserID:    claims.Subject,
		Name:      claims.Name,
		Role:      claims.Role,
		SessionID: claims.SessionID,
	}, nil
}
