package usecase

import (
	"errors"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/jwt"

	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenValidator turns a bearer token into a holder identity. Token
// issuance lives in a separate identity service; this API only validates.
type TokenValidator interface {
	ValidateToken(token string) (uuid.UUID, jwt.Role, error)
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidatorImpl{jwtService: jwtService}
}

func (v *tokenValidatorImpl) ValidateToken(token string) (uuid.UUID, jwt.Role, error) {
	claims, err := v.jwtService.ValidateToken(token)
	if err != nil {
		return uuid.Nil, "", ErrInvalidToken
	}

	role := jwt.Role(claims.Role)
	if !role.IsValid() || claims.HolderID == uuid.Nil {
		return uuid.Nil, "", ErrInvalidToken
	}

	return claims.HolderID, role, nil
}
