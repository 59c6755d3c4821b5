//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/config"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// IssueToken signs a token the way the identity service would, using the
// test config secret.
func IssueToken(t *testing.T, cfg config.Config, holderID uuid.UUID, role jwt.Role) string {
	t.Helper()

	duration, err := time.ParseDuration(cfg.JWT.Duration)
	require.NoError(t, err)

	svc := jwt.NewService(cfg.JWT.Secret, duration)
	token, err := svc.GenerateToken(holderID, role)
	require.NoError(t, err)

	return token
}

func IssueHolderToken(t *testing.T, cfg config.Config, holderID uuid.UUID) string {
	return IssueToken(t, cfg, holderID, jwt.RoleHolder)
}

func IssueAdminToken(t *testing.T, cfg config.Config, holderID uuid.UUID) string {
	return IssueToken(t, cfg, holderID, jwt.RoleAdmin)
}
