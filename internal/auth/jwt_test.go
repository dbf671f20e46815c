package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/ghostmode/internal/auth"
	"github.com/gosuda/ghostmode/internal/domain"
)

func TestJWT_IssueAndValidate(t *testing.T) {
	t.Parallel()

	secret := "test-secret-key-very-long-and-secure"
	adminID := uuid.New()

	tests := []struct {
		name     string
		issue    func(string, uuid.UUID, string, time.Duration) (string, error)
		wantType string
	}{
		{"access token", auth.IssueAccessToken, "access"},
		{"refresh token", auth.IssueRefreshToken, "refresh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			token, err := tt.issue(secret, adminID, domain.RoleModerator, 5*time.Minute)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			claims, err := auth.ValidateToken(secret, token)
			require.NoError(t, err)
			assert.Equal(t, adminID.String(), claims.AdminID)
			assert.Equal(t, adminID.String(), claims.Subject)
			assert.Equal(t, domain.RoleModerator, claims.Role)
			assert.Equal(t, tt.wantType, claims.TokenType)
			assert.Equal(t, "ghostmode", claims.Issuer)
		})
	}
}

func TestJWT_Rejections(t *testing.T) {
	t.Parallel()

	secret := "test-secret-key-very-long-and-secure"

	expired, err := auth.IssueAccessToken(secret, uuid.New(), domain.RoleAdmin, -time.Second)
	require.NoError(t, err)

	otherSecret, err := auth.IssueAccessToken("a-completely-different-secret-value", uuid.New(), domain.RoleAdmin, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", otherSecret},
		{"malformed", "not.a.jwt"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := auth.ValidateToken(secret, tt.token)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}
