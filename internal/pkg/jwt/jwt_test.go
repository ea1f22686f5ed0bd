package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/domain/auth"
	"github.com/cmlabs-hris/hrm-core/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt"

func TestGenerateAndResolve(t *testing.T) {
	svc, err := NewJWTService(testSecret, "1h")
	require.NoError(t, err)

	empID := "0190a0b2-0000-7000-8000-000000000007"
	token, expiresAt, err := svc.GenerateAccessToken("user-1", &empID, user.RoleManager)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)

	id, err := svc.IdentityFromToken(context.Background(), decoded)
	require.NoError(t, err)
	assert.Equal(t, auth.Identity{UserID: "user-1", EmployeeID: empID, Role: user.RoleManager}, id)
}

func TestIdentityFromToken_WithoutEmployee(t *testing.T) {
	svc, err := NewJWTService(testSecret, "1h")
	require.NoError(t, err)

	token, _, err := svc.GenerateAccessToken("user-2", nil, user.RoleAdmin)
	require.NoError(t, err)
	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)

	id, err := svc.IdentityFromToken(context.Background(), decoded)
	require.NoError(t, err)
	assert.Empty(t, id.EmployeeID)
	assert.Equal(t, user.RoleAdmin, id.Role)
}

func TestIdentityFromToken_RejectsOtherTokenTypes(t *testing.T) {
	svc, err := NewJWTService(testSecret, "1h")
	require.NoError(t, err)

	_, raw, err := svc.JWTAuth().Encode(map[string]interface{}{
		"user_id": "user-1",
		"role":    "admin",
		"type":    "refresh",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	decoded, err := svc.JWTAuth().Decode(raw)
	require.NoError(t, err)

	_, err = svc.IdentityFromToken(context.Background(), decoded)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = svc.IdentityFromToken(context.Background(), nil)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestNewJWTService_BadExpiration(t *testing.T) {
	_, err := NewJWTService(testSecret, "soon")
	assert.Error(t, err)
}
