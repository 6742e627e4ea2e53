package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	user := &model.User{
		Base: model.Base{ID: uuid.New()},
		Role: model.UserRolePatient,
	}

	token, expiresAt, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.UserRolePatient, claims.Role)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", time.Hour)
	verifier := NewJWTService("secret-b", time.Hour)

	token, _, err := issuer.GenerateAccessToken(&model.User{Base: model.Base{ID: uuid.New()}})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute)

	token, _, err := svc.GenerateAccessToken(&model.User{Base: model.Base{ID: uuid.New()}})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
