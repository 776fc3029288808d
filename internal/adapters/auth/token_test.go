package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusevents/internal/domain"
)

func TestJWT_Issue(t *testing.T) {
	secret := "test-secret"
	j := NewJWT(secret)

	token, err := j.Issue("user-123", "u@campus.edu", domain.RoleOrganizer, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Parse and verify claims
	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "u@campus.edu", claims.Email)
	assert.Equal(t, "ORGANIZER", claims.Role)
}

func TestJWT_Verify(t *testing.T) {
	j := NewJWT("test-secret")
	valid, err := j.Issue("user-1", "a@campus.edu", domain.RoleAdmin, time.Hour)
	require.NoError(t, err)
	expired, err := j.Issue("user-1", "a@campus.edu", domain.RoleAdmin, -time.Minute)
	require.NoError(t, err)
	foreign, err := NewJWT("other-secret").Issue("user-1", "a@campus.edu", domain.RoleAdmin, time.Hour)
	require.NoError(t, err)
	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Role:             "ADMIN",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		want    domain.Caller
		wantErr bool
	}{
		{"valid", valid, domain.Caller{ID: "user-1", Role: domain.RoleAdmin}, false},
		{"expired", expired, domain.Caller{}, true},
		{"wrong secret", foreign, domain.Caller{}, true},
		{"alg none", noneAlg, domain.Caller{}, true},
		{"garbage", "not-a-jwt", domain.Caller{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := j.Verify(tt.token)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
