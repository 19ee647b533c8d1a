package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	token := signedJWT(t, "user-42")

	tests := []struct {
		name       string
		credential string
		want       string
	}{
		{"raw token", token, "user-42"},
		{"bearer prefix", "Bearer " + token, "user-42"},
		{"lowercase prefix with padding", "  bearer " + token + " ", "user-42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Subject(tt.credential)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubjectErrors(t *testing.T) {
	_, err := Subject("opaque-credential")
	assert.ErrorIs(t, err, jwt.ErrTokenMalformed)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: "bidzu"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = Subject(noSubject)
	assert.ErrorIs(t, err, ErrNoSubject)
}
