package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSubject is returned for a JWT without a "sub" claim.
var ErrNoSubject = errors.New("auth: credential has no subject")

// Subject returns the "sub" claim of a JWT credential. The signature is not
// checked: the backend verifies credentials, this only labels logs.
func Subject(credential string) (string, error) {
	raw := strings.TrimSpace(credential)
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return "", fmt.Errorf("parse credential: %w", err)
	}
	if claims.Subject == "" {
		return "", ErrNoSubject
	}
	return claims.Subject, nil
}
