package session

import (
	"orderform/internal/core/domain/user"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// JWT verifies bearer tokens minted by the login service with a shared HMAC key.
type JWT struct {
	secret []byte
	issuer string
}

func NewJWT(secret string, issuer string) *JWT {
	if secret == "" {
		panic("session secret must not be empty")
	}
	return &JWT{secret: []byte(secret), issuer: issuer}
}

func (s *JWT) Verify(token user.SessionToken) (user.ID, error) {
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		options = append(options, jwt.WithIssuer(s.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(string(token), claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, options...)
	if err != nil || !parsed.Valid {
		return 0, user.ErrInvalidSessionToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, user.ErrInvalidSessionToken
	}
	return user.ID(id), nil
}
