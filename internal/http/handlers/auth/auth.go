package auth

import (
	"context"
	"net/http"
	"orderform/internal/core/domain/user"
	"orderform/internal/core/services/auth"
	"strings"
)

const (
	AUTH_TOKEN_PREFIX  = "Bearer "
	AUTH_TOKEN_MAX_LEN = 2048
)

func ParseToken(r *http.Request) (token user.SessionToken, ok bool) {
	header := r.Header.Get("authorization")
	if !strings.HasPrefix(header, AUTH_TOKEN_PREFIX) {
		return token, false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, AUTH_TOKEN_PREFIX))
	if raw == "" || len(raw) > AUTH_TOKEN_MAX_LEN {
		return token, false
	}
	return user.SessionToken(raw), true
}

func SetAuthTokenToContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := ParseToken(r)
		if ok {
			ctx := context.WithValue(r.Context(), auth.CONTEXT_AUTH_TOKEN_KEY, token)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}
