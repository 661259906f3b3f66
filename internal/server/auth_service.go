package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const tokenQueryParam = "token"

// TokenCounter is the single query token authentication needs.
type TokenCounter interface {
	CountToken(ctx context.Context, value string) (int, error)
}

// AuthService checks bearer tokens against the tokens table on every call.
type AuthService struct {
	store TokenCounter
}

func NewAuthService(tokens TokenCounter) *AuthService {
	if tokens == nil {
		return nil
	}
	return &AuthService{store: tokens}
}

// Authorize succeeds only when exactly one row matches token.
func (a *AuthService) Authorize(ctx context.Context, token string) error {
	if a == nil || a.store == nil {
		return internalError(fmt.Errorf("auth store is required"))
	}

	count, err := a.store.CountToken(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return unauthorized(fmt.Errorf("unknown token"))
	}
	if err != nil {
		return internalError(fmt.Errorf("count token: %w", err))
	}
	if count != 1 {
		return unauthorized(fmt.Errorf("unknown token"))
	}
	return nil
}

// tokenFromRequest reads the token query parameter, falling back to an
// Authorization: Bearer header when the parameter is absent.
func tokenFromRequest(r *http.Request) (string, bool) {
	query := r.URL.Query()
	if query.Has(tokenQueryParam) {
		return query.Get(tokenQueryParam), true
	}

	scheme, value, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || value == "" {
		return "", false
	}
	return value, true
}

func (s *Server) withToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := tokenFromRequest(r)
		if !ok {
			authFailuresTotal.Inc()
			s.writeErrorReq(w, r, unauthorized(fmt.Errorf("missing token")))
			return
		}
		if err := s.auth.Authorize(r.Context(), token); err != nil {
			if errorKindOf(err) == kindUnauthorized {
				authFailuresTotal.Inc()
			}
			s.writeErrorReq(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
