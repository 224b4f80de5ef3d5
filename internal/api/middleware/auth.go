package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/nadia/mockdeck/internal/auth"
	"github.com/nadia/mockdeck/internal/mockups"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "user_email"
)

// Auth requires a valid bearer token or session cookie and injects the
// requester identity into the context.
func Auth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// An upstream authenticator (API key) may have identified the
			// requester already.
			if GetUserID(r.Context()) != uuid.Nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, ok := claimsFromRequest(jwtService, r)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth injects the requester identity when a valid token is
// present and passes the request through anonymously otherwise. Used on
// read surfaces where public mockups must stay reachable without login.
func OptionalAuth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := claimsFromRequest(jwtService, r); ok {
				r = r.WithContext(withClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func claimsFromRequest(jwtService *auth.JWTService, r *http.Request) (*auth.Claims, bool) {
	var token string

	// 1. Check Authorization header (API requests)
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token = strings.TrimPrefix(authHeader, "Bearer ")
	}

	// 2. Check cookie (web app)
	if token == "" {
		if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
			token = cookie.Value
		}
	}

	if token == "" {
		return nil, false
	}

	claims, err := jwtService.ValidateToken(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
	return ctx
}

// Helper functions to extract values from context
func GetUserID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func GetUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(UserEmailKey).(string); ok {
		return email
	}
	return ""
}

// GetRequester returns the authenticated requester, or nil for anonymous
// requests.
func GetRequester(ctx context.Context) *mockups.Requester {
	id := GetUserID(ctx)
	if id == uuid.Nil {
		return nil
	}
	return &mockups.Requester{ID: id, Email: GetUserEmail(ctx)}
}
