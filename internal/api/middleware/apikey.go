package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/nadia/mockdeck/internal/database/models"
	"github.com/nadia/mockdeck/pkg/token"
	"gorm.io/gorm"
)

// APIKeyAuth resolves an X-API-Key header to the owning user and injects
// the same context identity the JWT path does, so handlers never care
// which credential authenticated the request. Requests without the header
// fall through to the next authenticator.
//
// Mutating verbs additionally require the key's can_save_mockups flag.
func APIKeyAuth(db *gorm.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret := r.Header.Get("X-API-Key")
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			var key models.ApiKey
			err := db.WithContext(r.Context()).
				Preload("User").
				Where("key_hash = ?", token.Hash(secret)).
				First(&key).Error
			if err != nil || !key.Usable(time.Now()) || key.User == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if r.Method != http.MethodGet && r.Method != http.MethodHead && !key.CanSaveMockups {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			// Lazy usage tracking; a failed update never blocks the request.
			now := time.Now()
			_ = db.Model(&key).UpdateColumn("last_used_at", now).Error

			ctx := r.Context()
			ctx = context.WithValue(ctx, UserIDKey, key.User.ID)
			ctx = context.WithValue(ctx, UserEmailKey, key.User.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
