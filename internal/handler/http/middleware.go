package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lynixdevs/urbanthreads/internal/auth"
	"github.com/lynixdevs/urbanthreads/internal/profile"
)

type contextKey string

const profileContextKey contextKey = "profile"

// Authenticator resolves a bearer session token into a profile and stows it
// in the request context. Requests without a token pass through untouched:
// browsing and carting do not require an account.
func Authenticator(authService auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			p, err := authService.Authenticate(r.Context(), token)
			if err != nil {
				log.Debug().Err(err).Msg("session token rejected")
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), profileContextKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that did not authenticate.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if profileFromContext(r.Context()) == nil {
			respondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin gates the back-office routes.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := profileFromContext(r.Context())
		if p == nil {
			respondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if p.Role != profile.RoleAdmin {
			respondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (uuid.UUID, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return uuid.Nil, false
	}

	token, err := uuid.FromString(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return uuid.Nil, false
	}
	return token, true
}

func profileFromContext(ctx context.Context) *profile.Profile {
	p, _ := ctx.Value(profileContextKey).(*profile.Profile)
	return p
}
