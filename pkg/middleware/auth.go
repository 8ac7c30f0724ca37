package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/addressbook/pkg/errors"
	"github.com/utafrali/addressbook/pkg/httputil"
	"github.com/utafrali/addressbook/pkg/logger"
)

type contextKeyType string

const userIDKey contextKeyType = "user_id"

// TokenVerifier checks a bearer token and returns the identity reference it
// was issued for.
type TokenVerifier func(token string) (string, error)

// Auth rejects requests without a valid bearer token and attaches the
// verified identity reference to the request context. A missing or
// non-bearer credential yields UNAUTHENTICATED; a token that fails
// verification yields INVALID_TOKEN regardless of the reason. In both cases
// the wrapped handler is not invoked.
func Auth(verify TokenVerifier, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				httputil.WriteError(w, r, apperrors.Unauthenticated(), l)
				return
			}

			identityRef, err := verify(token)
			if err != nil {
				requestLogger(r.Context(), l).DebugContext(r.Context(), "token rejected",
					slog.String("reason", err.Error()),
				)
				httputil.WriteError(w, r, apperrors.InvalidToken(), l)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, identityRef)
			ctx = logger.WithUserID(ctx, identityRef)
			if scoped := logger.FromContext(ctx); scoped != slog.Default() {
				ctx = logger.NewContext(ctx, scoped.With(slog.String("user_id", identityRef)))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively; an empty token is not a credential.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func requestLogger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if l := logger.FromContext(ctx); l != slog.Default() || fallback == nil {
		return l
	}
	return fallback
}

// UserIDFromContext extracts the verified identity reference from the
// request context.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}
