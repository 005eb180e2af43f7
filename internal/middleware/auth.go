package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Varun5711/taskapi/internal/logger"
	"google.golang.org/grpc/status"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// Verifier resolves a bearer token to the user id it was issued for.
type Verifier interface {
	Verify(token string) (string, error)
}

type AuthMiddleware struct {
	verifier Verifier
	log      *logger.Logger
}

func NewAuthMiddleware(verifier Verifier, log *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		log:      log,
	}
}

func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := m.verifier.Verify(bearerToken(r))
		if err != nil {
			m.log.Debug("Rejected %s %s: %v", r.Method, r.URL.Path, err)
			writeError(w, http.StatusUnauthorized, status.Convert(err).Message())
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	}
}

// bearerToken returns the credential from an "Authorization: Bearer <token>"
// header, or "" when the header is absent or uses another scheme.
func bearerToken(r *http.Request) string {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// WithUserID stores a principal the way RequireAuth does.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}
