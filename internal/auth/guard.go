package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"quiztrack/internal/domain"
)

// SessionCookieName is the cookie carrier for the session token. Bearer
// headers are accepted as an alternative for non-browser clients.
const SessionCookieName = "quiz_session"

// UserLookup is the slice of the user store the guard needs to confirm a
// token subject still exists.
type UserLookup interface {
	Get(ctx context.Context, username string) (domain.User, error)
}

// Guard resolves and authorizes the caller's identity on each request.
type Guard struct {
	codec *Codec
	users UserLookup
}

func NewGuard(codec *Codec, users UserLookup) *Guard {
	return &Guard{codec: codec, users: users}
}

// TokenFromRequest extracts the session token from the cookie or the
// Authorization header. The cookie wins when both are present.
func TokenFromRequest(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return "", false
	}
	return token, true
}

// Authenticate verifies the request's token and re-checks that the subject
// still exists, so tokens do not outlive their account. The stored role is
// authoritative over the one baked into the token.
func (g *Guard) Authenticate(r *http.Request) (domain.Identity, error) {
	token, ok := TokenFromRequest(r)
	if !ok {
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	claims, err := g.codec.Verify(token)
	if err != nil {
		// Expired and tampered tokens produce the same outcome for clients.
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	user, err := g.users.Get(r.Context(), claims.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Identity{}, domain.ErrUnauthenticated
		}
		return domain.Identity{}, err
	}

	return domain.Identity{Username: user.Username, Role: user.Role}, nil
}

// Authorize requires an exact role match.
func (g *Guard) Authorize(identity domain.Identity, required domain.Role) error {
	if identity.Role != required {
		return domain.ErrForbidden
	}
	return nil
}
