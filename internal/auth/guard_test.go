package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"quiztrack/internal/domain"
)

type fakeUserLookup struct {
	users map[string]domain.User
}

func (f *fakeUserLookup) Get(_ context.Context, username string) (domain.User, error) {
	user, ok := f.users[username]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func newTestGuard(users ...domain.User) (*Guard, *Codec) {
	lookup := &fakeUserLookup{users: make(map[string]domain.User)}
	for _, user := range users {
		lookup.users[user.Username] = user
	}
	codec := NewCodec("guard-test-secret", DefaultTokenTTL)
	return NewGuard(codec, lookup), codec
}

func TestAuthenticateFromCookie(t *testing.T) {
	guard, codec := newTestGuard(domain.User{Username: "alice", Role: domain.RoleStudent})

	token, err := codec.Issue("alice", domain.RoleStudent)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})

	identity, err := guard.Authenticate(r)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if identity.Username != "alice" || identity.Role != domain.RoleStudent {
		t.Fatalf("unexpected identity %+v", identity)
	}
}

func TestAuthenticateFromBearerHeader(t *testing.T) {
	guard, codec := newTestGuard(domain.User{Username: "bu-guru", Role: domain.RoleTeacher})

	token, err := codec.Issue("bu-guru", domain.RoleTeacher)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/students", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	identity, err := guard.Authenticate(r)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if identity.Role != domain.RoleTeacher {
		t.Fatalf("expected teacher role, got %q", identity.Role)
	}
}

func TestAuthenticateMissingToken(t *testing.T) {
	guard, _ := newTestGuard()

	r := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	if _, err := guard.Authenticate(r); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestAuthenticateRejectsDeletedSubject(t *testing.T) {
	// Token is valid but the account no longer exists.
	guard, codec := newTestGuard()

	token, err := codec.Issue("ghost", domain.RoleStudent)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})

	if _, err := guard.Authenticate(r); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated for deleted subject, got %v", err)
	}
}

func TestAuthenticateUsesStoredRole(t *testing.T) {
	// A stale token minted before role escalation still resolves to the
	// store's current role.
	guard, codec := newTestGuard(domain.User{Username: "alice", Role: domain.RoleTeacher})

	token, err := codec.Issue("alice", domain.RoleStudent)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/students", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})

	identity, err := guard.Authenticate(r)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if identity.Role != domain.RoleTeacher {
		t.Fatalf("expected stored role to win, got %q", identity.Role)
	}
}

func TestAuthorizeExactMatchOnly(t *testing.T) {
	guard, _ := newTestGuard()

	student := domain.Identity{Username: "alice", Role: domain.RoleStudent}
	teacher := domain.Identity{Username: "bu-guru", Role: domain.RoleTeacher}

	if err := guard.Authorize(teacher, domain.RoleTeacher); err != nil {
		t.Fatalf("teacher must access teacher endpoints: %v", err)
	}
	if err := guard.Authorize(student, domain.RoleTeacher); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("student must not access teacher endpoints, got %v", err)
	}
	// No hierarchy in either direction.
	if err := guard.Authorize(teacher, domain.RoleStudent); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("teacher must not pass student-only checks, got %v", err)
	}
}
