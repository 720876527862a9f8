package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"quiztrack/internal/auth"
	"quiztrack/internal/domain"
)

// AccountService owns signup and login. Usernames are normalized to trimmed
// lowercase and double as the stable user ID.
type AccountService struct {
	users UserStore
	codec *auth.Codec
	now   func() time.Time
}

func NewAccountService(users UserStore, codec *auth.Codec) *AccountService {
	return &AccountService{users: users, codec: codec, now: time.Now}
}

// NormalizeUsername lowercases and trims the raw username and rejects
// anything shorter than two characters.
func NormalizeUsername(raw string) (string, error) {
	username := strings.ToLower(strings.TrimSpace(raw))
	if len(username) < 2 {
		return "", domain.ErrInvalidUsername
	}
	return username, nil
}

// Signup creates a student account and returns its identity with a fresh
// session token.
func (s *AccountService) Signup(ctx context.Context, rawUsername, password string) (domain.Identity, string, error) {
	username, err := NormalizeUsername(rawUsername)
	if err != nil {
		return domain.Identity{}, "", err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.Identity{}, "", err
	}

	user := domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleStudent,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.Identity{}, "", err
	}

	token, err := s.codec.Issue(username, user.Role)
	if err != nil {
		return domain.Identity{}, "", err
	}
	return domain.Identity{Username: username, Role: user.Role}, token, nil
}

// Login checks credentials and returns the identity with a fresh session
// token. Unknown users and wrong passwords fail identically: both paths run
// a bcrypt comparison and both return ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, rawUsername, password string) (domain.Identity, string, error) {
	username, err := NormalizeUsername(rawUsername)
	if err != nil {
		return domain.Identity{}, "", err
	}

	user, err := s.users.Get(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			auth.CheckDummy(password)
			return domain.Identity{}, "", domain.ErrInvalidCredentials
		}
		return domain.Identity{}, "", err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return domain.Identity{}, "", domain.ErrInvalidCredentials
	}

	token, err := s.codec.Issue(user.Username, user.Role)
	if err != nil {
		return domain.Identity{}, "", err
	}
	return domain.Identity{Username: user.Username, Role: user.Role}, token, nil
}
