package domain

import "errors"

var (
	// ErrInvalidUsername is returned when a trimmed username is shorter than two characters.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidCredentials covers both unknown users and password mismatches,
	// so callers cannot probe which usernames exist.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken is returned on signup when the username already exists.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrUserNotFound indicates a lookup for a user that does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrQuizNotFound indicates the quiz name is not in the quiz bank.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrScoreOutOfRange rejects client-submitted scores that are negative
	// or exceed the quiz maximum.
	ErrScoreOutOfRange = errors.New("score out of range")
	// ErrUnauthenticated is returned when no valid session token accompanies a request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the caller's role does not match the required role.
	ErrForbidden = errors.New("insufficient role")
)
