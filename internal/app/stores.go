package app

import (
	"context"
	"time"

	"quiztrack/internal/domain"
)

// UserStore abstracts how user accounts are persisted (in-memory, Postgres).
type UserStore interface {
	Get(ctx context.Context, username string) (domain.User, error)
	Create(ctx context.Context, user domain.User) error
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	Reset(ctx context.Context) error
}

// ScoreStore persists quiz scores. Upsert must be atomic per
// (username, quiz name): concurrent submissions of the same quiz by the same
// user never yield two rows.
type ScoreStore interface {
	Upsert(ctx context.Context, username, quizName string, score int, now time.Time) (domain.Score, error)
	ListByUser(ctx context.Context, username string) ([]domain.Score, error)
	ListAll(ctx context.Context) ([]domain.Score, error)
	Reset(ctx context.Context) error
}

// QuizBank loads quiz content by name.
type QuizBank interface {
	GetQuiz(ctx context.Context, name string) (domain.Quiz, error)
}
