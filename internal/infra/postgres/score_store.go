package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiztrack/internal/domain"
)

// ScoreStore persists scores in Postgres. The unique index on
// (username, quiz_name) plus ON CONFLICT makes Upsert atomic under
// concurrent submissions.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) Upsert(ctx context.Context, username, quizName string, score int, now time.Time) (domain.Score, error) {
	var recorded domain.Score
	err := s.pool.QueryRow(ctx,
		`INSERT INTO scores (username, quiz_name, score, submitted_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (username, quiz_name)
		 DO UPDATE SET score = EXCLUDED.score, submitted_at = EXCLUDED.submitted_at
		 RETURNING username, quiz_name, score, submitted_at`,
		username, quizName, score, now,
	).Scan(&recorded.Username, &recorded.QuizName, &recorded.Score, &recorded.Timestamp)
	if err != nil {
		return domain.Score{}, fmt.Errorf("upsert score: %w", err)
	}
	return recorded, nil
}

func (s *ScoreStore) ListByUser(ctx context.Context, username string) ([]domain.Score, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT username, quiz_name, score, submitted_at FROM scores
		 WHERE username=$1 ORDER BY submitted_at DESC, quiz_name`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()
	return scanScores(rows)
}

func (s *ScoreStore) ListAll(ctx context.Context) ([]domain.Score, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT username, quiz_name, score, submitted_at FROM scores`)
	if err != nil {
		return nil, fmt.Errorf("list all scores: %w", err)
	}
	defer rows.Close()
	return scanScores(rows)
}

func (s *ScoreStore) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM scores`)
	return err
}

type pgxRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanScores(rows pgxRows) ([]domain.Score, error) {
	scores := make([]domain.Score, 0)
	for rows.Next() {
		var score domain.Score
		if err := rows.Scan(&score.Username, &score.QuizName, &score.Score, &score.Timestamp); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}
