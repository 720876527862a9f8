package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quiztrack/internal/domain"
)

type scoreKey struct {
	username string
	quizName string
}

// ScoreStore is an in-memory implementation of app.ScoreStore. The composite
// map key under a single mutex makes Upsert atomic: two concurrent
// submissions of the same quiz can never both insert.
type ScoreStore struct {
	mu     sync.RWMutex
	scores map[scoreKey]domain.Score
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{scores: make(map[scoreKey]domain.Score)}
}

func (s *ScoreStore) Upsert(_ context.Context, username, quizName string, score int, now time.Time) (domain.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recorded := domain.Score{
		Username:  username,
		QuizName:  quizName,
		Score:     score,
		Timestamp: now,
	}
	s.scores[scoreKey{username: username, quizName: quizName}] = recorded
	return recorded, nil
}

func (s *ScoreStore) ListByUser(_ context.Context, username string) ([]domain.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scores := make([]domain.Score, 0)
	for key, score := range s.scores {
		if key.username == username {
			scores = append(scores, score)
		}
	}
	sort.Slice(scores, func(i, j int) bool {
		if !scores[i].Timestamp.Equal(scores[j].Timestamp) {
			return scores[i].Timestamp.After(scores[j].Timestamp)
		}
		return scores[i].QuizName < scores[j].QuizName
	})
	return scores, nil
}

func (s *ScoreStore) ListAll(_ context.Context) ([]domain.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scores := make([]domain.Score, 0, len(s.scores))
	for _, score := range s.scores {
		scores = append(scores, score)
	}
	return scores, nil
}

func (s *ScoreStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores = make(map[scoreKey]domain.Score)
	return nil
}
