package app

import (
	"context"
	"math"
	"time"

	"quiztrack/internal/domain"
)

// Invalidator is notified after every score write so derived views (the
// Redis leaderboard cache) can drop stale data.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// QuizService contains the grading and scoring use cases.
type QuizService struct {
	bank   QuizBank
	scores ScoreStore
	users  UserStore
	cache  Invalidator // optional
	now    func() time.Time
}

func NewQuizService(bank QuizBank, scores ScoreStore, users UserStore) *QuizService {
	return &QuizService{bank: bank, scores: scores, users: users, now: time.Now}
}

// WithCache attaches a leaderboard cache to invalidate on writes.
func (s *QuizService) WithCache(cache Invalidator) *QuizService {
	s.cache = cache
	return s
}

// WithClock is test-only for deterministic timestamps.
func (s *QuizService) WithClock(now func() time.Time) *QuizService {
	s.now = now
	return s
}

// Grade evaluates a submitted answer against the quiz bank. Scoring is
// binary: an exact match earns the quiz maximum, anything else earns zero.
// The result is upserted so resubmission replaces the previous score.
func (s *QuizService) Grade(ctx context.Context, username, quizName string, answer int) (domain.Score, error) {
	quiz, err := s.bank.GetQuiz(ctx, quizName)
	if err != nil {
		return domain.Score{}, err
	}

	score := 0
	if answer == quiz.Answer {
		score = quizMax(quiz)
	}
	return s.record(ctx, username, quizName, score)
}

// Submit records a client-supplied raw score. The client is untrusted: the
// quiz must exist and the score must sit inside [0, max].
func (s *QuizService) Submit(ctx context.Context, username, quizName string, score int) (domain.Score, error) {
	quiz, err := s.bank.GetQuiz(ctx, quizName)
	if err != nil {
		return domain.Score{}, err
	}
	if score < 0 || score > quizMax(quiz) {
		return domain.Score{}, domain.ErrScoreOutOfRange
	}
	return s.record(ctx, username, quizName, score)
}

func (s *QuizService) record(ctx context.Context, username, quizName string, score int) (domain.Score, error) {
	recorded, err := s.scores.Upsert(ctx, username, quizName, score, s.now())
	if err != nil {
		return domain.Score{}, err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			// A stale cached leaderboard is acceptable; the write stands.
			return recorded, nil
		}
	}
	return recorded, nil
}

// Profile returns the caller's score history, newest first, with totals.
func (s *QuizService) Profile(ctx context.Context, username string) (domain.Profile, error) {
	scores, err := s.scores.ListByUser(ctx, username)
	if err != nil {
		return domain.Profile{}, err
	}

	total := 0
	for _, score := range scores {
		total += score.Score
	}
	average := 0.0
	if len(scores) > 0 {
		average = roundTwo(float64(total) / float64(len(scores)))
	}

	return domain.Profile{
		Username:     username,
		TotalQuizzes: len(scores),
		TotalScore:   total,
		AverageScore: average,
		Scores:       scores,
	}, nil
}

// ListStudents returns every student account, for teachers.
func (s *QuizService) ListStudents(ctx context.Context) ([]domain.User, error) {
	return s.users.ListByRole(ctx, domain.RoleStudent)
}

// StudentScores returns one student's history, for teachers.
func (s *QuizService) StudentScores(ctx context.Context, rawUsername string) ([]domain.Score, error) {
	username, err := NormalizeUsername(rawUsername)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.Get(ctx, username); err != nil {
		return nil, err
	}
	return s.scores.ListByUser(ctx, username)
}

// Reset wipes both stores. Exposed only through the explicit maintenance
// paths (CLI subcommand or the opt-in interval job).
func (s *QuizService) Reset(ctx context.Context) error {
	if err := s.scores.Reset(ctx); err != nil {
		return err
	}
	if err := s.users.Reset(ctx); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx)
	}
	return nil
}

func quizMax(quiz domain.Quiz) int {
	if quiz.MaxScore > 0 {
		return quiz.MaxScore
	}
	return 100
}

func roundTwo(v float64) float64 {
	return math.Round(v*100) / 100
}
