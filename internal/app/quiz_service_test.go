package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiztrack/internal/app"
	"quiztrack/internal/domain"
	"quiztrack/internal/infra/memory"
	"quiztrack/internal/quizbank"
)

func newQuizService() (*app.QuizService, *memory.ScoreStore, *memory.UserStore) {
	users := memory.NewUserStore()
	scores := memory.NewScoreStore()
	bank := quizbank.NewRepository(quizbank.NewStaticLoader(quizbank.DefaultQuizzes()), time.Minute)
	return app.NewQuizService(bank, scores, users), scores, users
}

func TestGradeBinaryScoring(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newQuizService()

	score, err := service.Grade(ctx, "alice", "Matematika Dasar", 35)
	if err != nil {
		t.Fatalf("grade correct answer: %v", err)
	}
	if score.Score != 100 {
		t.Fatalf("correct answer must earn 100, got %d", score.Score)
	}

	score, err = service.Grade(ctx, "alice", "Matematika Dasar", 36)
	if err != nil {
		t.Fatalf("grade wrong answer: %v", err)
	}
	if score.Score != 0 {
		t.Fatalf("wrong answer must earn 0, got %d", score.Score)
	}
}

func TestGradeUnknownQuiz(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newQuizService()

	if _, err := service.Grade(ctx, "alice", "Unknown Quiz", 1); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

func TestResubmissionLeavesOneRow(t *testing.T) {
	ctx := context.Background()
	service, scores, _ := newQuizService()

	if _, err := service.Grade(ctx, "alice", "Matematika Dasar", 35); err != nil {
		t.Fatalf("first grade: %v", err)
	}
	if _, err := service.Grade(ctx, "alice", "Matematika Dasar", 36); err != nil {
		t.Fatalf("second grade: %v", err)
	}

	rows, err := scores.ListByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly one score row, got %d", len(rows))
	}
	if rows[0].Score != 0 {
		t.Fatalf("latest submission must win, got %d", rows[0].Score)
	}
}

func TestSubmitBoundsValidation(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newQuizService()

	if _, err := service.Submit(ctx, "alice", "Matematika Dasar", -1); !errors.Is(err, domain.ErrScoreOutOfRange) {
		t.Fatalf("negative score: expected out of range, got %v", err)
	}
	if _, err := service.Submit(ctx, "alice", "Matematika Dasar", 101); !errors.Is(err, domain.ErrScoreOutOfRange) {
		t.Fatalf("score above max: expected out of range, got %v", err)
	}
	if _, err := service.Submit(ctx, "alice", "Unknown Quiz", 50); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("unknown quiz: expected quiz not found, got %v", err)
	}

	score, err := service.Submit(ctx, "alice", "Matematika Dasar", 75)
	if err != nil {
		t.Fatalf("valid submit: %v", err)
	}
	if score.Score != 75 {
		t.Fatalf("expected recorded score 75, got %d", score.Score)
	}
}

func TestProfileAggregates(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserStore()
	scores := memory.NewScoreStore()
	bank := quizbank.NewRepository(quizbank.NewStaticLoader(map[string]domain.Quiz{
		"Kuis A": {Name: "Kuis A", Answer: 1, MaxScore: 100},
		"Kuis B": {Name: "Kuis B", Answer: 1, MaxScore: 100},
		"Kuis C": {Name: "Kuis C", Answer: 1, MaxScore: 100},
	}), time.Minute)

	clock := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	service := app.NewQuizService(bank, scores, users).WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})

	for quiz, value := range map[string]int{"Kuis A": 100, "Kuis B": 0, "Kuis C": 50} {
		if _, err := service.Submit(ctx, "alice", quiz, value); err != nil {
			t.Fatalf("submit %s: %v", quiz, err)
		}
	}

	profile, err := service.Profile(ctx, "alice")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.TotalQuizzes != 3 || profile.TotalScore != 150 {
		t.Fatalf("expected 3 quizzes totaling 150, got %d/%d", profile.TotalQuizzes, profile.TotalScore)
	}
	if profile.AverageScore != 50.0 {
		t.Fatalf("expected average 50.0, got %v", profile.AverageScore)
	}
	for i := 1; i < len(profile.Scores); i++ {
		if profile.Scores[i].Timestamp.After(profile.Scores[i-1].Timestamp) {
			t.Fatalf("scores must be newest first: %+v", profile.Scores)
		}
	}
}

func TestProfileEmpty(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newQuizService()

	profile, err := service.Profile(ctx, "alice")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.TotalQuizzes != 0 || profile.TotalScore != 0 || profile.AverageScore != 0 {
		t.Fatalf("empty profile must be all zeroes, got %+v", profile)
	}
}

func TestStudentScoresUnknownUser(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newQuizService()

	if _, err := service.StudentScores(ctx, "nobody"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestListStudentsFiltersTeachers(t *testing.T) {
	ctx := context.Background()
	service, _, users := newQuizService()

	seed := []domain.User{
		{Username: "alice", Role: domain.RoleStudent},
		{Username: "budi", Role: domain.RoleStudent},
		{Username: "bu-guru", Role: domain.RoleTeacher},
	}
	for _, user := range seed {
		if err := users.Create(ctx, user); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	students, err := service.ListStudents(ctx)
	if err != nil {
		t.Fatalf("list students: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("expected 2 students, got %d", len(students))
	}
	for _, student := range students {
		if student.Role != domain.RoleStudent {
			t.Fatalf("teacher leaked into student listing: %+v", student)
		}
	}
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return nil
}

func TestWritesInvalidateCache(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserStore()
	scores := memory.NewScoreStore()
	bank := quizbank.NewRepository(quizbank.NewStaticLoader(quizbank.DefaultQuizzes()), time.Minute)
	cache := &countingInvalidator{}
	service := app.NewQuizService(bank, scores, users).WithCache(cache)

	if _, err := service.Grade(ctx, "alice", "Matematika Dasar", 35); err != nil {
		t.Fatalf("grade: %v", err)
	}
	if _, err := service.Submit(ctx, "alice", "Matematika Dasar", 80); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if cache.calls != 2 {
		t.Fatalf("expected one invalidation per write, got %d", cache.calls)
	}
}

func TestResetWipesEverything(t *testing.T) {
	ctx := context.Background()
	service, scores, users := newQuizService()

	if err := users.Create(ctx, domain.User{Username: "alice", Role: domain.RoleStudent}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := service.Grade(ctx, "alice", "Matematika Dasar", 35); err != nil {
		t.Fatalf("grade: %v", err)
	}

	if err := service.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	rows, err := scores.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no scores after reset, got %d", len(rows))
	}
	if _, err := users.Get(ctx, "alice"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected users wiped, got %v", err)
	}
}
