package domain

import "time"

// Role is the access level attached to a user. There is no hierarchy:
// a teacher does not implicitly hold student permissions or vice versa.
type Role string

const (
	// RoleStudent ("murid") is assigned to every signup.
	RoleStudent Role = "murid"
	// RoleTeacher ("guru") unlocks the student listing endpoints.
	RoleTeacher Role = "guru"
)

// User is an account record. The normalized username doubles as the
// stable user ID, matching the storage schema.
type User struct {
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Identity is the authenticated subject resolved from a session token.
type Identity struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Score is one graded quiz fact. At most one row exists per
// (username, quiz name) pair; resubmission replaces score and timestamp.
type Score struct {
	Username  string    `json:"-"`
	QuizName  string    `json:"quiz_name"`
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// Quiz is an entry in the quiz bank: a single question with one
// canonical integer answer.
type Quiz struct {
	Name     string `json:"name"`
	Question string `json:"question"`
	Answer   int    `json:"answer"`
	// MaxScore bounds client-submitted raw scores; defaults to 100 if zero.
	MaxScore int `json:"max_score"`
}

// Profile aggregates one user's scores for the profile endpoint.
type Profile struct {
	Username     string  `json:"username"`
	TotalQuizzes int     `json:"total_quizzes"`
	TotalScore   int     `json:"total_score"`
	AverageScore float64 `json:"average_score"`
	Scores       []Score `json:"scores"`
}

// LeaderboardEntry is a derived ranking row, recomputed from scores on
// demand and never stored.
type LeaderboardEntry struct {
	Rank         int     `json:"rank"`
	Username     string  `json:"username"`
	TotalScore   int     `json:"total_score"`
	AverageScore float64 `json:"average_score"`
	QuizCount    int     `json:"quiz_count"`
}
