package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"quiztrack/internal/app"
	"quiztrack/internal/auth"
	"quiztrack/internal/domain"
)

// LeaderboardSource is satisfied by app.Leaderboard and by the Redis cache
// wrapped around it.
type LeaderboardSource interface {
	TopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error)
}

// Handler wires the quiz use cases into HTTP endpoints.
type Handler struct {
	accounts  *app.AccountService
	quizzes   *app.QuizService
	board     LeaderboardSource
	guard     *auth.Guard
	cookieTTL time.Duration
}

func NewHandler(accounts *app.AccountService, quizzes *app.QuizService, board LeaderboardSource, guard *auth.Guard, cookieTTL time.Duration) *Handler {
	if cookieTTL <= 0 {
		cookieTTL = auth.DefaultTokenTTL
	}
	return &Handler{
		accounts:  accounts,
		quizzes:   quizzes,
		board:     board,
		guard:     guard,
		cookieTTL: cookieTTL,
	}
}

// Routes registers every endpoint on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", h.handleLogin)
	mux.HandleFunc("POST /api/signup", h.handleSignup)
	mux.HandleFunc("GET /api/logout", h.handleLogout)
	mux.HandleFunc("POST /api/quiz/grade", h.requireAuth(h.handleGrade))
	mux.HandleFunc("POST /api/quiz/submit", h.requireAuth(h.handleSubmit))
	mux.HandleFunc("GET /api/profile", h.requireAuth(h.handleProfile))
	mux.HandleFunc("GET /api/leaderboard", h.handleLeaderboard)
	mux.HandleFunc("GET /api/students", h.requireRole(domain.RoleTeacher, h.handleListStudents))
	mux.HandleFunc("GET /api/students/{username}/scores", h.requireRole(domain.RoleTeacher, h.handleStudentScores))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	return mux
}

type authedHandler func(w http.ResponseWriter, r *http.Request, identity domain.Identity)

// requireAuth resolves the caller's identity or answers 401.
func (h *Handler) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := h.guard.Authenticate(r)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		next(w, r, identity)
	}
}

// requireRole authenticates first, then checks the role, so a missing token
// is always 401 and never 403.
func (h *Handler) requireRole(role domain.Role, next authedHandler) http.HandlerFunc {
	return h.requireAuth(func(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
		if err := h.guard.Authorize(identity, role); err != nil {
			writeServiceError(w, err)
			return
		}
		next(w, r, identity)
	})
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	Token    string      `json:"token"`
}

func decodeCredentials(r *http.Request) (credentialsRequest, error) {
	var req credentialsRequest
	err := decodeBody(r, &req, func(r *http.Request) error {
		req.Username = r.FormValue("username")
		req.Password = r.FormValue("password")
		return nil
	})
	return req, err
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	identity, token, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, sessionResponse{Username: identity.Username, Role: identity.Role, Token: token})
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	identity, token, err := h.accounts.Signup(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, sessionResponse{Username: identity.Username, Role: identity.Role, Token: token})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

type gradeRequest struct {
	QuizName string `json:"quiz_name"`
	Answer   *int   `json:"answer"`
}

type scoreResponse struct {
	QuizName string `json:"quiz_name"`
	Score    int    `json:"score"`
}

func (h *Handler) handleGrade(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	var req gradeRequest
	err := decodeBody(r, &req, func(r *http.Request) error {
		req.QuizName = r.FormValue("quiz_name")
		answer, convErr := strconv.Atoi(r.FormValue("answer"))
		if convErr != nil {
			return convErr
		}
		req.Answer = &answer
		return nil
	})
	if err != nil || req.QuizName == "" || req.Answer == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "quiz_name and answer are required"})
		return
	}

	score, err := h.quizzes.Grade(r.Context(), identity.Username, req.QuizName, *req.Answer)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{QuizName: score.QuizName, Score: score.Score})
}

type submitRequest struct {
	QuizName string `json:"quiz_name"`
	Score    *int   `json:"score"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	var req submitRequest
	err := decodeBody(r, &req, func(r *http.Request) error {
		req.QuizName = r.FormValue("quiz_name")
		score, convErr := strconv.Atoi(r.FormValue("score"))
		if convErr != nil {
			return convErr
		}
		req.Score = &score
		return nil
	})
	if err != nil || req.QuizName == "" || req.Score == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "quiz_name and score are required"})
		return
	}

	score, err := h.quizzes.Submit(r.Context(), identity.Username, req.QuizName, *req.Score)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{QuizName: score.QuizName, Score: score.Score})
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	profile, err := h.quizzes.Profile(r.Context(), identity.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type leaderboardResponse struct {
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.board.TopN(r.Context(), app.DefaultLeaderboardSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Leaderboard: entries})
}

type studentResponse struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) handleListStudents(w http.ResponseWriter, r *http.Request, _ domain.Identity) {
	students, err := h.quizzes.ListStudents(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]studentResponse, 0, len(students))
	for _, student := range students {
		out = append(out, studentResponse{Username: student.Username, CreatedAt: student.CreatedAt})
	}
	writeJSON(w, http.StatusOK, map[string][]studentResponse{"students": out})
}

func (h *Handler) handleStudentScores(w http.ResponseWriter, r *http.Request, _ domain.Identity) {
	username := r.PathValue("username")
	scores, err := h.quizzes.StudentScores(r.Context(), username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username": username,
		"scores":   scores,
	})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
