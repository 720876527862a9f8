// Package quizbank supplies quiz content: a single question with one
// canonical answer per quiz name. Content is loaded through a Loader and
// cached with a TTL so the grading path never hammers the backing store.
package quizbank

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiztrack/internal/domain"
)

// Loader fetches quiz content from a backing store (static map, Postgres).
type Loader interface {
	LoadQuiz(ctx context.Context, name string) (domain.Quiz, error)
}

// Repository caches quizzes with TTL to avoid repeated store hits.
type Repository struct {
	loader Loader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewRepository(loader Loader, ttl time.Duration) *Repository {
	return &Repository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (r *Repository) GetQuiz(ctx context.Context, name string) (domain.Quiz, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[name]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.quiz, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(name, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[name]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.quiz, nil
		}
		r.mu.RUnlock()

		quiz, err := r.loader.LoadQuiz(ctx, name)
		if err != nil {
			return domain.Quiz{}, err
		}

		r.mu.Lock()
		r.cache[name] = cachedQuiz{
			quiz:      quiz,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *Repository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticLoader is a loader backed by an in-memory map.
type StaticLoader struct {
	quizzes map[string]domain.Quiz
}

func NewStaticLoader(quizzes map[string]domain.Quiz) *StaticLoader {
	return &StaticLoader{quizzes: quizzes}
}

func (l *StaticLoader) LoadQuiz(_ context.Context, name string) (domain.Quiz, error) {
	if quiz, ok := l.quizzes[name]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

// DefaultQuizzes is the built-in bank used when no Postgres content store is
// configured.
func DefaultQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"Matematika Dasar": {
			Name:     "Matematika Dasar",
			Question: "Berapakah hasil dari 15 + 20?",
			Answer:   35,
			MaxScore: 100,
		},
	}
}
