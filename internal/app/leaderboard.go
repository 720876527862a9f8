package app

import (
	"context"
	"sort"

	"quiztrack/internal/domain"
)

// DefaultLeaderboardSize is the public top-N window.
const DefaultLeaderboardSize = 10

// Leaderboard recomputes the ranked aggregate view over all scores on every
// call. Users without scores never appear.
type Leaderboard struct {
	scores ScoreStore
}

func NewLeaderboard(scores ScoreStore) *Leaderboard {
	return &Leaderboard{scores: scores}
}

// TopN groups all scores by user, sums and averages them, and returns the
// top n entries ordered by total score descending. Ties break by username
// ascending so the ordering is deterministic. Ranks are assigned after
// truncation, 1-based.
func (l *Leaderboard) TopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if n <= 0 {
		n = DefaultLeaderboardSize
	}

	rows, err := l.scores.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]*domain.LeaderboardEntry)
	for _, row := range rows {
		entry, ok := totals[row.Username]
		if !ok {
			entry = &domain.LeaderboardEntry{Username: row.Username}
			totals[row.Username] = entry
		}
		entry.TotalScore += row.Score
		entry.QuizCount++
	}

	entries := make([]domain.LeaderboardEntry, 0, len(totals))
	for _, entry := range totals {
		entry.AverageScore = roundTwo(float64(entry.TotalScore) / float64(entry.QuizCount))
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].Username < entries[j].Username
	})

	if len(entries) > n {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
