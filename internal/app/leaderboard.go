package app

import (
	"sort"
	"sync"
	"time"

	"classroom-live-service/internal/domain"
	"classroom-live-service/internal/realtime"
)

// LeaderboardAggregator owns rank computation for live tests. Every
// score-affecting mutation recomputes the full ordering for that test and
// emits it through the publisher; nothing is incremental.
type LeaderboardAggregator struct {
	pub *realtime.Publisher
	now func() time.Time

	mu     sync.Mutex
	boards map[string]*scoreboard
}

// scoreboard keeps entries in their last ranked order. A stable sort over
// that order gives the tie-break: whoever reached a score first keeps the
// better rank, and equal scores still get distinct ranks.
type scoreboard struct {
	entries []*domain.Participant
}

func NewLeaderboardAggregator(pub *realtime.Publisher) *LeaderboardAggregator {
	return newLeaderboardAggregatorWithClock(pub, time.Now)
}

// newLeaderboardAggregatorWithClock allows deterministic timestamps in tests.
func newLeaderboardAggregatorWithClock(pub *realtime.Publisher, now func() time.Time) *LeaderboardAggregator {
	return &LeaderboardAggregator{
		pub:    pub,
		now:    now,
		boards: make(map[string]*scoreboard),
	}
}

// NewLeaderboardAggregatorWithClock is test-only for deterministic timestamps.
func NewLeaderboardAggregatorWithClock(pub *realtime.Publisher, now func() time.Time) *LeaderboardAggregator {
	return newLeaderboardAggregatorWithClock(pub, now)
}

// Join inserts a participant with score zero (or refreshes the display name)
// and republishes the standings.
func (a *LeaderboardAggregator) Join(testID, userID, displayName string) domain.Leaderboard {
	a.mu.Lock()
	defer a.mu.Unlock()

	board := a.boardLocked(testID)
	if p := board.find(userID); p != nil {
		p.DisplayName = displayName
		p.LastUpdated = a.now()
	} else {
		board.entries = append(board.entries, &domain.Participant{
			UserID:      userID,
			DisplayName: displayName,
			LastUpdated: a.now(),
		})
	}
	return a.recomputeLocked(testID, board)
}

// AddPoints applies a score delta and republishes the standings. An unknown
// participant is inserted first, so joining mid-session needs no special
// path.
func (a *LeaderboardAggregator) AddPoints(testID, userID, displayName string, delta int) domain.Leaderboard {
	a.mu.Lock()
	defer a.mu.Unlock()

	board := a.boardLocked(testID)
	p := board.find(userID)
	if p == nil {
		p = &domain.Participant{UserID: userID, DisplayName: displayName}
		board.entries = append(board.entries, p)
	}
	p.Score += delta
	if displayName != "" {
		p.DisplayName = displayName
	}
	p.LastUpdated = a.now()
	return a.recomputeLocked(testID, board)
}

// Score returns the participant's current total, zero if unknown.
func (a *LeaderboardAggregator) Score(testID, userID string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if board, ok := a.boards[testID]; ok {
		if p := board.find(userID); p != nil {
			return p.Score
		}
	}
	return 0
}

// Snapshot returns the current standings without publishing.
func (a *LeaderboardAggregator) Snapshot(testID string) domain.Leaderboard {
	a.mu.Lock()
	defer a.mu.Unlock()
	board, ok := a.boards[testID]
	if !ok {
		return domain.Leaderboard{TestID: testID, Entries: []domain.LeaderboardEntry{}, UpdatedAt: a.now()}
	}
	return a.snapshotLocked(testID, board)
}

// Drop discards a test's scoreboard, typically when the test ends.
func (a *LeaderboardAggregator) Drop(testID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.boards, testID)
}

func (a *LeaderboardAggregator) boardLocked(testID string) *scoreboard {
	board, ok := a.boards[testID]
	if !ok {
		board = &scoreboard{}
		a.boards[testID] = board
	}
	return board
}

func (a *LeaderboardAggregator) recomputeLocked(testID string, board *scoreboard) domain.Leaderboard {
	// Stable sort over the previous ranked order: ties keep their prior
	// relative position.
	sort.SliceStable(board.entries, func(i, j int) bool {
		return board.entries[i].Score > board.entries[j].Score
	})
	lb := a.snapshotLocked(testID, board)
	a.pub.LeaderboardUpdated(testID, lb)
	return lb
}

func (a *LeaderboardAggregator) snapshotLocked(testID string, board *scoreboard) domain.Leaderboard {
	entries := make([]domain.LeaderboardEntry, len(board.entries))
	for i, p := range board.entries {
		entries[i] = domain.LeaderboardEntry{
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Score:       p.Score,
			Rank:        i + 1,
		}
	}
	return domain.Leaderboard{TestID: testID, Entries: entries, UpdatedAt: a.now()}
}

func (b *scoreboard) find(userID string) *domain.Participant {
	for _, p := range b.entries {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}
