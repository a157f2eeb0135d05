// Package achievements evaluates declarative unlock conditions over session
// statistics that are rebuilt incrementally from game events. Unlocks are
// one-way and persist independently of game progress.
package achievements

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/questlabs/roomquest/internal/catalog"
	"github.com/questlabs/roomquest/internal/event"
	"github.com/questlabs/roomquest/internal/kvstore"
	"github.com/questlabs/roomquest/internal/quest"
)

const (
	quickThreshold = 5 * time.Second
	recentOutcomes = 10
)

// record is the persisted shape under the achievements key.
type record struct {
	Unlocked    []string             `json:"unlocked"`
	UnlockedAt  map[string]time.Time `json:"unlockedAt"`
	Progress    map[string]int       `json:"progress"`
	TotalPoints int                  `json:"totalPoints"`
}

// Status is one achievement definition with its unlock state, for display.
type Status struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Points      int        `json:"points"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
	Progress    int        `json:"progress"`
	MaxProgress int        `json:"maxProgress"`
}

// stats are the session statistics the conditions read. They are exact
// event-sourced counters, never derived from score.
type stats struct {
	totalAnswered    int
	correct          int
	streak           int
	maxStreak        int
	wrongStreak      int
	quick            int
	visited          map[string]struct{}
	recent           []bool
	completed        bool
	completedElapsed time.Duration
}

// Evaluator watches the session bus. Its watcher runs synchronously inside
// the publishing operation, so unlock events fire before the triggering
// operation returns.
type Evaluator struct {
	defs       []quest.Achievement
	totalRooms int
	bus        *event.Bus
	store      *kvstore.Store
	logger     *slog.Logger
	now        func() time.Time

	mu       sync.Mutex
	unlocked map[string]time.Time
	progress map[string]int
	total    int
	stats    stats

	cancel func()
}

type Option func(*Evaluator)

// WithClock replaces the unlock timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(ev *Evaluator) { ev.now = now }
}

// New builds the evaluator and attaches it to the bus. Call PrimeVisited
// with the tracker's visited rooms right after, and Close when the session
// ends.
func New(cat *catalog.Catalog, bus *event.Bus, store *kvstore.Store, logger *slog.Logger, opts ...Option) *Evaluator {
	ev := &Evaluator{
		defs:       cat.Achievements(),
		totalRooms: cat.RoomCount(),
		bus:        bus,
		store:      store,
		logger:     logger,
		now:        time.Now,
		unlocked:   make(map[string]time.Time),
		progress:   make(map[string]int),
	}
	ev.stats.visited = make(map[string]struct{})
	for _, opt := range opts {
		opt(ev)
	}
	ev.cancel = bus.Watch(ev.handle)
	return ev
}

func (ev *Evaluator) Close() {
	ev.cancel()
}

// PrimeVisited seeds the visited-room statistic from the tracker snapshot,
// so rooms visited before wiring (or restored by a load) still count.
func (ev *Evaluator) PrimeVisited(roomIDs []string) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	for _, id := range roomIDs {
		ev.stats.visited[id] = struct{}{}
	}
	ev.evaluateLocked()
}

func (ev *Evaluator) handle(e event.Event) {
	switch p := e.Payload.(type) {
	case event.QuestionAnswered:
		ev.onAnswered(p)
	case event.RoomChanged:
		ev.onRoomVisited(p.To)
	case event.GameCompleted:
		ev.onCompleted(p)
	}
}

func (ev *Evaluator) onAnswered(p event.QuestionAnswered) {
	ev.mu.Lock()
	defer ev.mu.Unlock()

	s := &ev.stats
	s.totalAnswered++
	if p.Correct {
		s.correct++
		s.streak++
		if s.streak > s.maxStreak {
			s.maxStreak = s.streak
		}
		s.wrongStreak = 0
	} else {
		s.streak = 0
		s.wrongStreak++
	}
	if time.Duration(p.ElapsedMS)*time.Millisecond < quickThreshold {
		s.quick++
	}
	s.recent = append(s.recent, p.Correct)
	if len(s.recent) > recentOutcomes {
		s.recent = s.recent[1:]
	}

	ev.evaluateLocked()
}

func (ev *Evaluator) onRoomVisited(roomID string) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.stats.visited[roomID] = struct{}{}
	ev.evaluateLocked()
}

func (ev *Evaluator) onCompleted(p event.GameCompleted) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.stats.completed = true
	ev.stats.completedElapsed = time.Duration(p.Stats.ElapsedMS) * time.Millisecond
	ev.evaluateLocked()
}

// evaluateLocked re-checks every locked achievement, refreshes its display
// progress, and latches the satisfied ones. Each unlock publishes its event;
// any change persists the record, fire-and-forget.
func (ev *Evaluator) evaluateLocked() {
	changed := false
	for _, def := range ev.defs {
		if _, done := ev.unlocked[def.ID]; done {
			continue
		}

		satisfied, prog := check(def.Condition, &ev.stats, ev.totalRooms)
		if max := maxProgress(def.Condition, ev.totalRooms); prog > max {
			prog = max
		}
		if ev.progress[def.ID] != prog {
			ev.progress[def.ID] = prog
			changed = true
		}
		if !satisfied {
			continue
		}

		ev.unlocked[def.ID] = ev.now()
		ev.total += def.Points
		changed = true
		ev.bus.Publish(event.AchievementUnlocked{
			AchievementID: def.ID,
			Name:          def.Name,
			Points:        def.Points,
			TotalPoints:   ev.total,
			UnlockedCount: len(ev.unlocked),
		})
	}

	if changed {
		ev.persistLocked()
	}
}

func (ev *Evaluator) persistLocked() {
	rec := record{
		Unlocked:    make([]string, 0, len(ev.unlocked)),
		UnlockedAt:  make(map[string]time.Time, len(ev.unlocked)),
		Progress:    make(map[string]int, len(ev.progress)),
		TotalPoints: ev.total,
	}
	for id, at := range ev.unlocked {
		rec.Unlocked = append(rec.Unlocked, id)
		rec.UnlockedAt[id] = at
	}
	sort.Strings(rec.Unlocked)
	for id, prog := range ev.progress {
		rec.Progress[id] = prog
	}

	if err := ev.store.Put(context.Background(), kvstore.KeyAchievements, rec); err != nil {
		ev.logger.Warn("persisting achievements failed", "error", err)
	}
}

// Restore reloads unlock state from the store at startup. Session statistics
// always start fresh; only the persisted unlock state and display progress
// are recoverable.
func (ev *Evaluator) Restore(ctx context.Context) bool {
	var rec record
	if err := ev.store.Get(ctx, kvstore.KeyAchievements, &rec); err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			ev.logger.Warn("loading achievements failed", "error", err)
		}
		return false
	}

	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.unlocked = make(map[string]time.Time, len(rec.Unlocked))
	for _, id := range rec.Unlocked {
		at, ok := rec.UnlockedAt[id]
		if !ok {
			at = ev.now()
		}
		ev.unlocked[id] = at
	}
	ev.progress = make(map[string]int, len(rec.Progress))
	for id, prog := range rec.Progress {
		ev.progress[id] = prog
	}
	ev.total = rec.TotalPoints
	return true
}

// ResetSession zeroes the session statistics and re-seeds the visited rooms,
// keeping every unlock. Used by game reset.
func (ev *Evaluator) ResetSession(visited []string) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.stats = stats{visited: make(map[string]struct{}, len(visited))}
	for _, id := range visited {
		ev.stats.visited[id] = struct{}{}
	}
	ev.evaluateLocked()
}

// ResetAll clears unlock state, display progress, the running total, the
// session statistics, and the persisted record.
func (ev *Evaluator) ResetAll(ctx context.Context) {
	ev.mu.Lock()
	ev.unlocked = make(map[string]time.Time)
	ev.progress = make(map[string]int)
	ev.total = 0
	ev.stats = stats{visited: make(map[string]struct{})}
	ev.mu.Unlock()

	if err := ev.store.Delete(ctx, kvstore.KeyAchievements); err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		ev.logger.Warn("clearing achievements failed", "error", err)
	}
}

// Statuses lists every achievement with its unlock state, in definition
// order.
func (ev *Evaluator) Statuses() []Status {
	ev.mu.Lock()
	defer ev.mu.Unlock()

	out := make([]Status, 0, len(ev.defs))
	for _, def := range ev.defs {
		st := Status{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			Points:      def.Points,
			Progress:    ev.progress[def.ID],
			MaxProgress: maxProgress(def.Condition, ev.totalRooms),
		}
		if at, ok := ev.unlocked[def.ID]; ok {
			st.Unlocked = true
			unlockedAt := at
			st.UnlockedAt = &unlockedAt
			st.Progress = st.MaxProgress
		}
		out = append(out, st)
	}
	return out
}

// TotalPoints is the running sum of unlocked achievement points.
func (ev *Evaluator) TotalPoints() int {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return ev.total
}

// UnlockedCount reports how many achievements are unlocked.
func (ev *Evaluator) UnlockedCount() int {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return len(ev.unlocked)
}
