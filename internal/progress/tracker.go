// Package progress owns the mutable game state: current room, score, the
// visited/unlocked/answered sets, and the completion latch. Every score
// mutation in the game flows through the Tracker.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/questlabs/roomquest/internal/catalog"
	"github.com/questlabs/roomquest/internal/event"
	"github.com/questlabs/roomquest/internal/kvstore"
	"github.com/questlabs/roomquest/internal/quest"
)

const (
	timeBonusMax    = 50
	timeBonusWindow = 10 * time.Second

	completionBonus    = 200
	explorationPerRoom = 10
	perfectBonus       = 500
	speedRunBonus      = 300
	speedRunLimit      = 10 * time.Minute

	visitedThreshold  = 0.8
	answeredThreshold = 0.7
	accuracyThreshold = 0.7
)

// Snapshot is the serializable view of the game state. Sets are sorted
// arrays so saved records and API responses are deterministic.
type Snapshot struct {
	SessionID         string     `json:"sessionId"`
	CurrentRoomID     string     `json:"currentRoomId"`
	Score             int        `json:"score"`
	CorrectCount      int        `json:"correctCount"`
	VisitedRooms      []string   `json:"visitedRooms"`
	UnlockedRooms     []string   `json:"unlockedRooms"`
	AnsweredQuestions []string   `json:"answeredQuestions"`
	GameCompleted     bool       `json:"gameCompleted"`
	FinalScore        int        `json:"finalScore,omitempty"`
	StartedAt         time.Time  `json:"startedAt"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	SavedAt           *time.Time `json:"savedAt,omitempty"`
}

// AnswerResult reports one scoring decision back to the quiz engine.
// CorrectIndex is in catalog answer order.
type AnswerResult struct {
	Correct      bool
	BasePoints   int
	TimeBonus    int
	PointsEarned int
	CorrectIndex int
	Explanation  string
	Score        int
	Unlocked     []string
}

// Tracker is safe for concurrent use. Bus watchers run synchronously inside
// Tracker operations and must not call back into it.
type Tracker struct {
	catalog *catalog.Catalog
	bus     *event.Bus
	store   *kvstore.Store
	logger  *slog.Logger
	now     func() time.Time

	mu          sync.Mutex
	sessionID   string
	current     string
	score       int
	correct     int
	visited     map[string]struct{}
	unlocked    map[string]struct{}
	answered    map[string]struct{}
	completed   bool
	finalScore  int
	startedAt   time.Time
	completedAt time.Time
}

type Option func(*Tracker)

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func New(cat *catalog.Catalog, bus *event.Bus, store *kvstore.Store, logger *slog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		catalog: cat,
		bus:     bus,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.mu.Lock()
	t.initLocked()
	t.mu.Unlock()
	return t
}

// initLocked resets the state to its creation-time values: a fresh session
// in the start room, which is both unlocked and visited.
func (t *Tracker) initLocked() {
	start := t.catalog.StartRoom()
	t.sessionID = uuid.NewString()
	t.current = start.ID
	t.score = 0
	t.correct = 0
	t.visited = map[string]struct{}{start.ID: {}}
	t.unlocked = map[string]struct{}{start.ID: {}}
	t.answered = make(map[string]struct{})
	t.completed = false
	t.finalScore = 0
	t.startedAt = t.now()
	t.completedAt = time.Time{}
}

// MoveToRoom changes the current room. The destination must exist and be
// unlocked. Movement never touches the score.
func (t *Tracker) MoveToRoom(roomID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.catalog.Room(roomID); !ok {
		return t.fail(fmt.Errorf("moving to %q: %w", roomID, quest.ErrInvalidRoom))
	}
	if _, ok := t.unlocked[roomID]; !ok {
		return t.fail(fmt.Errorf("moving to %q: %w", roomID, quest.ErrRoomLocked))
	}

	from := t.current
	t.current = roomID
	t.visited[roomID] = struct{}{}
	t.bus.Publish(event.RoomChanged{From: from, To: roomID})
	return nil
}

// AnswerQuestion scores one answer attempt. Correctness is decided here, by
// index comparison against the catalog; elapsed is how long the question was
// open and feeds the time bonus. A correct answer unlocks the current room's
// connections. The question-answered event is published before the
// completion check runs.
func (t *Tracker) AnswerQuestion(questionID string, answerIndex int, elapsed time.Duration) (AnswerResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	q, ok := t.catalog.Question(questionID)
	if !ok {
		return AnswerResult{}, t.fail(fmt.Errorf("answering %q: %w", questionID, quest.ErrUnknownQuestion))
	}
	if _, dup := t.answered[questionID]; dup {
		return AnswerResult{}, t.fail(fmt.Errorf("answering %q: %w", questionID, quest.ErrAlreadyAnswered))
	}

	t.answered[questionID] = struct{}{}

	result := AnswerResult{
		Correct:      answerIndex == q.CorrectAnswer,
		BasePoints:   q.Points,
		CorrectIndex: q.CorrectAnswer,
		Explanation:  q.Explanation,
	}
	if result.Correct {
		t.correct++
		result.TimeBonus = TimeBonus(elapsed)
		result.PointsEarned = q.Points + result.TimeBonus
		t.score += result.PointsEarned
		result.Unlocked = t.unlockConnectionsLocked()
	}
	result.Score = t.score

	t.bus.Publish(event.QuestionAnswered{
		QuestionID: questionID,
		Correct:    result.Correct,
		Points:     result.PointsEarned,
		ElapsedMS:  elapsed.Milliseconds(),
		Score:      t.score,
	})
	t.checkCompletionLocked()
	return result, nil
}

// unlockConnectionsLocked unlocks every connection of the current room that
// is still locked, publishing one event per room, in connection order.
func (t *Tracker) unlockConnectionsLocked() []string {
	room, ok := t.catalog.Room(t.current)
	if !ok {
		return nil
	}
	var unlocked []string
	for _, conn := range room.Connections {
		if _, already := t.unlocked[conn]; already {
			continue
		}
		t.unlocked[conn] = struct{}{}
		unlocked = append(unlocked, conn)
		t.bus.Publish(event.RoomUnlocked{RoomID: conn})
	}
	return unlocked
}

// TimeBonus decays linearly from its maximum at elapsed zero to nothing at
// the cutoff: floor(50 × (1 − elapsed/10s)), never negative.
func TimeBonus(elapsed time.Duration) int {
	if elapsed >= timeBonusWindow {
		return 0
	}
	if elapsed < 0 {
		elapsed = 0
	}
	fraction := 1 - float64(elapsed)/float64(timeBonusWindow)
	return int(math.Floor(timeBonusMax * fraction))
}

// Penalize subtracts points from the score, flooring at zero, and returns
// the new score. It is the only scoring path that bypasses a question.
func (t *Tracker) Penalize(points int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.score -= points
	if t.score < 0 {
		t.score = 0
	}
	return t.score
}

// checkCompletionLocked latches completion the first time all three ratios
// hold, folds the bonuses into the score, and publishes the completion
// event. Once latched it never fires again.
func (t *Tracker) checkCompletionLocked() {
	if t.completed {
		return
	}
	totalRooms := t.catalog.RoomCount()
	totalQuestions := t.catalog.QuestionCount()
	if totalRooms == 0 || totalQuestions == 0 || len(t.answered) == 0 {
		return
	}

	visitedRatio := float64(len(t.visited)) / float64(totalRooms)
	answeredRatio := float64(len(t.answered)) / float64(totalQuestions)
	accuracy := float64(t.correct) / float64(len(t.answered))
	if visitedRatio < visitedThreshold || answeredRatio < answeredThreshold || accuracy < accuracyThreshold {
		return
	}

	elapsed := t.now().Sub(t.startedAt)
	breakdown := event.ScoreBreakdown{
		Base:        t.score,
		Completion:  completionBonus,
		Exploration: explorationPerRoom * len(t.visited),
	}
	if len(t.visited) == totalRooms && t.correct == len(t.answered) {
		breakdown.Perfect = perfectBonus
	}
	if elapsed < speedRunLimit {
		breakdown.SpeedRun = speedRunBonus
	}

	t.completed = true
	t.completedAt = t.now()
	t.finalScore = breakdown.Base + breakdown.Completion + breakdown.Exploration + breakdown.Perfect + breakdown.SpeedRun
	t.score = t.finalScore

	t.bus.Publish(event.GameCompleted{
		FinalScore: t.finalScore,
		Breakdown:  breakdown,
		Stats: event.CompletionStats{
			RoomsVisited:   len(t.visited),
			TotalRooms:     totalRooms,
			Answered:       len(t.answered),
			TotalQuestions: totalQuestions,
			Correct:        t.correct,
			Accuracy:       accuracy,
			ElapsedMS:      elapsed.Milliseconds(),
		},
	})
}

// Save writes the snapshot under the fixed progress key. Failure is logged
// and reported through the return value, never fatal.
func (t *Tracker) Save(ctx context.Context) bool {
	t.mu.Lock()
	snap := t.snapshotLocked()
	t.mu.Unlock()
	now := t.now()
	snap.SavedAt = &now

	if err := t.store.Put(ctx, kvstore.KeyProgress, snap); err != nil {
		t.logger.Warn("saving progress failed", "error", err)
		return false
	}
	return true
}

// Load replaces the in-memory state with the saved snapshot. A missing,
// malformed, or inconsistent record leaves the current state untouched and
// returns false.
func (t *Tracker) Load(ctx context.Context) bool {
	var snap Snapshot
	if err := t.store.Get(ctx, kvstore.KeyProgress, &snap); err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			t.logger.Warn("loading progress failed", "error", err)
		}
		return false
	}
	if !t.valid(snap) {
		t.logger.Warn("saved progress is inconsistent, ignoring", "currentRoom", snap.CurrentRoomID)
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessionID = snap.SessionID
	t.current = snap.CurrentRoomID
	t.score = snap.Score
	t.correct = snap.CorrectCount
	t.visited = toSet(snap.VisitedRooms)
	t.unlocked = toSet(snap.UnlockedRooms)
	t.answered = toSet(snap.AnsweredQuestions)
	t.completed = snap.GameCompleted
	t.finalScore = snap.FinalScore
	t.startedAt = snap.StartedAt
	if t.startedAt.IsZero() {
		t.startedAt = t.now()
	}
	t.completedAt = time.Time{}
	if snap.CompletedAt != nil {
		t.completedAt = *snap.CompletedAt
	}
	return true
}

// valid rejects records that would break the state invariants: the current
// room must exist and be unlocked, and every visited room must be unlocked.
func (t *Tracker) valid(snap Snapshot) bool {
	if _, ok := t.catalog.Room(snap.CurrentRoomID); !ok {
		return false
	}
	unlocked := toSet(snap.UnlockedRooms)
	if _, ok := unlocked[snap.CurrentRoomID]; !ok {
		return false
	}
	for _, id := range snap.VisitedRooms {
		if _, ok := unlocked[id]; !ok {
			return false
		}
	}
	return snap.Score >= 0
}

// Reset reinitializes the session and clears the persisted record.
func (t *Tracker) Reset(ctx context.Context) {
	t.mu.Lock()
	t.initLocked()
	t.mu.Unlock()

	if err := t.store.Delete(ctx, kvstore.KeyProgress); err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		t.logger.Warn("clearing saved progress failed", "error", err)
	}
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:         t.sessionID,
		CurrentRoomID:     t.current,
		Score:             t.score,
		CorrectCount:      t.correct,
		VisitedRooms:      toSorted(t.visited),
		UnlockedRooms:     toSorted(t.unlocked),
		AnsweredQuestions: toSorted(t.answered),
		GameCompleted:     t.completed,
		FinalScore:        t.finalScore,
		StartedAt:         t.startedAt,
	}
	if !t.completedAt.IsZero() {
		completedAt := t.completedAt
		snap.CompletedAt = &completedAt
	}
	return snap
}

// CurrentRoom returns the room the player is in.
func (t *Tracker) CurrentRoom() quest.Room {
	t.mu.Lock()
	id := t.current
	t.mu.Unlock()
	room, _ := t.catalog.Room(id)
	return room
}

// Answered reports whether the question has been scored this session.
func (t *Tracker) Answered(questionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.answered[questionID]
	return ok
}

// fail mirrors a user error onto the bus before it is returned to the
// caller.
func (t *Tracker) fail(err error) error {
	t.bus.Publish(event.GameError{ErrKind: quest.ErrorKind(err), Message: err.Error()})
	return err
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func toSorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
