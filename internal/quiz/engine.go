// Package quiz runs the question lifecycle: Idle, one question Presented
// under a countdown, back to Idle through exactly one resolution (validated,
// timed out) or a skip. The correct answer never leaves the engine before
// resolution; presented payloads carry a commitment token instead.
package quiz

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	mrand "math/rand/v2"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/questlabs/roomquest/internal/catalog"
	"github.com/questlabs/roomquest/internal/event"
	"github.com/questlabs/roomquest/internal/progress"
	"github.com/questlabs/roomquest/internal/quest"
)

const (
	defaultTimeLimit   = 30 * time.Second
	defaultTickEvery   = time.Second
	defaultSkipPenalty = 10

	genericHint = "No hint for this one. Rule out the answers that feel wrong first."
)

// active is one presentation. order maps a shuffled answer position back to
// its catalog position; generation invalidates stale countdowns and tokens
// after a cancel-and-replace.
type active struct {
	question     quest.Question
	answers      []string
	order        []int
	correctIndex int
	token        string
	nonce        []byte
	presentedAt  time.Time
	generation   int
	cancel       context.CancelFunc
}

type Engine struct {
	catalog *catalog.Catalog
	bus     *event.Bus
	tracker *progress.Tracker
	logger  *slog.Logger

	timeLimit   time.Duration
	tickEvery   time.Duration
	skipPenalty int
	now         func() time.Time
	rng         *mrand.Rand

	mu         sync.Mutex
	active     *active
	generation int
	resolving  bool
}

type Option func(*Engine)

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTimeLimit overrides how long a question stays open.
func WithTimeLimit(d time.Duration) Option {
	return func(e *Engine) { e.timeLimit = d }
}

// WithTickInterval overrides the countdown tick cadence.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) { e.tickEvery = d }
}

// WithSeed makes question selection and answer shuffling deterministic.
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.rng = mrand.New(mrand.NewPCG(seed, seed)) }
}

// WithSkipPenalty overrides the points deducted for skipping a question.
func WithSkipPenalty(points int) Option {
	return func(e *Engine) { e.skipPenalty = points }
}

func New(cat *catalog.Catalog, bus *event.Bus, tracker *progress.Tracker, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		catalog:     cat,
		bus:         bus,
		tracker:     tracker,
		logger:      logger,
		timeLimit:   defaultTimeLimit,
		tickEvery:   defaultTickEvery,
		skipPenalty: defaultSkipPenalty,
		now:         time.Now,
		rng:         mrand.New(mrand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Present activates a question and starts its countdown. An explicit id
// wins; otherwise the engine draws from the unanswered pool, preferring the
// category argument, then the current room's affinity, then anything left.
// Presenting over an active question cancels and replaces it. The nil,nil
// return means a resolution was in flight and the call was ignored.
func (e *Engine) Present(questionID, category string) (*event.QuestionPresented, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.resolving {
		return nil, nil
	}

	q, err := e.pick(questionID, category)
	if err != nil {
		return nil, e.fail(err)
	}

	if e.active != nil {
		e.active.cancel()
		e.bus.Publish(event.QuestionCancelled{QuestionID: e.active.question.ID})
		e.active = nil
	}

	e.generation++
	answers, order := e.shuffle(q.Answers)
	correctIndex := 0
	for i, catalogIndex := range order {
		if catalogIndex == q.CorrectAnswer {
			correctIndex = i
			break
		}
	}

	nonce := make([]byte, 16)
	rand.Read(nonce)
	presentedAt := e.now()
	ctx, cancel := context.WithCancel(context.Background())

	e.active = &active{
		question:     q,
		answers:      answers,
		order:        order,
		correctIndex: correctIndex,
		token:        deriveToken(nonce, q.ID, correctIndex, presentedAt),
		nonce:        nonce,
		presentedAt:  presentedAt,
		generation:   e.generation,
		cancel:       cancel,
	}
	go e.countdown(ctx, e.generation, q.ID, presentedAt)

	presented := &event.QuestionPresented{
		QuestionID:  q.ID,
		Category:    q.Category,
		Difficulty:  string(q.Difficulty),
		Prompt:      q.Prompt,
		Answers:     answers,
		Points:      q.Points,
		Token:       e.active.token,
		TimeLimitMS: e.timeLimit.Milliseconds(),
	}
	e.bus.Publish(*presented)
	return presented, nil
}

// pick resolves which question to present. Explicit ids are honored even
// outside the current room's category but must exist and be unanswered.
func (e *Engine) pick(questionID, category string) (quest.Question, error) {
	if questionID != "" {
		q, ok := e.catalog.Question(questionID)
		if !ok {
			return quest.Question{}, fmt.Errorf("presenting %q: %w", questionID, quest.ErrUnknownQuestion)
		}
		if e.tracker.Answered(questionID) {
			return quest.Question{}, fmt.Errorf("presenting %q: %w", questionID, quest.ErrAlreadyAnswered)
		}
		return q, nil
	}

	var pool []string
	if category != "" {
		if !e.catalog.HasCategory(category) {
			return quest.Question{}, fmt.Errorf("presenting category %q: %w", category, quest.ErrUnknownCategory)
		}
		pool = e.unanswered(category)
	} else if affinity := e.tracker.CurrentRoom().QuestionCategory; affinity != "" {
		pool = e.unanswered(affinity)
	}
	if len(pool) == 0 {
		pool = e.unanswered("")
	}
	if len(pool) == 0 {
		return quest.Question{}, quest.ErrNoQuestionsAvailable
	}

	id := pool[e.rng.IntN(len(pool))]
	q, _ := e.catalog.Question(id)
	return q, nil
}

func (e *Engine) unanswered(category string) []string {
	ids := e.catalog.QuestionIDs(category)
	out := ids[:0]
	for _, id := range ids {
		if !e.tracker.Answered(id) {
			out = append(out, id)
		}
	}
	return out
}

// shuffle is a Fisher-Yates pass over the answer list. order[i] is the
// catalog position of the answer now shown at i.
func (e *Engine) shuffle(answers []string) ([]string, []int) {
	shuffled := make([]string, len(answers))
	copy(shuffled, answers)
	order := make([]int, len(answers))
	for i := range order {
		order[i] = i
	}
	e.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		order[i], order[j] = order[j], order[i]
	})
	return shuffled, order
}

// ValidateAnswer resolves the active question with the player's selection,
// in shuffled answer order. The progress tracker is the scoring authority;
// an out-of-range selection is scored as wrong, not rejected. The nil,nil
// return is the single-flight sentinel: another resolution for this
// question was already in flight and exactly one wins.
func (e *Engine) ValidateAnswer(selectedIndex int) (*event.AnswerResolved, error) {
	e.mu.Lock()
	if e.active == nil {
		e.mu.Unlock()
		return nil, e.fail(quest.ErrNoActiveQuestion)
	}
	if e.resolving {
		e.mu.Unlock()
		return nil, nil
	}
	e.resolving = true
	act := e.active
	elapsed := e.now().Sub(act.presentedAt)
	e.mu.Unlock()

	catalogIndex := -1
	if selectedIndex >= 0 && selectedIndex < len(act.order) {
		catalogIndex = act.order[selectedIndex]
	}

	result, err := e.tracker.AnswerQuestion(act.question.ID, catalogIndex, elapsed)

	e.mu.Lock()
	defer e.mu.Unlock()
	act.cancel()
	e.active = nil
	e.resolving = false
	if err != nil {
		return nil, err
	}

	resolved := &event.AnswerResolved{
		QuestionID:    act.question.ID,
		Correct:       result.Correct,
		CorrectIndex:  act.correctIndex,
		SelectedIndex: selectedIndex,
		PointsEarned:  result.PointsEarned,
		Explanation:   result.Explanation,
		Nonce:         hex.EncodeToString(act.nonce),
	}
	e.bus.Publish(*resolved)
	return resolved, nil
}

// HandleTimeout resolves the active question as timed out: zero points, no
// scoring call, the question stays answerable later. It is a no-op when
// idle or when a validation is already in flight.
func (e *Engine) HandleTimeout() {
	e.timeout(-1)
}

// timeout is the countdown's terminal path. generation guards a stale timer
// whose question was already replaced; -1 means "whatever is active now".
func (e *Engine) timeout(generation int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil || e.resolving {
		return
	}
	if generation >= 0 && generation != e.active.generation {
		return
	}

	act := e.active
	act.cancel()
	e.active = nil

	e.bus.Publish(event.AnswerResolved{
		QuestionID:    act.question.ID,
		Correct:       false,
		CorrectIndex:  act.correctIndex,
		SelectedIndex: -1,
		PointsEarned:  0,
		Explanation:   act.question.Explanation,
		TimedOut:      true,
		Nonce:         hex.EncodeToString(act.nonce),
	})
}

// Skip abandons the active question for a fixed penalty routed through the
// tracker. The question is not recorded as answered and may come back.
// Skipping while idle or mid-resolution does nothing.
func (e *Engine) Skip() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil || e.resolving {
		return false
	}

	act := e.active
	act.cancel()
	e.active = nil

	score := e.tracker.Penalize(e.skipPenalty)
	e.bus.Publish(event.QuestionSkipped{
		QuestionID: act.question.ID,
		Penalty:    e.skipPenalty,
		Score:      score,
	})
	return true
}

// Hint returns the active question's hint, or a generic line when the
// question has none or nothing is active.
func (e *Engine) Hint() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil || e.active.question.Hint == "" {
		return genericHint
	}
	return e.active.question.Hint
}

// Active returns the presented view of the current question, if any.
func (e *Engine) Active() *event.QuestionPresented {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return nil
	}
	act := e.active
	return &event.QuestionPresented{
		QuestionID:  act.question.ID,
		Category:    act.question.Category,
		Difficulty:  string(act.question.Difficulty),
		Prompt:      act.question.Prompt,
		Answers:     act.answers,
		Points:      act.question.Points,
		Token:       act.token,
		TimeLimitMS: e.timeLimit.Milliseconds(),
	}
}

// CancelActive drops the active question without resolution, publishing the
// cancellation. Used by session reset.
func (e *Engine) CancelActive() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return
	}
	e.active.cancel()
	e.bus.Publish(event.QuestionCancelled{QuestionID: e.active.question.ID})
	e.active = nil
}

// Close stops the countdown goroutine without publishing anything.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active != nil {
		e.active.cancel()
		e.active = nil
	}
}

// countdown emits ticks until the deadline, then resolves as timeout. The
// context is canceled by whichever path resolves the question first; the
// generation check keeps a stale tick from escaping after replacement.
func (e *Engine) countdown(ctx context.Context, generation int, questionID string, presentedAt time.Time) {
	ticker := time.NewTicker(e.tickEvery)
	defer ticker.Stop()
	deadline := time.NewTimer(e.timeLimit)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !e.isCurrent(generation) {
				return
			}
			elapsed := e.now().Sub(presentedAt)
			remaining := e.timeLimit - elapsed
			if remaining < 0 {
				remaining = 0
			}
			e.bus.Publish(event.TimerTick{
				QuestionID:  questionID,
				RemainingMS: remaining.Milliseconds(),
				ElapsedMS:   elapsed.Milliseconds(),
				Percent:     math.Min(100, float64(elapsed)/float64(e.timeLimit)*100),
			})
		case <-deadline.C:
			e.timeout(generation)
			return
		}
	}
}

func (e *Engine) isCurrent(generation int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active != nil && e.active.generation == generation
}

// deriveToken commits to the correct answer position fixed at presentation
// time without exposing it: a blake2b digest over the nonce, question id,
// shuffled correct index, and presentation timestamp. The nonce is revealed
// in the resolution event so clients can verify the commitment. This is
// obfuscation for a client-side game, not a security boundary.
func deriveToken(nonce []byte, questionID string, correctIndex int, presentedAt time.Time) string {
	h, _ := blake2b.New256(nil)
	fmt.Fprintf(h, "%x|%s|%d|%d", nonce, questionID, correctIndex, presentedAt.UnixMilli())
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// fail mirrors a user error onto the bus before it is returned.
func (e *Engine) fail(err error) error {
	e.bus.Publish(event.GameError{ErrKind: quest.ErrorKind(err), Message: err.Error()})
	return err
}
