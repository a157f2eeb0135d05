package quiz

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/questlabs/roomquest/internal/catalog"
	"github.com/questlabs/roomquest/internal/database"
	"github.com/questlabs/roomquest/internal/event"
	"github.com/questlabs/roomquest/internal/kvstore"
	"github.com/questlabs/roomquest/internal/migrations"
	"github.com/questlabs/roomquest/internal/progress"
	"github.com/questlabs/roomquest/internal/quest"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	rooms := []quest.Room{
		{ID: "hall", Name: "Hall", Start: true, QuestionCategory: "history", Connections: []string{"study"}},
		{ID: "study", Name: "Study", QuestionCategory: "science", Connections: []string{"hall"}},
	}
	questions := []quest.Question{
		{ID: "h1", Category: "history", Difficulty: quest.DifficultyEasy, Points: 50,
			Prompt: "First?", Answers: []string{"alpha", "beta", "gamma", "delta"}, CorrectAnswer: 2,
			Explanation: "Gamma it is.", Hint: "Third letter."},
		{ID: "h2", Category: "history", Difficulty: quest.DifficultyMedium, Points: 100,
			Prompt: "Second?", Answers: []string{"one", "two"}, CorrectAnswer: 0},
		{ID: "s1", Category: "science", Difficulty: quest.DifficultyHard, Points: 150,
			Prompt: "Third?", Answers: []string{"x", "y", "z"}, CorrectAnswer: 1},
	}
	c, err := catalog.New(rooms, questions, nil)
	if err != nil {
		t.Fatalf("building catalog: %v", err)
	}
	return c
}

func setupEngine(t *testing.T, opts ...Option) (*Engine, *progress.Tracker, *event.Bus) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	cat := testCatalog(t)
	bus := event.NewBus()
	tracker := progress.New(cat, bus, kvstore.New(db), slog.Default())
	engine := New(cat, bus, tracker, slog.Default(), append([]Option{WithSeed(7)}, opts...)...)
	t.Cleanup(engine.Close)
	return engine, tracker, bus
}

// correctPosition finds where the catalog's correct answer ended up in the
// shuffled payload.
func correctPosition(t *testing.T, cat *catalog.Catalog, presented *event.QuestionPresented) int {
	t.Helper()
	q, ok := cat.Question(presented.QuestionID)
	if !ok {
		t.Fatalf("unknown question %q", presented.QuestionID)
	}
	want := q.Answers[q.CorrectAnswer]
	for i, a := range presented.Answers {
		if a == want {
			return i
		}
	}
	t.Fatalf("correct answer %q missing from presented answers %v", want, presented.Answers)
	return -1
}

func TestPresentExplicitQuestion(t *testing.T) {
	engine, _, bus := setupEngine(t)
	sub := bus.Subscribe(8, event.KindQuestionPresented)
	defer sub.Close()

	presented, err := engine.Present("h1", "")
	if err != nil {
		t.Fatalf("present: %v", err)
	}

	if presented.QuestionID != "h1" || presented.Points != 50 || presented.Prompt != "First?" {
		t.Errorf("unexpected presentation: %+v", presented)
	}
	if presented.TimeLimitMS != (30 * time.Second).Milliseconds() {
		t.Errorf("expected the default 30s limit, got %dms", presented.TimeLimitMS)
	}
	if presented.Token == "" {
		t.Error("expected a validation token")
	}
	if len(presented.Answers) != 4 {
		t.Errorf("expected all four answers, got %v", presented.Answers)
	}

	seen := make(map[string]bool)
	for _, a := range presented.Answers {
		seen[a] = true
	}
	for _, a := range []string{"alpha", "beta", "gamma", "delta"} {
		if !seen[a] {
			t.Errorf("answer %q lost in the shuffle", a)
		}
	}

	ev := <-sub.Events()
	if p := ev.Payload.(event.QuestionPresented); p.QuestionID != "h1" {
		t.Errorf("expected the presentation on the bus, got %+v", p)
	}
}

func TestPresentErrors(t *testing.T) {
	engine, tracker, _ := setupEngine(t)

	if _, err := engine.Present("nope", ""); !errors.Is(err, quest.ErrUnknownQuestion) {
		t.Fatalf("expected ErrUnknownQuestion, got %v", err)
	}
	if _, err := engine.Present("", "geography"); !errors.Is(err, quest.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}

	if _, err := tracker.AnswerQuestion("h1", 2, time.Second); err != nil {
		t.Fatalf("pre-answering: %v", err)
	}
	if _, err := engine.Present("h1", ""); !errors.Is(err, quest.ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}
}

func TestPresentPrefersRoomAffinity(t *testing.T) {
	engine, _, _ := setupEngine(t)

	// The hall's affinity is history, so a bare present draws from it.
	presented, err := engine.Present("", "")
	if err != nil {
		t.Fatalf("present: %v", err)
	}
	if presented.Category != "history" {
		t.Fatalf("expected a history question in the hall, got %q", presented.Category)
	}
}

func TestPresentFallsBackWhenAffinityExhausted(t *testing.T) {
	engine, tracker, _ := setupEngine(t)

	for _, id := range []string{"h1", "h2"} {
		q, _ := testCatalog(t).Question(id)
		if _, err := tracker.AnswerQuestion(id, q.CorrectAnswer, time.Second); err != nil {
			t.Fatalf("answering %s: %v", id, err)
		}
	}

	presented, err := engine.Present("", "")
	if err != nil {
		t.Fatalf("present: %v", err)
	}
	if presented.QuestionID != "s1" {
		t.Fatalf("expected the science question once history is exhausted, got %q", presented.QuestionID)
	}
}

func TestPresentNoQuestionsAvailable(t *testing.T) {
	engine, tracker, _ := setupEngine(t)
	cat := testCatalog(t)

	for _, id := range []string{"h1", "h2", "s1"} {
		q, _ := cat.Question(id)
		if _, err := tracker.AnswerQuestion(id, q.CorrectAnswer, time.Second); err != nil {
			t.Fatalf("answering %s: %v", id, err)
		}
	}

	if _, err := engine.Present("", ""); !errors.Is(err, quest.ErrNoQuestionsAvailable) {
		t.Fatalf("expected ErrNoQuestionsAvailable, got %v", err)
	}
}

func TestPresentReplacesActiveQuestion(t *testing.T) {
	engine, _, bus := setupEngine(t)
	sub := bus.Subscribe(8, event.KindQuestionCancelled)
	defer sub.Close()

	if _, err := engine.Present("h1", ""); err != nil {
		t.Fatalf("first present: %v", err)
	}
	second, err := engine.Present("h2", "")
	if err != nil {
		t.Fatalf("second present: %v", err)
	}

	ev := <-sub.Events()
	if p := ev.Payload.(event.QuestionCancelled); p.QuestionID != "h1" {
		t.Fatalf("expected h1 to be cancelled, got %+v", p)
	}
	if active := engine.Active(); active == nil || active.QuestionID != second.QuestionID {
		t.Fatalf("expected h2 to be the active question, got %+v", active)
	}
}

func TestValidateCorrectAnswer(t *testing.T) {
	engine, tracker, bus := setupEngine(t)
	cat := testCatalog(t)
	sub := bus.Subscribe(16, event.KindAnswerResolved)
	defer sub.Close()

	presented, err := engine.Present("h1", "")
	if err != nil {
		t.Fatalf("present: %v", err)
	}

	pos := correctPosition(t, cat, presented)
	resolved, err := engine.ValidateAnswer(pos)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if !resolved.Correct {
		t.Fatal("expected a correct resolution")
	}
	if resolved.SelectedIndex != pos || resolved.CorrectIndex != pos {
		t.Errorf("expected selected and correct at %d, got %+v", pos, resolved)
	}
	if resolved.PointsEarned < 50 {
		t.Errorf("expected at least the base points, got %d", resolved.PointsEarned)
	}
	if resolved.Explanation != "Gamma it is." {
		t.Errorf("expected the explanation, got %q", resolved.Explanation)
	}
	if !tracker.Answered("h1") {
		t.Error("expected the question to be recorded as answered")
	}
	if engine.Active() != nil {
		t.Error("expected the engine to return to idle")
	}

	ev := <-sub.Events()
	if p := ev.Payload.(event.AnswerResolved); p.QuestionID != "h1" || !p.Correct {
		t.Errorf("expected the resolution on the bus, got %+v", p)
	}
}

func TestValidateRevealsCommitment(t *testing.T) {
	engine, _, _ := setupEngine(t, WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}))
	cat := testCatalog(t)

	presented, err := engine.Present("h1", "")
	if err != nil {
		t.Fatalf("present: %v", err)
	}

	resolved, err := engine.ValidateAnswer(correctPosition(t, cat, presented))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	nonce, err := hex.DecodeString(resolved.Nonce)
	if err != nil {
		t.Fatalf("decoding nonce: %v", err)
	}
	presentedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	want := deriveToken(nonce, resolved.QuestionID, resolved.CorrectIndex, presentedAt)
	if presented.Token != want {
		t.Fatalf("token does not verify against the revealed nonce: %q != %q", presented.Token, want)
	}
}

func TestValidateWrongAnswer(t *testing.T) {
	engine, _, _ := setupEngine(t)
	cat := testCatalog(t)

	presented, err := engine.Present("h1", "")
	if err != nil {
		t.Fatalf("present: %v", err)
	}

	pos := correctPosition(t, cat, presented)
	wrong := (pos + 1) % len(presented.Answers)
	resolved, err := engine.ValidateAnswer(wrong)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if resolved.Correct {
		t.Fatal("expected an incorrect resolution")
	}
	if resolved.PointsEarned != 0 {
		t.Errorf("expected zero points, got %d", resolved.PointsEarned)
	}
	if resolved.CorrectIndex != pos {
		t.Errorf("expected the resolution to reveal index %d, got %d", pos, resolved.CorrectIndex)
	}
}

func TestValidateOutOfRangeSelection(t *testing.T) {
	engine, tracker, _ := setupEngine(t)

	if _, err := engine.Present("h1", ""); err != nil {
		t.Fatalf("present: %v", err)
	}
	resolved, err := engine.ValidateAnswer(99)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if resolved.Correct || resolved.SelectedIndex != 99 {
		t.Fatalf("expected an out-of-range selection to score as wrong, got %+v", resolved)
	}
	if !tracker.Answered("h1") {
		t.Error("an out-of-range selection still consumes the question")
	}
}

func TestValidateWithoutActiveQuestion(t *testing.T) {
	engine, _, _ := setupEngine(t)

	if _, err := engine.ValidateAnswer(0); !errors.Is(err, quest.ErrNoActiveQuestion) {
		t.Fatalf("expected ErrNoActiveQuestion, got %v", err)
	}
}

func TestValidateSingleFlight(t *testing.T) {
	engine, _, bus := setupEngine(t)
	cat := testCatalog(t)
	sub := bus.Subscribe(64, event.KindAnswerResolved)
	defer sub.Close()

	presented, err := engine.Present("h1", "")
	if err != nil {
		t.Fatalf("present: %v", err)
	}
	pos := correctPosition(t, cat, presented)

	const submissions = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	resolutions := 0

	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resolved, err := engine.ValidateAnswer(pos)
			if err != nil && !errors.Is(err, quest.ErrNoActiveQuestion) {
				t.Errorf("unexpected error: %v", err)
			}
			if resolved != nil {
				mu.Lock()
				resolutions++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if resolutions != 1 {
		t.Fatalf("expected exactly one winning submission, got %d", resolutions)
	}

	events := 0
drain:
	for {
		select {
		case <-sub.Events():
			events++
		default:
			break drain
		}
	}
	if events != 1 {
		t.Fatalf("expected exactly one resolution event, got %d", events)
	}
}

func TestSkip(t *testing.T) {
	engine, tracker, bus := setupEngine(t)
	cat := testCatalog(t)
	sub := bus.Subscribe(16, event.KindQuestionSkipped)
	defer sub.Close()

	// Bank some points first so the penalty is visible.
	presented, err := engine.Present("h2", "")
	if err != nil {
		t.Fatalf("present h2: %v", err)
	}
	if _, err := engine.ValidateAnswer(correctPosition(t, cat, presented)); err != nil {
		t.Fatalf("validate h2: %v", err)
	}
	before := tracker.Snapshot().Score

	if _, err := engine.Present("h1", ""); err != nil {
		t.Fatalf("present h1: %v", err)
	}
	if !engine.Skip() {
		t.Fatal("expected the skip to land")
	}

	after := tracker.Snapshot().Score
	if after != before-10 {
		t.Fatalf("expected a 10 point penalty, got %d -> %d", before, after)
	}
	ev := <-sub.Events()
	if p := ev.Payload.(event.QuestionSkipped); p.QuestionID != "h1" || p.Penalty != 10 || p.Score != after {
		t.Errorf("unexpected skip event: %+v", p)
	}

	// The skipped question is not consumed.
	if tracker.Answered("h1") {
		t.Fatal("a skipped question must stay answerable")
	}
	presented, err = engine.Present("h1", "")
	if err != nil {
		t.Fatalf("re-present after skip: %v", err)
	}
	resolved, err := engine.ValidateAnswer(correctPosition(t, cat, presented))
	if err != nil || !resolved.Correct {
		t.Fatalf("expected the re-presented question to resolve correctly: %v %+v", err, resolved)
	}
}

func TestSkipPenaltyOption(t *testing.T) {
	engine, tracker, _ := setupEngine(t, WithSkipPenalty(25))
	cat := testCatalog(t)

	presented, err := engine.Present("h2", "")
	if err != nil {
		t.Fatalf("present h2: %v", err)
	}
	if _, err := engine.ValidateAnswer(correctPosition(t, cat, presented)); err != nil {
		t.Fatalf("validate h2: %v", err)
	}
	before := tracker.Snapshot().Score

	if _, err := engine.Present("h1", ""); err != nil {
		t.Fatalf("present h1: %v", err)
	}
	if !engine.Skip() {
		t.Fatal("expected the skip to land")
	}
	if after := tracker.Snapshot().Score; after != before-25 {
		t.Fatalf("expected a 25 point penalty, got %d -> %d", before, after)
	}
}

func TestSkipWhileIdle(t *testing.T) {
	engine, _, bus := setupEngine(t)
	sub := bus.Subscribe(8, event.KindQuestionSkipped)
	defer sub.Close()

	if engine.Skip() {
		t.Fatal("expected skip to be a no-op while idle")
	}
	select {
	case ev := <-sub.Events():
		t.Fatalf("expected no event, got %+v", ev.Payload)
	default:
	}
}

func TestHandleTimeout(t *testing.T) {
	engine, tracker, bus := setupEngine(t)
	cat := testCatalog(t)
	sub := bus.Subscribe(16, event.KindAnswerResolved)
	defer sub.Close()

	if _, err := engine.Present("h1", ""); err != nil {
		t.Fatalf("present: %v", err)
	}
	engine.HandleTimeout()

	ev := <-sub.Events()
	p := ev.Payload.(event.AnswerResolved)
	if !p.TimedOut || p.Correct || p.PointsEarned != 0 || p.SelectedIndex != -1 {
		t.Fatalf("unexpected timeout resolution: %+v", p)
	}
	if engine.Active() != nil {
		t.Fatal("expected idle after timeout")
	}

	// A timeout does not consume the question.
	if tracker.Answered("h1") {
		t.Fatal("a timed out question must stay answerable")
	}
	presented, err := engine.Present("h1", "")
	if err != nil {
		t.Fatalf("re-present after timeout: %v", err)
	}
	resolved, err := engine.ValidateAnswer(correctPosition(t, cat, presented))
	if err != nil || !resolved.Correct {
		t.Fatalf("expected the question to resolve after its timeout: %v %+v", err, resolved)
	}
}

func TestHandleTimeoutWhileIdle(t *testing.T) {
	engine, _, bus := setupEngine(t)
	sub := bus.Subscribe(8, event.KindAnswerResolved)
	defer sub.Close()

	engine.HandleTimeout()

	select {
	case ev := <-sub.Events():
		t.Fatalf("expected no event, got %+v", ev.Payload)
	default:
	}
}

func TestCountdownTimesOut(t *testing.T) {
	engine, _, bus := setupEngine(t, WithTimeLimit(60*time.Millisecond), WithTickInterval(20*time.Millisecond))
	ticks := bus.Subscribe(64, event.KindTimerTick)
	defer ticks.Close()
	resolved := bus.Subscribe(8, event.KindAnswerResolved)
	defer resolved.Close()

	if _, err := engine.Present("h1", ""); err != nil {
		t.Fatalf("present: %v", err)
	}

	select {
	case ev := <-resolved.Events():
		if p := ev.Payload.(event.AnswerResolved); !p.TimedOut {
			t.Fatalf("expected a timeout resolution, got %+v", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("the countdown never timed out")
	}

	select {
	case ev := <-ticks.Events():
		p := ev.Payload.(event.TimerTick)
		if p.QuestionID != "h1" || p.RemainingMS < 0 {
			t.Fatalf("unexpected tick: %+v", p)
		}
	default:
		t.Fatal("expected at least one timer tick before the deadline")
	}

	if engine.Active() != nil {
		t.Fatal("expected idle after the countdown")
	}
}

func TestStaleCountdownIsIgnored(t *testing.T) {
	engine, _, bus := setupEngine(t, WithTimeLimit(80*time.Millisecond), WithTickInterval(20*time.Millisecond))
	resolved := bus.Subscribe(8, event.KindAnswerResolved)
	defer resolved.Close()

	if _, err := engine.Present("h1", ""); err != nil {
		t.Fatalf("present h1: %v", err)
	}
	if _, err := engine.Present("h2", ""); err != nil {
		t.Fatalf("present h2: %v", err)
	}

	// Only h2 may time out; h1's countdown died with its generation.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-resolved.Events():
			p := ev.Payload.(event.AnswerResolved)
			if p.QuestionID == "h1" {
				t.Fatalf("a stale countdown resolved a replaced question: %+v", p)
			}
			if p.QuestionID == "h2" && p.TimedOut {
				return
			}
		case <-deadline:
			t.Fatal("h2 never timed out")
		}
	}
}

func TestHint(t *testing.T) {
	engine, _, _ := setupEngine(t)

	if got := engine.Hint(); got != genericHint {
		t.Fatalf("expected the generic hint while idle, got %q", got)
	}

	if _, err := engine.Present("h1", ""); err != nil {
		t.Fatalf("present h1: %v", err)
	}
	if got := engine.Hint(); got != "Third letter." {
		t.Fatalf("expected the question's hint, got %q", got)
	}

	if _, err := engine.Present("h2", ""); err != nil {
		t.Fatalf("present h2: %v", err)
	}
	if got := engine.Hint(); got != genericHint {
		t.Fatalf("expected the generic hint for a hintless question, got %q", got)
	}
}

func TestCancelActive(t *testing.T) {
	engine, _, bus := setupEngine(t)
	sub := bus.Subscribe(8, event.KindQuestionCancelled)
	defer sub.Close()

	engine.CancelActive() // idle, nothing happens

	if _, err := engine.Present("h1", ""); err != nil {
		t.Fatalf("present: %v", err)
	}
	engine.CancelActive()

	ev := <-sub.Events()
	if p := ev.Payload.(event.QuestionCancelled); p.QuestionID != "h1" {
		t.Fatalf("expected h1 cancelled, got %+v", p)
	}
	if engine.Active() != nil {
		t.Fatal("expected idle after cancel")
	}
}
