// Package event defines the game event union and the in-process bus that
// fans events out to rule watchers and stream subscribers.
package event

import "time"

type Kind string

const (
	KindRoomChanged         Kind = "room_changed"
	KindRoomUnlocked        Kind = "room_unlocked"
	KindQuestionPresented   Kind = "question_presented"
	KindTimerTick           Kind = "timer_tick"
	KindAnswerResolved      Kind = "answer_resolved"
	KindQuestionSkipped     Kind = "question_skipped"
	KindQuestionCancelled   Kind = "question_cancelled"
	KindQuestionAnswered    Kind = "question_answered"
	KindGameCompleted       Kind = "game_completed"
	KindAchievementUnlocked Kind = "achievement_unlocked"
	KindError               Kind = "error"
)

// Event is the envelope delivered to watchers and subscribers. Payload is
// always one of the structs below, matching Kind.
type Event struct {
	Kind    Kind      `json:"kind"`
	At      time.Time `json:"at"`
	Payload Payload   `json:"payload"`
}

// Payload is implemented by every event body in this package.
type Payload interface {
	Kind() Kind
}

type RoomChanged struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type RoomUnlocked struct {
	RoomID string `json:"roomId"`
}

// QuestionPresented carries everything a client needs to render the active
// question. It never includes the correct answer index; Token commits the
// engine to the answer fixed at presentation time.
type QuestionPresented struct {
	QuestionID  string   `json:"questionId"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"`
	Prompt      string   `json:"prompt"`
	Answers     []string `json:"answers"`
	Points      int      `json:"points"`
	Token       string   `json:"token"`
	TimeLimitMS int64    `json:"timeLimitMs"`
}

type TimerTick struct {
	QuestionID  string  `json:"questionId"`
	RemainingMS int64   `json:"remainingMs"`
	ElapsedMS   int64   `json:"elapsedMs"`
	Percent     float64 `json:"percent"`
}

// AnswerResolved closes a presentation. CorrectIndex is in shuffled answer
// order; Nonce opens the presentation token commitment.
type AnswerResolved struct {
	QuestionID    string `json:"questionId"`
	Correct       bool   `json:"correct"`
	CorrectIndex  int    `json:"correctIndex"`
	SelectedIndex int    `json:"selectedIndex"`
	PointsEarned  int    `json:"pointsEarned"`
	Explanation   string `json:"explanation,omitempty"`
	TimedOut      bool   `json:"timedOut,omitempty"`
	Nonce         string `json:"nonce"`
}

type QuestionSkipped struct {
	QuestionID string `json:"questionId"`
	Penalty    int    `json:"penalty"`
	Score      int    `json:"score"`
}

type QuestionCancelled struct {
	QuestionID string `json:"questionId"`
}

// QuestionAnswered is the scoring fact recorded by the progress tracker,
// consumed by the achievement evaluator. AnswerResolved is the
// presentation-facing companion emitted by the quiz engine.
type QuestionAnswered struct {
	QuestionID string `json:"questionId"`
	Correct    bool   `json:"correct"`
	Points     int    `json:"points"`
	ElapsedMS  int64  `json:"elapsedMs"`
	Score      int    `json:"score"`
}

type ScoreBreakdown struct {
	Base        int `json:"base"`
	Completion  int `json:"completion"`
	Exploration int `json:"exploration"`
	Perfect     int `json:"perfect"`
	SpeedRun    int `json:"speedRun"`
}

type CompletionStats struct {
	RoomsVisited   int     `json:"roomsVisited"`
	TotalRooms     int     `json:"totalRooms"`
	Answered       int     `json:"answered"`
	TotalQuestions int     `json:"totalQuestions"`
	Correct        int     `json:"correct"`
	Accuracy       float64 `json:"accuracy"`
	ElapsedMS      int64   `json:"elapsedMs"`
}

type GameCompleted struct {
	FinalScore int             `json:"finalScore"`
	Breakdown  ScoreBreakdown  `json:"breakdown"`
	Stats      CompletionStats `json:"stats"`
}

type AchievementUnlocked struct {
	AchievementID string `json:"achievementId"`
	Name          string `json:"name"`
	Points        int    `json:"points"`
	TotalPoints   int    `json:"totalPoints"`
	UnlockedCount int    `json:"unlockedCount"`
}

// GameError mirrors a rejected operation onto the stream so UI collaborators
// can surface it without coupling to request/response plumbing.
type GameError struct {
	ErrKind string `json:"errKind"`
	Message string `json:"message"`
}

func (RoomChanged) Kind() Kind         { return KindRoomChanged }
func (RoomUnlocked) Kind() Kind        { return KindRoomUnlocked }
func (QuestionPresented) Kind() Kind   { return KindQuestionPresented }
func (TimerTick) Kind() Kind           { return KindTimerTick }
func (AnswerResolved) Kind() Kind      { return KindAnswerResolved }
func (QuestionSkipped) Kind() Kind     { return KindQuestionSkipped }
func (QuestionCancelled) Kind() Kind   { return KindQuestionCancelled }
func (QuestionAnswered) Kind() Kind    { return KindQuestionAnswered }
func (GameCompleted) Kind() Kind       { return KindGameCompleted }
func (AchievementUnlocked) Kind() Kind { return KindAchievementUnlocked }
func (GameError) Kind() Kind           { return KindError }
