// Package quest defines the core domain types shared by the game engine
// packages. It imports nothing outside the standard library.
package quest

// Room is a node in the world graph. Connections name the rooms a correct
// answer in this room unlocks; QuestionCategory optionally biases which
// question pool the room draws from.
type Room struct {
	ID               string
	Name             string
	Description      string
	Connections      []string
	QuestionCategory string
	Start            bool
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type Question struct {
	ID            string
	Category      string
	Difficulty    Difficulty
	Points        int
	Prompt        string
	Answers       []string
	CorrectAnswer int
	Explanation   string
	Hint          string
}

// Achievement is an unlockable definition. Points feed the running
// achievement total, which is tracked apart from the game score.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Points      int
	Condition   Condition
}

type ConditionKind string

const (
	CondCorrectAnswers       ConditionKind = "correct_answers"
	CondTotalQuestions       ConditionKind = "total_questions"
	CondRoomsVisited         ConditionKind = "rooms_visited"
	CondQuickAnswers         ConditionKind = "quick_answers"
	CondConsecutiveCorrect   ConditionKind = "consecutive_correct"
	CondComebackCorrect      ConditionKind = "comeback_correct"
	CondAccuracyWithMinimum  ConditionKind = "accuracy_with_minimum"
	CondCompletionTime       ConditionKind = "completion_time"
	CondAllRoomsVisited      ConditionKind = "all_rooms_visited"
	CondSpecificRoomVisited  ConditionKind = "specific_room_visited"
	CondGameCompleted        ConditionKind = "game_completed"
	CondGameCompletedPerfect ConditionKind = "game_completed_perfect"
)

// Condition is a closed tagged union: Kind selects which of the parameter
// fields apply, the rest stay zero.
type Condition struct {
	Kind ConditionKind
	// Value is the threshold for counting kinds (correct_answers,
	// total_questions, rooms_visited, quick_answers, consecutive_correct,
	// comeback_correct).
	Value int
	// Seconds bounds completion_time.
	Seconds float64
	// Accuracy in (0,1] and MinQuestions parameterize accuracy_with_minimum.
	Accuracy     float64
	MinQuestions int
	// Room names the target of specific_room_visited.
	Room string
}
