package catalog

import (
	"fmt"

	"github.com/questlabs/roomquest/internal/quest"
)

// Problems runs every authoring rule over the world content and returns one
// message per violation. An empty slice means the content is playable.
// packlint prints these verbatim.
func Problems(rooms []quest.Room, questions []quest.Question, achievements []quest.Achievement) []string {
	var probs []string
	addf := func(format string, args ...any) {
		probs = append(probs, fmt.Sprintf(format, args...))
	}

	if len(rooms) == 0 {
		addf("world has no rooms")
	}

	roomIDs := make(map[string]struct{}, len(rooms))
	starts := 0
	for i, r := range rooms {
		if r.ID == "" {
			addf("rooms[%d]: empty id", i)
			continue
		}
		if _, dup := roomIDs[r.ID]; dup {
			addf("room %q: duplicate id", r.ID)
		}
		roomIDs[r.ID] = struct{}{}
		if r.Name == "" {
			addf("room %q: empty name", r.ID)
		}
		if r.Start {
			starts++
		}
	}
	if len(rooms) > 0 && starts != 1 {
		addf("world needs exactly one start room, found %d", starts)
	}
	for _, r := range rooms {
		for _, conn := range r.Connections {
			if conn == r.ID {
				addf("room %q: connects to itself", r.ID)
				continue
			}
			if _, ok := roomIDs[conn]; !ok {
				addf("room %q: connection %q does not exist", r.ID, conn)
			}
		}
	}

	categories := make(map[string]int)
	questionIDs := make(map[string]struct{}, len(questions))
	if len(questions) == 0 {
		addf("world has no questions")
	}
	for i, q := range questions {
		if q.ID == "" {
			addf("questions[%d]: empty id", i)
			continue
		}
		if _, dup := questionIDs[q.ID]; dup {
			addf("question %q: duplicate id", q.ID)
		}
		questionIDs[q.ID] = struct{}{}
		if q.Prompt == "" {
			addf("question %q: empty prompt", q.ID)
		}
		if q.Category == "" {
			addf("question %q: empty category", q.ID)
		} else {
			categories[q.Category]++
		}
		switch q.Difficulty {
		case quest.DifficultyEasy, quest.DifficultyMedium, quest.DifficultyHard:
		default:
			addf("question %q: unknown difficulty %q", q.ID, q.Difficulty)
		}
		if n := len(q.Answers); n < 2 || n > 6 {
			addf("question %q: needs 2-6 answers, has %d", q.ID, n)
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Answers) {
			addf("question %q: correct index %d out of range", q.ID, q.CorrectAnswer)
		}
		if q.Points < 1 {
			addf("question %q: points must be positive", q.ID)
		}
	}

	for _, r := range rooms {
		if r.QuestionCategory == "" {
			continue
		}
		if categories[r.QuestionCategory] == 0 {
			addf("room %q: category %q has no questions", r.ID, r.QuestionCategory)
		}
	}

	if starts == 1 && len(rooms) > 0 {
		if unreachable := unreachableRooms(rooms); len(unreachable) > 0 {
			for _, id := range unreachable {
				addf("room %q: not reachable from the start room", id)
			}
		}
	}

	achIDs := make(map[string]struct{}, len(achievements))
	for i, a := range achievements {
		if a.ID == "" {
			addf("achievements[%d]: empty id", i)
			continue
		}
		if _, dup := achIDs[a.ID]; dup {
			addf("achievement %q: duplicate id", a.ID)
		}
		achIDs[a.ID] = struct{}{}
		if a.Points < 0 {
			addf("achievement %q: negative points", a.ID)
		}
		probs = append(probs, conditionProblems(a, roomIDs)...)
	}

	return probs
}

func conditionProblems(a quest.Achievement, roomIDs map[string]struct{}) []string {
	var probs []string
	addf := func(format string, args ...any) {
		probs = append(probs, fmt.Sprintf("achievement %q: "+format, append([]any{a.ID}, args...)...))
	}

	c := a.Condition
	switch c.Kind {
	case quest.CondCorrectAnswers, quest.CondTotalQuestions, quest.CondRoomsVisited,
		quest.CondQuickAnswers, quest.CondConsecutiveCorrect, quest.CondComebackCorrect:
		if c.Value < 1 {
			addf("condition %q needs value >= 1", c.Kind)
		}
	case quest.CondAccuracyWithMinimum:
		if c.Accuracy <= 0 || c.Accuracy > 1 {
			addf("condition accuracy must be in (0,1], got %v", c.Accuracy)
		}
		if c.MinQuestions < 1 {
			addf("condition needs min_questions >= 1")
		}
	case quest.CondCompletionTime:
		if c.Seconds <= 0 {
			addf("condition %q needs seconds > 0", c.Kind)
		}
	case quest.CondSpecificRoomVisited:
		if _, ok := roomIDs[c.Room]; !ok {
			addf("condition room %q does not exist", c.Room)
		}
	case quest.CondAllRoomsVisited, quest.CondGameCompleted, quest.CondGameCompletedPerfect:
		// No parameters.
	default:
		addf("unknown condition kind %q", c.Kind)
	}
	return probs
}

// unreachableRooms walks the connection graph from the start room and
// returns the IDs it never reaches, in authoring order.
func unreachableRooms(rooms []quest.Room) []string {
	byID := make(map[string]quest.Room, len(rooms))
	var start string
	for _, r := range rooms {
		byID[r.ID] = r
		if r.Start {
			start = r.ID
		}
	}

	seen := map[string]struct{}{start: {}}
	frontier := []string{start}
	for len(frontier) > 0 {
		id := frontier[0]
		frontier = frontier[1:]
		for _, conn := range byID[id].Connections {
			if _, ok := seen[conn]; ok {
				continue
			}
			if _, ok := byID[conn]; !ok {
				continue
			}
			seen[conn] = struct{}{}
			frontier = append(frontier, conn)
		}
	}

	var out []string
	for _, r := range rooms {
		if _, ok := seen[r.ID]; !ok {
			out = append(out, r.ID)
		}
	}
	return out
}
