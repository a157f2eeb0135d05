package achievements

import (
	"time"

	"github.com/questlabs/roomquest/internal/quest"
)

// check evaluates one condition against the statistics snapshot. The second
// return is the display progress toward satisfaction, uncapped.
func check(c quest.Condition, s *stats, totalRooms int) (bool, int) {
	switch c.Kind {
	case quest.CondCorrectAnswers:
		return s.correct >= c.Value, s.correct
	case quest.CondTotalQuestions:
		return s.totalAnswered >= c.Value, s.totalAnswered
	case quest.CondRoomsVisited:
		return len(s.visited) >= c.Value, len(s.visited)
	case quest.CondQuickAnswers:
		return s.quick >= c.Value, s.quick
	case quest.CondConsecutiveCorrect:
		return s.maxStreak >= c.Value, s.maxStreak
	case quest.CondComebackCorrect:
		return comeback(s.recent, c.Value), min(s.wrongStreak, c.Value)
	case quest.CondAccuracyWithMinimum:
		ok := s.totalAnswered >= c.MinQuestions &&
			float64(s.correct)/float64(s.totalAnswered) >= c.Accuracy
		return ok, s.totalAnswered
	case quest.CondCompletionTime:
		ok := s.completed && s.completedElapsed <= time.Duration(c.Seconds*float64(time.Second))
		return ok, boolProgress(ok)
	case quest.CondAllRoomsVisited:
		return len(s.visited) >= totalRooms, len(s.visited)
	case quest.CondSpecificRoomVisited:
		_, ok := s.visited[c.Room]
		return ok, boolProgress(ok)
	case quest.CondGameCompleted:
		return s.completed, boolProgress(s.completed)
	case quest.CondGameCompletedPerfect:
		ok := s.completed && len(s.visited) >= totalRooms
		return ok, boolProgress(ok)
	default:
		return false, 0
	}
}

// maxProgress derives the display cap for a condition.
func maxProgress(c quest.Condition, totalRooms int) int {
	switch c.Kind {
	case quest.CondCorrectAnswers, quest.CondTotalQuestions, quest.CondRoomsVisited,
		quest.CondQuickAnswers, quest.CondConsecutiveCorrect, quest.CondComebackCorrect:
		return c.Value
	case quest.CondAccuracyWithMinimum:
		return c.MinQuestions
	case quest.CondAllRoomsVisited:
		return totalRooms
	default:
		return 1
	}
}

// comeback is satisfied when the most recent n+1 outcomes are exactly n
// wrong answers followed by one correct.
func comeback(recent []bool, n int) bool {
	if n < 1 || len(recent) < n+1 {
		return false
	}
	tail := recent[len(recent)-n-1:]
	if !tail[n] {
		return false
	}
	for _, correct := range tail[:n] {
		if correct {
			return false
		}
	}
	return true
}

func boolProgress(ok bool) int {
	if ok {
		return 1
	}
	return 0
}
