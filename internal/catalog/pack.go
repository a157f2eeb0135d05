package catalog

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/questlabs/roomquest/internal/quest"
)

// Pack is the TOML shape of an authored world file. Achievements are
// optional; a pack without them plays with the standard set.
type Pack struct {
	World        PackWorld         `toml:"world"`
	Rooms        []PackRoom        `toml:"rooms"`
	Questions    []PackQuestion    `toml:"questions"`
	Achievements []PackAchievement `toml:"achievements"`
}

type PackWorld struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

type PackRoom struct {
	ID          string   `toml:"id"`
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Connections []string `toml:"connections"`
	Category    string   `toml:"category"`
	Start       bool     `toml:"start"`
}

type PackQuestion struct {
	ID          string   `toml:"id"`
	Category    string   `toml:"category"`
	Difficulty  string   `toml:"difficulty"`
	Points      int      `toml:"points"`
	Prompt      string   `toml:"prompt"`
	Answers     []string `toml:"answers"`
	Correct     int      `toml:"correct"`
	Explanation string   `toml:"explanation"`
	Hint        string   `toml:"hint"`
}

type PackAchievement struct {
	ID          string        `toml:"id"`
	Name        string        `toml:"name"`
	Description string        `toml:"description"`
	Icon        string        `toml:"icon"`
	Points      int           `toml:"points"`
	Condition   PackCondition `toml:"condition"`
}

type PackCondition struct {
	Kind         string  `toml:"kind"`
	Value        int     `toml:"value"`
	Seconds      float64 `toml:"seconds"`
	Accuracy     float64 `toml:"accuracy"`
	MinQuestions int     `toml:"min_questions"`
	Room         string  `toml:"room"`
}

// ReadPack decodes a TOML world pack without validating it. Unlike an
// optional config file, a named pack that is missing is an error.
func ReadPack(path string) (*Pack, error) {
	var pack Pack
	if _, err := toml.DecodeFile(path, &pack); err != nil {
		return nil, fmt.Errorf("failed to decode world pack: %w", err)
	}
	return &pack, nil
}

// LoadPack reads and validates a TOML world pack.
func LoadPack(path string) (*Catalog, error) {
	pack, err := ReadPack(path)
	if err != nil {
		return nil, err
	}
	rooms, questions, achievements := pack.Content()
	c, err := New(rooms, questions, achievements)
	if err != nil {
		return nil, fmt.Errorf("world pack %s: %w", path, err)
	}
	return c, nil
}

// Content maps the TOML shapes onto domain types. A pack that defines no
// achievements gets the standard set, minus any entry tied to a room the
// pack does not have.
func (p Pack) Content() ([]quest.Room, []quest.Question, []quest.Achievement) {
	rooms := make([]quest.Room, 0, len(p.Rooms))
	for _, r := range p.Rooms {
		rooms = append(rooms, quest.Room{
			ID:               r.ID,
			Name:             r.Name,
			Description:      r.Description,
			Connections:      r.Connections,
			QuestionCategory: r.Category,
			Start:            r.Start,
		})
	}

	questions := make([]quest.Question, 0, len(p.Questions))
	for _, q := range p.Questions {
		questions = append(questions, quest.Question{
			ID:            q.ID,
			Category:      q.Category,
			Difficulty:    quest.Difficulty(q.Difficulty),
			Points:        q.Points,
			Prompt:        q.Prompt,
			Answers:       q.Answers,
			CorrectAnswer: q.Correct,
			Explanation:   q.Explanation,
			Hint:          q.Hint,
		})
	}

	if len(p.Achievements) == 0 {
		roomIDs := make(map[string]struct{}, len(rooms))
		for _, r := range rooms {
			roomIDs[r.ID] = struct{}{}
		}
		var standard []quest.Achievement
		for _, a := range DefaultAchievements() {
			if a.Condition.Kind == quest.CondSpecificRoomVisited {
				if _, ok := roomIDs[a.Condition.Room]; !ok {
					continue
				}
			}
			standard = append(standard, a)
		}
		return rooms, questions, standard
	}
	achievements := make([]quest.Achievement, 0, len(p.Achievements))
	for _, a := range p.Achievements {
		achievements = append(achievements, quest.Achievement{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Icon:        a.Icon,
			Points:      a.Points,
			Condition: quest.Condition{
				Kind:         quest.ConditionKind(a.Condition.Kind),
				Value:        a.Condition.Value,
				Seconds:      a.Condition.Seconds,
				Accuracy:     a.Condition.Accuracy,
				MinQuestions: a.Condition.MinQuestions,
				Room:         a.Condition.Room,
			},
		})
	}

	return rooms, questions, achievements
}
