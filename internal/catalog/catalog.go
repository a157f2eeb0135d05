// Package catalog holds the immutable world content a session plays
// against: the room graph, the question bank, and the achievement
// definitions. A Catalog is read-only after construction.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/questlabs/roomquest/internal/quest"
)

type Catalog struct {
	rooms        map[string]quest.Room
	roomOrder    []string
	questions    map[string]quest.Question
	questOrder   []string
	byCategory   map[string][]string
	achievements []quest.Achievement
	start        string
}

// New validates the world content and builds a catalog from it. The error
// lists every problem found, one per line.
func New(rooms []quest.Room, questions []quest.Question, achievements []quest.Achievement) (*Catalog, error) {
	if problems := Problems(rooms, questions, achievements); len(problems) > 0 {
		return nil, fmt.Errorf("invalid world:\n  %s", strings.Join(problems, "\n  "))
	}

	c := &Catalog{
		rooms:        make(map[string]quest.Room, len(rooms)),
		questions:    make(map[string]quest.Question, len(questions)),
		byCategory:   make(map[string][]string),
		achievements: achievements,
	}
	for _, r := range rooms {
		c.rooms[r.ID] = r
		c.roomOrder = append(c.roomOrder, r.ID)
		if r.Start {
			c.start = r.ID
		}
	}
	for _, q := range questions {
		c.questions[q.ID] = q
		c.questOrder = append(c.questOrder, q.ID)
		c.byCategory[q.Category] = append(c.byCategory[q.Category], q.ID)
	}
	return c, nil
}

func (c *Catalog) Room(id string) (quest.Room, bool) {
	r, ok := c.rooms[id]
	return r, ok
}

// Rooms returns every room in authoring order.
func (c *Catalog) Rooms() []quest.Room {
	out := make([]quest.Room, 0, len(c.roomOrder))
	for _, id := range c.roomOrder {
		out = append(out, c.rooms[id])
	}
	return out
}

func (c *Catalog) Question(id string) (quest.Question, bool) {
	q, ok := c.questions[id]
	return q, ok
}

// Questions returns every question in authoring order.
func (c *Catalog) Questions() []quest.Question {
	out := make([]quest.Question, 0, len(c.questOrder))
	for _, id := range c.questOrder {
		out = append(out, c.questions[id])
	}
	return out
}

// QuestionIDs returns question IDs in authoring order, optionally narrowed
// to one category.
func (c *Catalog) QuestionIDs(category string) []string {
	if category == "" {
		out := make([]string, len(c.questOrder))
		copy(out, c.questOrder)
		return out
	}
	out := make([]string, len(c.byCategory[category]))
	copy(out, c.byCategory[category])
	return out
}

func (c *Catalog) HasCategory(category string) bool {
	_, ok := c.byCategory[category]
	return ok
}

func (c *Catalog) Categories() []string {
	out := make([]string, 0, len(c.byCategory))
	for cat := range c.byCategory {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) StartRoom() quest.Room {
	return c.rooms[c.start]
}

func (c *Catalog) RoomCount() int     { return len(c.rooms) }
func (c *Catalog) QuestionCount() int { return len(c.questions) }

func (c *Catalog) Achievements() []quest.Achievement {
	out := make([]quest.Achievement, len(c.achievements))
	copy(out, c.achievements)
	return out
}
