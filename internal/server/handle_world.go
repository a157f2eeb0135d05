package server

import (
	"net/http"

	"github.com/questlabs/roomquest/internal/game"
)

type WorldRoom struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Connections []string `json:"connections"`
	Category    string   `json:"category,omitempty"`
	Start       bool     `json:"start,omitempty"`
}

// WorldQuestion is the catalog view of a question. The prompt, the answer
// options and the answer key are absent; those are only revealed through a
// presentation.
type WorldQuestion struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Points     int    `json:"points"`
}

type WorldResponse struct {
	StartRoom  string          `json:"startRoom"`
	Rooms      []WorldRoom     `json:"rooms"`
	Questions  []WorldQuestion `json:"questions"`
	Categories []string        `json:"categories"`
}

func handleWorld(sess *game.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat := sess.Catalog

		resp := WorldResponse{
			StartRoom:  cat.StartRoom().ID,
			Rooms:      make([]WorldRoom, 0, cat.RoomCount()),
			Questions:  make([]WorldQuestion, 0, cat.QuestionCount()),
			Categories: cat.Categories(),
		}
		for _, room := range cat.Rooms() {
			resp.Rooms = append(resp.Rooms, WorldRoom{
				ID:          room.ID,
				Name:        room.Name,
				Description: room.Description,
				Connections: room.Connections,
				Category:    room.QuestionCategory,
				Start:       room.Start,
			})
		}
		for _, q := range cat.Questions() {
			resp.Questions = append(resp.Questions, WorldQuestion{
				ID:         q.ID,
				Category:   q.Category,
				Difficulty: string(q.Difficulty),
				Points:     q.Points,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
