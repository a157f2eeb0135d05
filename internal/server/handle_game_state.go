package server

import (
	"net/http"

	"github.com/questlabs/roomquest/internal/event"
	"github.com/questlabs/roomquest/internal/game"
	"github.com/questlabs/roomquest/internal/progress"
)

type RoomView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    string           `json:"category,omitempty"`
	Connections []ConnectionView `json:"connections"`
}

type ConnectionView struct {
	RoomID   string `json:"roomId"`
	Name     string `json:"name"`
	Unlocked bool   `json:"unlocked"`
	Visited  bool   `json:"visited"`
}

type GameStateResponse struct {
	Progress       progress.Snapshot        `json:"progress"`
	CurrentRoom    RoomView                 `json:"currentRoom"`
	ActiveQuestion *event.QuestionPresented `json:"activeQuestion"`
}

func handleGameState(sess *game.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := sess.Tracker.Snapshot()

		unlocked := make(map[string]bool, len(snap.UnlockedRooms))
		for _, id := range snap.UnlockedRooms {
			unlocked[id] = true
		}
		visited := make(map[string]bool, len(snap.VisitedRooms))
		for _, id := range snap.VisitedRooms {
			visited[id] = true
		}

		room, ok := sess.Catalog.Room(snap.CurrentRoomID)
		if !ok {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		view := RoomView{
			ID:          room.ID,
			Name:        room.Name,
			Description: room.Description,
			Category:    room.QuestionCategory,
			Connections: make([]ConnectionView, 0, len(room.Connections)),
		}
		for _, id := range room.Connections {
			conn, ok := sess.Catalog.Room(id)
			if !ok {
				continue
			}
			view.Connections = append(view.Connections, ConnectionView{
				RoomID:   conn.ID,
				Name:     conn.Name,
				Unlocked: unlocked[conn.ID],
				Visited:  visited[conn.ID],
			})
		}

		writeJSON(w, http.StatusOK, GameStateResponse{
			Progress:       snap,
			CurrentRoom:    view,
			ActiveQuestion: sess.Engine.Active(),
		})
	}
}
