package server

import (
	"net/http"

	"github.com/questlabs/roomquest/internal/game"
	"github.com/questlabs/roomquest/internal/progress"
)

type MoveRequest struct {
	RoomID string `json:"roomId"`
}

type MoveResponse struct {
	Progress progress.Snapshot `json:"progress"`
}

func handleMove(sess *game.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MoveRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.RoomID == "" {
			writeError(w, http.StatusBadRequest, "roomId is required")
			return
		}

		if err := sess.Tracker.MoveToRoom(req.RoomID); err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, MoveResponse{Progress: sess.Tracker.Snapshot()})
	}
}
