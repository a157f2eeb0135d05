package server

import (
	"net/http"

	"github.com/questlabs/roomquest/internal/game"
	"github.com/questlabs/roomquest/internal/progress"
)

type SaveResponse struct {
	Saved bool `json:"saved"`
}

type LoadResponse struct {
	Loaded   bool              `json:"loaded"`
	Progress progress.Snapshot `json:"progress"`
}

type ResetResponse struct {
	Progress progress.Snapshot `json:"progress"`
}

// Persistence is best-effort: a failed save or a missing/corrupt snapshot is
// reported as false, never as an HTTP error.
func handleSave(sess *game.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saved := sess.Tracker.Save(r.Context())
		writeJSON(w, http.StatusOK, SaveResponse{Saved: saved})
	}
}

func handleLoad(sess *game.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loaded := sess.Load(r.Context())
		writeJSON(w, http.StatusOK, LoadResponse{
			Loaded:   loaded,
			Progress: sess.Tracker.Snapshot(),
		})
	}
}

func handleReset(sess *game.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess.Reset(r.Context())
		writeJSON(w, http.StatusOK, ResetResponse{Progress: sess.Tracker.Snapshot()})
	}
}
