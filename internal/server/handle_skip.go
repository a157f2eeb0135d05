package server

import (
	"net/http"

	"github.com/questlabs/roomquest/internal/game"
)

type SkipResponse struct {
	Skipped bool `json:"skipped"`
	Score   int  `json:"score"`
}

func handleSkip(sess *game.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skipped := sess.Engine.Skip()
		writeJSON(w, http.StatusOK, SkipResponse{
			Skipped: skipped,
			Score:   sess.Tracker.Snapshot().Score,
		})
	}
}
