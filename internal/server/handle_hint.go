package server

import (
	"net/http"

	"github.com/questlabs/roomquest/internal/game"
)

type HintResponse struct {
	Hint string `json:"hint"`
}

func handleHint(sess *game.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HintResponse{Hint: sess.Engine.Hint()})
	}
}
