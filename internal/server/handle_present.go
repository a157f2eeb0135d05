package server

import (
	"net/http"

	"github.com/questlabs/roomquest/internal/event"
	"github.com/questlabs/roomquest/internal/game"
)

type PresentRequest struct {
	QuestionID string `json:"questionId,omitempty"`
	Category   string `json:"category,omitempty"`
}

type PresentResponse struct {
	Question *event.QuestionPresented `json:"question"`
}

func handlePresent(sess *game.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PresentRequest
		if r.ContentLength != 0 {
			if err := readJSON(r, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}

		presented, err := sess.Engine.Present(req.QuestionID, req.Category)
		if err != nil {
			writeGameError(w, err)
			return
		}
		if presented == nil {
			// An answer is being resolved right now; the client should wait
			// for the resolution event before asking for the next question.
			writeError(w, http.StatusConflict, "answer resolution in progress")
			return
		}

		writeJSON(w, http.StatusOK, PresentResponse{Question: presented})
	}
}
