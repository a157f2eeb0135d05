package server

import (
	"net/http"

	"github.com/questlabs/roomquest/internal/event"
	"github.com/questlabs/roomquest/internal/game"
	"github.com/questlabs/roomquest/internal/progress"
)

type AnswerRequest struct {
	AnswerIndex int `json:"answerIndex"`
}

type AnswerResponse struct {
	Resolved   bool                  `json:"resolved"`
	Resolution *event.AnswerResolved `json:"resolution,omitempty"`
	Progress   *progress.Snapshot    `json:"progress,omitempty"`
}

func handleAnswer(sess *game.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resolution, err := sess.Engine.ValidateAnswer(req.AnswerIndex)
		if err != nil {
			writeGameError(w, err)
			return
		}
		if resolution == nil {
			// Another submission for this question is already being resolved.
			// This one is absorbed; the winner's outcome arrives as an event.
			writeJSON(w, http.StatusOK, AnswerResponse{Resolved: false})
			return
		}

		snap := sess.Tracker.Snapshot()
		writeJSON(w, http.StatusOK, AnswerResponse{
			Resolved:   true,
			Resolution: resolution,
			Progress:   &snap,
		})
	}
}
