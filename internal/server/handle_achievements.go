package server

import (
	"net/http"

	"github.com/questlabs/roomquest/internal/achievements"
	"github.com/questlabs/roomquest/internal/game"
)

type AchievementsResponse struct {
	Achievements []achievements.Status `json:"achievements"`
	TotalPoints  int                   `json:"totalPoints"`
	Unlocked     int                   `json:"unlocked"`
}

func handleAchievements(sess *game.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, AchievementsResponse{
			Achievements: sess.Achievements.Statuses(),
			TotalPoints:  sess.Achievements.TotalPoints(),
			Unlocked:     sess.Achievements.UnlockedCount(),
		})
	}
}

func handleAchievementsReset(sess *game.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess.Achievements.ResetAll(r.Context())
		writeJSON(w, http.StatusOK, AchievementsResponse{
			Achievements: sess.Achievements.Statuses(),
		})
	}
}
