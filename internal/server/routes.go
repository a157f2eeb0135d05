package server

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/questlabs/roomquest/internal/game"
)

func addRoutes(r chi.Router, logger *slog.Logger, sess *game.Session, db *sql.DB, spaDir string) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("RoomQuest API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db))
	r.Get("/ws/events", handleWSEvents(logger, sess))

	r.Route("/api", func(r chi.Router) {
		r.Get("/world", handleWorld(sess))

		r.Route("/game", func(r chi.Router) {
			r.Get("/state", handleGameState(sess))
			r.Post("/move", handleMove(sess))
			r.Post("/save", handleSave(sess))
			r.Post("/load", handleLoad(sess))
			r.Post("/reset", handleReset(sess))
			r.Get("/events", handleEvents(logger, sess))
		})

		r.Route("/quiz", func(r chi.Router) {
			r.Post("/present", handlePresent(sess))
			r.Post("/answer", handleAnswer(sess))
			r.Post("/skip", handleSkip(sess))
			r.Get("/hint", handleHint(sess))
		})

		r.Route("/achievements", func(r chi.Router) {
			r.Get("/", handleAchievements(sess))
			r.Post("/reset", handleAchievementsReset(sess))
		})
	})

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}
