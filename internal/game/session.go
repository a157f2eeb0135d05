// Package game wires one playing session: the event bus, the progress
// tracker, the quiz engine, and the achievement evaluator, constructed in
// dependency order with no package-level state.
package game

import (
	"context"
	"log/slog"

	"github.com/questlabs/roomquest/internal/achievements"
	"github.com/questlabs/roomquest/internal/catalog"
	"github.com/questlabs/roomquest/internal/event"
	"github.com/questlabs/roomquest/internal/kvstore"
	"github.com/questlabs/roomquest/internal/progress"
	"github.com/questlabs/roomquest/internal/quiz"
)

type Session struct {
	Catalog      *catalog.Catalog
	Bus          *event.Bus
	Tracker      *progress.Tracker
	Engine       *quiz.Engine
	Achievements *achievements.Evaluator
}

// New builds a session against the given world and store. Persisted
// achievements are restored immediately; game progress is only restored by
// an explicit Load.
func New(ctx context.Context, cat *catalog.Catalog, store *kvstore.Store, logger *slog.Logger, engineOpts ...quiz.Option) *Session {
	bus := event.NewBus()
	tracker := progress.New(cat, bus, store, logger)
	engine := quiz.New(cat, bus, tracker, logger, engineOpts...)
	evaluator := achievements.New(cat, bus, store, logger)

	evaluator.Restore(ctx)
	evaluator.PrimeVisited(tracker.Snapshot().VisitedRooms)

	return &Session{
		Catalog:      cat,
		Bus:          bus,
		Tracker:      tracker,
		Engine:       engine,
		Achievements: evaluator,
	}
}

// Load replaces game progress with the saved snapshot. On success any
// active question is cancelled (it referred to the discarded state) and the
// restored visited rooms are folded into the session statistics.
func (s *Session) Load(ctx context.Context) bool {
	if !s.Tracker.Load(ctx) {
		return false
	}
	s.Engine.CancelActive()
	s.Achievements.PrimeVisited(s.Tracker.Snapshot().VisitedRooms)
	return true
}

// Reset starts the game over: cancels any active question, reinitializes
// progress, and zeroes the session statistics. Achievement unlocks survive;
// ResetAll on the evaluator is the only thing that clears them.
func (s *Session) Reset(ctx context.Context) {
	s.Engine.CancelActive()
	s.Tracker.Reset(ctx)
	s.Achievements.ResetSession(s.Tracker.Snapshot().VisitedRooms)
}

// Close releases the engine countdown and detaches the evaluator.
func (s *Session) Close() {
	s.Engine.Close()
	s.Achievements.Close()
}
