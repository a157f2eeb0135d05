package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "RoomQuest API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the RoomQuest exploration quiz.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/world
	getWorld, _ := r.NewOperationContext(http.MethodGet, "/api/world")
	getWorld.SetSummary("World catalog")
	getWorld.SetDescription("Returns all rooms and the question catalog without answer keys.")
	getWorld.AddRespStructure(WorldResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getWorld)

	// GET /api/game/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/game/state")
	getState.SetSummary("Get game state")
	getState.SetDescription("Returns the progress snapshot, the current room and the active question, if any.")
	getState.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getState)

	// POST /api/game/move
	postMove, _ := r.NewOperationContext(http.MethodPost, "/api/game/move")
	postMove.SetSummary("Move to a room")
	postMove.SetDescription("Moves the player to a connected, unlocked room.")
	postMove.AddReqStructure(MoveRequest{})
	postMove.AddRespStructure(MoveResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postMove.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postMove.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postMove.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postMove)

	// POST /api/game/save
	postSave, _ := r.NewOperationContext(http.MethodPost, "/api/game/save")
	postSave.SetSummary("Save progress")
	postSave.SetDescription("Persists the progress snapshot. Failure is reported in the body, not as an HTTP error.")
	postSave.AddRespStructure(SaveResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postSave)

	// POST /api/game/load
	postLoad, _ := r.NewOperationContext(http.MethodPost, "/api/game/load")
	postLoad.SetSummary("Load progress")
	postLoad.SetDescription("Restores the last saved snapshot. A missing or invalid save leaves the game untouched.")
	postLoad.AddRespStructure(LoadResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postLoad)

	// POST /api/game/reset
	postReset, _ := r.NewOperationContext(http.MethodPost, "/api/game/reset")
	postReset.SetSummary("Reset game")
	postReset.SetDescription("Starts a fresh session and deletes the saved snapshot. Achievements are kept.")
	postReset.AddRespStructure(ResetResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postReset)

	// GET /api/game/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/game/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of game events. Filter with ?kinds=room_changed,answer_resolved.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// POST /api/quiz/present
	postPresent, _ := r.NewOperationContext(http.MethodPost, "/api/quiz/present")
	postPresent.SetSummary("Present a question")
	postPresent.SetDescription("Draws a question by id, category or the current room's affinity. Replaces any active question.")
	postPresent.AddReqStructure(PresentRequest{})
	postPresent.AddRespStructure(PresentResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postPresent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postPresent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postPresent)

	// POST /api/quiz/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/quiz/answer")
	postAnswer.SetSummary("Submit answer")
	postAnswer.SetDescription("Validates the selected answer for the active question and scores it.")
	postAnswer.AddReqStructure(AnswerRequest{})
	postAnswer.AddRespStructure(AnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAnswer)

	// POST /api/quiz/skip
	postSkip, _ := r.NewOperationContext(http.MethodPost, "/api/quiz/skip")
	postSkip.SetSummary("Skip question")
	postSkip.SetDescription("Skips the active question for a small penalty. A no-op without an active question.")
	postSkip.AddRespStructure(SkipResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postSkip)

	// GET /api/quiz/hint
	getHint, _ := r.NewOperationContext(http.MethodGet, "/api/quiz/hint")
	getHint.SetSummary("Get hint")
	getHint.SetDescription("Returns the active question's hint or a generic fallback.")
	getHint.AddRespStructure(HintResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getHint)

	// GET /api/achievements
	getAchievements, _ := r.NewOperationContext(http.MethodGet, "/api/achievements")
	getAchievements.SetSummary("List achievements")
	getAchievements.SetDescription("Returns all achievement definitions with unlock state and progress.")
	getAchievements.AddRespStructure(AchievementsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getAchievements)

	// POST /api/achievements/reset
	resetAchievements, _ := r.NewOperationContext(http.MethodPost, "/api/achievements/reset")
	resetAchievements.SetSummary("Reset achievements")
	resetAchievements.SetDescription("Clears unlocked achievements, progress and session statistics.")
	resetAchievements.AddRespStructure(AchievementsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(resetAchievements)

	// GET /ws/events
	getWSEvents, _ := r.NewOperationContext(http.MethodGet, "/ws/events")
	getWSEvents.SetSummary("WebSocket event stream")
	getWSEvents.SetDescription("Upgrades to a WebSocket that pushes game event envelopes as JSON text messages.")
	getWSEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWSEvents)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
