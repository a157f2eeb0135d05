package server

import (
	"encoding/json"
	"net/http"

	"github.com/questlabs/roomquest/internal/quest"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeGameError maps a rules-engine error onto an HTTP status: unknown
// entities are 404s, rejected transitions are 409s, anything else is a 500.
func writeGameError(w http.ResponseWriter, err error) {
	kind := quest.ErrorKind(err)
	status := http.StatusInternalServerError
	switch kind {
	case "invalid_room", "unknown_question", "unknown_category":
		status = http.StatusNotFound
	case "room_locked", "already_answered", "no_active_question", "no_questions_available":
		status = http.StatusConflict
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Kind: kind})
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
