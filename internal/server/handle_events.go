package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/questlabs/roomquest/internal/event"
	"github.com/questlabs/roomquest/internal/game"
)

const eventStreamBuffer = 64

// handleEvents streams game events as Server-Sent Events. The SSE event name
// is the event kind, the data line carries the full envelope. An optional
// ?kinds=room_changed,answer_resolved query restricts the stream.
func handleEvents(logger *slog.Logger, sess *game.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		sub := sess.Bus.Subscribe(eventStreamBuffer, parseKinds(r.URL.Query().Get("kinds"))...)
		defer sub.Close()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case ev, ok := <-sub.Events():
				if !ok {
					return
				}
				data, err := json.Marshal(ev)
				if err != nil {
					logger.Error("encoding event", "kind", ev.Kind, "error", err)
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}

func parseKinds(raw string) []event.Kind {
	if raw == "" {
		return nil
	}
	var kinds []event.Kind
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			kinds = append(kinds, event.Kind(part))
		}
	}
	return kinds
}
