package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	"github.com/questlabs/roomquest/internal/game"
)

// handleWSEvents pushes the same event stream as the SSE endpoint over a
// WebSocket, one JSON envelope per text message. The read side is only used
// to detect the peer going away.
func handleWSEvents(logger *slog.Logger, sess *game.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx := conn.CloseRead(r.Context())

		sub := sess.Bus.Subscribe(eventStreamBuffer, parseKinds(r.URL.Query().Get("kinds"))...)
		defer sub.Close()

		for {
			select {
			case <-ctx.Done():
				logger.Debug("websocket closed", "reason", ctx.Err())
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
				wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
				err = conn.Write(wctx, websocket.MessageText, data)
				cancel()
				if err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}
}
