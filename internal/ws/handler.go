package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/YM-Solutions-Official/leetcompete-client/internal/hub"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/lobby"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/presence"
)

// Handler bridges one websocket connection onto a lobby. The client must
// announce itself with a join-room event before anything else is routed;
// events arriving before the announcement are dropped.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("room")
		if code == "" {
			http.Error(w, "missing room", http.StatusBadRequest)
			return
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
		lb := <-reply
		if lb == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connLog := log.With(zap.String("room", code), zap.String("conn", uuid.NewString()))

		out := make(chan presence.Event, 16)
		var userID string
		joined := false
		defer func() {
			if joined {
				lb.Inbox() <- lobby.Disconnect{UserID: userID}
			}
		}()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for ev := range out {
				payload, _ := json.Marshal(ev)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var ev presence.Event
			if err := json.Unmarshal(data, &ev); err != nil {
				connLog.Warn("bad frame", zap.Error(err))
				continue
			}

			if !joined {
				if ev.Type != presence.EvtJoinRoom || ev.UserID == "" {
					connLog.Warn("dropping pre-join event", zap.String("type", ev.Type))
					continue
				}
				userID = ev.UserID
				joined = true
				lb.Inbox() <- lobby.Join{
					Identity: presence.Identity{UserID: ev.UserID, Name: ev.Name, PhotoURL: ev.PhotoURL},
					Outbox:   out,
				}
				continue
			}

			lb.Inbox() <- lobby.FromClient{From: userID, Event: ev}
		}
	}
}
