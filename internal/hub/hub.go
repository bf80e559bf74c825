package hub

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/YM-Solutions-Official/leetcompete-client/internal/lobby"
)

type HubMsg interface{ isHubMsg() }

type CreateLobby struct {
	Code  string
	Cfg   lobby.Config
	Reply chan *lobby.Lobby
}

type GetLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

type RemoveLobby struct {
	Code string
}

// SweepIdle removes cancelled lobbies and lobbies idle for longer than
// IdleFor. Scheduled periodically by the server's janitor.
type SweepIdle struct {
	IdleFor time.Duration
}

type ShutdownHub struct{}

func (CreateLobby) isHubMsg() {}
func (GetLobby) isHubMsg()    {}
func (RemoveLobby) isHubMsg() {}
func (SweepIdle) isHubMsg()   {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox   chan HubMsg
	lobbies map[string]*lobby.Lobby
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*lobby.Lobby),
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateLobby:
				if lb := h.lobbies[msg.Code]; lb != nil {
					msg.Reply <- lb
					break
				}
				lb := lobby.NewLobby(h.ctx, msg.Cfg, h.log)
				h.lobbies[msg.Code] = lb
				msg.Reply <- lb

			case GetLobby:
				msg.Reply <- h.lobbies[msg.Code] // May be nil

			case RemoveLobby:
				if lb := h.lobbies[msg.Code]; lb != nil {
					lb.Inbox() <- lobby.Shutdown{}
					delete(h.lobbies, msg.Code)
				}

			case SweepIdle:
				h.sweep(msg.IdleFor)

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) sweep(idleFor time.Duration) {
	cutoff := time.Now().Add(-idleFor)
	for code, lb := range h.lobbies {
		reply := make(chan lobby.View, 1)
		lb.Inbox() <- lobby.GetView{Reply: reply}
		var v lobby.View
		select {
		case v = <-reply:
		case <-time.After(time.Second):
			continue // wedged lobby, try next sweep
		}
		if v.Cancelled || (v.NumClients == 0 && v.LastActive.Before(cutoff)) {
			h.log.Info("sweeping lobby", zap.String("room", code), zap.Bool("cancelled", v.Cancelled))
			lb.Inbox() <- lobby.Shutdown{}
			delete(h.lobbies, code)
		}
	}
}

func (h *Hub) shutdown() {
	for code, lb := range h.lobbies {
		lb.Inbox() <- lobby.Shutdown{}
		delete(h.lobbies, code)
	}
	h.cancel()
}
