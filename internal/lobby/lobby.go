// Package lobby runs one actor per active room, routing presence events
// between the room's two participants. All routing decisions happen inside
// the loop goroutine; the rest of the server talks to it via the inbox.
package lobby

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/YM-Solutions-Official/leetcompete-client/internal/battle"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/presence"
)

type Msg interface{ isLobbyMsg() }

// Join registers a participant's outbox. The joiner immediately learns of any
// already-present peer so presence can be re-observed after a page reload.
type Join struct {
	Identity presence.Identity
	Outbox   chan presence.Event
}

func (Join) isLobbyMsg() {}

// Leave is an explicit departure (the leave-room event).
type Leave struct{ UserID string }

func (Leave) isLobbyMsg() {}

// Disconnect is an unclean departure (connection dropped).
type Disconnect struct{ UserID string }

func (Disconnect) isLobbyMsg() {}

// FromClient carries an event emitted by a connected participant.
type FromClient struct {
	From  string
	Event presence.Event
}

func (FromClient) isLobbyMsg() {}

// Cancel is the HTTP cancellation path; only the host may cancel.
type Cancel struct{ By string }

func (Cancel) isLobbyMsg() {}

type GetView struct{ Reply chan View }

func (GetView) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

// View reflects internal state without data races; used by tests and the
// hub's janitor.
type View struct {
	NumClients int
	Started    bool
	StartTime  int64
	Cancelled  bool
	LastActive time.Time
}

// Config is the room record fixed at creation.
type Config struct {
	RoomID   string
	Host     battle.Participant
	Problems []battle.Problem
	Metadata battle.Metadata
}

type Lobby struct {
	inbox      chan Msg
	cfg        Config
	clients    map[string]chan presence.Event
	idents     map[string]presence.Identity
	started    bool
	startTime  int64
	cancelled  bool
	lastActive time.Time
	log        *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewLobby(parent context.Context, cfg Config, log *zap.Logger) *Lobby {
	ctx, cancel := context.WithCancel(parent)
	l := &Lobby{
		inbox:      make(chan Msg, 64),
		cfg:        cfg,
		clients:    make(map[string]chan presence.Event),
		idents:     make(map[string]presence.Identity),
		lastActive: time.Now(),
		log:        log.With(zap.String("room", cfg.RoomID)),
		ctx:        ctx,
		cancel:     cancel,
	}
	go l.loop()
	return l
}

func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

func (l *Lobby) Config() Config { return l.cfg }

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			// View queries do not count as activity or the janitor's own
			// probe would keep an idle lobby alive forever.
			if _, probe := m.(GetView); !probe {
				l.lastActive = time.Now()
			}
			switch msg := m.(type) {
			case Join:
				l.handleJoin(msg)

			case Leave:
				l.unregister(msg.UserID, presence.EvtOpponentLeft)

			case Disconnect:
				l.unregister(msg.UserID, presence.EvtOpponentDisconnected)

			case FromClient:
				l.handleFromClient(msg)

			case Cancel:
				if msg.By != l.cfg.Host.UserID {
					l.log.Warn("cancel rejected, not host", zap.String("user", msg.By))
					break
				}
				l.doCancel()

			case GetView:
				msg.Reply <- View{
					NumClients: len(l.clients),
					Started:    l.started,
					StartTime:  l.startTime,
					Cancelled:  l.cancelled,
					LastActive: l.lastActive,
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) handleJoin(msg Join) {
	if l.cancelled {
		// Tell the joiner the room is dead instead of letting them wait in it.
		select {
		case msg.Outbox <- presence.Event{Type: presence.EvtRoomCancelled, RoomID: l.cfg.RoomID}:
		default:
		}
		close(msg.Outbox)
		return
	}
	if _, rejoin := l.clients[msg.Identity.UserID]; !rejoin && len(l.clients) >= 2 {
		l.log.Warn("room full, rejecting join", zap.String("user", msg.Identity.UserID))
		close(msg.Outbox)
		return
	}
	if old, ok := l.clients[msg.Identity.UserID]; ok && old != msg.Outbox {
		close(old) // stale connection from a reload
	}
	l.clients[msg.Identity.UserID] = msg.Outbox
	l.idents[msg.Identity.UserID] = msg.Identity

	// Tell the joiner about the already-present peer, and the peer about the
	// joiner. Duplicate joins are deduped client-side.
	for id := range l.clients {
		if id == msg.Identity.UserID {
			continue
		}
		peer := l.idents[id]
		l.send(msg.Identity.UserID, presence.Event{
			Type:     presence.EvtOpponentJoined,
			RoomID:   l.cfg.RoomID,
			UserID:   peer.UserID,
			Name:     peer.Name,
			PhotoURL: peer.PhotoURL,
		})
		l.send(id, presence.Event{
			Type:     presence.EvtOpponentJoined,
			RoomID:   l.cfg.RoomID,
			UserID:   msg.Identity.UserID,
			Name:     msg.Identity.Name,
			PhotoURL: msg.Identity.PhotoURL,
		})
	}
}

func (l *Lobby) handleFromClient(msg FromClient) {
	switch msg.Event.Type {
	case presence.EvtStartMatch:
		if msg.From != l.cfg.Host.UserID {
			l.log.Warn("start-match rejected, not host", zap.String("user", msg.From))
			return
		}
		if l.started || l.cancelled {
			return
		}
		l.started = true
		l.startTime = time.Now().UnixMilli()
		// Broadcast to everyone including the sender: both clients navigate
		// off the same received signal, never off the emit call site.
		started := presence.Event{
			Type:      presence.EvtMatchStarted,
			RoomID:    l.cfg.RoomID,
			StartTime: l.startTime,
		}
		for id := range l.clients {
			l.send(id, started)
		}

	case presence.EvtCancelRoom:
		if msg.From != l.cfg.Host.UserID {
			l.log.Warn("cancel-room rejected, not host", zap.String("user", msg.From))
			return
		}
		l.doCancel()

	case presence.EvtLeaveRoom:
		l.unregister(msg.From, presence.EvtOpponentLeft)

	case presence.EvtSubmissionResult:
		if msg.Event.Result == nil {
			return
		}
		for id := range l.clients {
			typ := presence.EvtOpponentSubmitted
			if id == msg.From {
				typ = presence.EvtMySubmission
			}
			l.send(id, presence.Event{
				Type:      typ,
				RoomID:    l.cfg.RoomID,
				UserID:    msg.From,
				ProblemID: msg.Event.ProblemID,
				Result:    msg.Event.Result,
			})
		}

	default:
		l.log.Debug("ignoring event", zap.String("type", msg.Event.Type))
	}
}

// doCancel notifies everyone but the host and marks the lobby dead. Clients
// stay attached until they disconnect so the notice can still be delivered;
// the hub's janitor removes cancelled lobbies.
func (l *Lobby) doCancel() {
	if l.cancelled {
		return
	}
	l.cancelled = true
	for id := range l.clients {
		if id == l.cfg.Host.UserID {
			continue
		}
		l.send(id, presence.Event{Type: presence.EvtRoomCancelled, RoomID: l.cfg.RoomID})
	}
}

func (l *Lobby) unregister(userID, notice string) {
	ch, ok := l.clients[userID]
	if !ok {
		return
	}
	close(ch)
	delete(l.clients, userID)
	delete(l.idents, userID)
	for id := range l.clients {
		l.send(id, presence.Event{Type: notice, RoomID: l.cfg.RoomID, UserID: userID})
	}
}

func (l *Lobby) send(userID string, ev presence.Event) {
	ch, ok := l.clients[userID]
	if !ok {
		return
	}
	select {
	case ch <- ev:
	default:
		// Slow or wedged client - drop them.
		close(ch)
		delete(l.clients, userID)
		delete(l.idents, userID)
	}
}

func (l *Lobby) shutdown() {
	for id, ch := range l.clients {
		close(ch)
		delete(l.clients, id)
	}
	l.cancel()
}
