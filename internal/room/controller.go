// Package room drives the pre-battle waiting screen for both the host and
// the guest: announce presence, reconcile peer events against the session
// store, and hand both tabs into the battle screen off the same start signal.
package room

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/YM-Solutions-Official/leetcompete-client/internal/battle"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/presence"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/session"
)

var ErrMissingRoom = errors.New("no room id: create or join a room first")
var ErrMissingIdentity = errors.New("missing user identity")

const defaultStartDelay = 500 * time.Millisecond

// Canceller is the backend deletion call made before a host cancellation is
// broadcast to the peer.
type Canceller interface {
	CancelRoom(ctx context.Context, roomID, hostID string) error
}

// Seed is the navigation payload carried into the waiting screen after a
// room is created or joined. When absent, the controller falls back to the
// persisted session.
type Seed struct {
	RoomID   string
	Problems []battle.Problem
	Metadata battle.Metadata
	Host     battle.Participant
	IsHost   bool
}

type Config struct {
	Store     *session.Store
	Channel   presence.Channel
	API       Canceller
	Self      battle.Participant
	Navigator battle.Navigator
	Notifier  battle.Notifier
	Logger    *zap.Logger
	// StartDelay paces the transition into the battle screen so the UI can
	// show its starting state; it is perceptual, not a correctness knob.
	StartDelay time.Duration
}

type Controller struct {
	cfg    Config
	roomID string
	// torn flips when the room is left or cancelled. Events still in flight
	// after teardown are discarded instead of being folded into the freshly
	// reset session.
	torn atomic.Bool
}

func New(cfg Config) *Controller {
	if cfg.StartDelay == 0 {
		cfg.StartDelay = defaultStartDelay
	}
	return &Controller{cfg: cfg}
}

// NormalizeRoomID trims and uppercases a room code the way users type them.
func NormalizeRoomID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Run seeds the session, announces presence and consumes peer events until
// the room reaches a terminal state or ctx is cancelled. A missing room id or
// identity is a hard stop: no presence is ever broadcast into an undefined
// room. The channel is closed on return so stale events cannot mutate a
// torn-down session.
func (c *Controller) Run(ctx context.Context, seed *Seed) error {
	if c.cfg.Self.UserID == "" {
		return ErrMissingIdentity
	}

	if seed != nil && seed.RoomID != "" && len(seed.Problems) > 0 {
		roomID := NormalizeRoomID(seed.RoomID)
		c.cfg.Store.Update(func(s *battle.Session) {
			s.RoomID = roomID
			s.Problems = seed.Problems
			s.Metadata = seed.Metadata
			s.Host = seed.Host
			s.IsHost = seed.IsHost
		})
	}

	snap := c.cfg.Store.Snapshot()
	if snap.RoomID == "" {
		return ErrMissingRoom
	}
	c.roomID = snap.RoomID

	defer c.cfg.Channel.Close()

	join := presence.Event{
		Type:     presence.EvtJoinRoom,
		RoomID:   c.roomID,
		UserID:   c.cfg.Self.UserID,
		Name:     c.cfg.Self.Name,
		PhotoURL: c.cfg.Self.PhotoURL,
	}
	if err := c.cfg.Channel.Emit(ctx, join); err != nil {
		return err
	}
	c.cfg.Logger.Info("joined room", zap.String("room", c.roomID), zap.Bool("host", snap.IsHost))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-c.cfg.Channel.Events():
			if !ok {
				return nil
			}
			if c.dispatch(ctx, ev) {
				return nil
			}
		}
	}
}

// dispatch folds one event into the session, reading state fresh at handling
// time rather than from anything captured earlier. Returns true when the
// waiting room is done.
func (c *Controller) dispatch(ctx context.Context, ev presence.Event) (terminal bool) {
	if c.torn.Load() {
		return true
	}
	snap := c.cfg.Store.Snapshot()
	effects, next, err := battle.Apply(snap, ev)
	if err != nil {
		if errors.Is(err, battle.ErrUnhandledEvent) {
			c.cfg.Logger.Debug("ignoring event", zap.String("type", ev.Type))
			return false
		}
		c.cfg.Logger.Warn("event handling failed", zap.String("type", ev.Type), zap.Error(err))
		return false
	}
	c.cfg.Store.Replace(next)

	for _, eff := range effects {
		switch eff.Type {
		case battle.EffectNotify:
			c.cfg.Notifier.Notify(eff.Level, eff.Message)

		case battle.EffectReset:
			c.cfg.Store.ResetSession()

		case battle.EffectNavigateMenu:
			c.cfg.Navigator.GoToBattleMenu()
			terminal = true

		case battle.EffectNavigateProblem:
			// Small fixed delay so both players land together after the
			// shared signal.
			select {
			case <-time.After(c.cfg.StartDelay):
			case <-ctx.Done():
				return true
			}
			c.cfg.Navigator.GoToProblem(eff.ProblemID)
			terminal = true
		}
	}
	return terminal
}

// Start broadcasts the start signal. Host-only, and rejected locally before
// any emit when the opponent is absent or the problem set is empty. The host
// does not navigate here: navigation happens when its own broadcast comes
// back through dispatch, the same path the guest takes.
func (c *Controller) Start(ctx context.Context) error {
	snap := c.cfg.Store.Snapshot()
	if !snap.IsHost {
		return battle.ErrNotHost
	}
	if len(snap.Problems) == 0 {
		c.cfg.Notifier.Notify(battle.LevelError, "No problems available for this battle")
		return battle.ErrNoProblems
	}
	if !snap.OpponentJoined {
		c.cfg.Notifier.Notify(battle.LevelError, "Wait for opponent to join first")
		return battle.ErrNoOpponent
	}

	return c.cfg.Channel.Emit(ctx, presence.Event{Type: presence.EvtStartMatch, RoomID: c.roomID})
}

// Cancel tears the room down host-side: backend deletion first, then the
// peer broadcast, then local leave. A failed deletion leaves the view as it
// was so the action can be retried.
func (c *Controller) Cancel(ctx context.Context) error {
	snap := c.cfg.Store.Snapshot()
	if !snap.IsHost {
		return battle.ErrNotHost
	}

	if err := c.cfg.API.CancelRoom(ctx, c.roomID, c.cfg.Self.UserID); err != nil {
		c.cfg.Logger.Error("cancel room", zap.Error(err))
		c.cfg.Notifier.Notify(battle.LevelError, "Failed to cancel room")
		return err
	}

	if err := c.cfg.Channel.Emit(ctx, presence.Event{Type: presence.EvtCancelRoom, RoomID: c.roomID}); err != nil {
		c.cfg.Logger.Warn("cancel broadcast failed", zap.Error(err))
	}
	c.leaveLocally(ctx, "Room cancelled successfully", battle.LevelSuccess)
	return nil
}

// Leave departs unilaterally: notify the peer, reset the session, navigate
// back to room selection.
func (c *Controller) Leave(ctx context.Context) error {
	c.leaveLocally(ctx, "You left the room", battle.LevelInfo)
	return nil
}

func (c *Controller) leaveLocally(ctx context.Context, message string, level battle.Level) {
	// Unsubscribe before touching state: once torn, the event loop drops
	// anything still buffered on the channel.
	c.torn.Store(true)
	leave := presence.Event{Type: presence.EvtLeaveRoom, RoomID: c.roomID, UserID: c.cfg.Self.UserID}
	if err := c.cfg.Channel.Emit(ctx, leave); err != nil {
		c.cfg.Logger.Warn("leave broadcast failed", zap.Error(err))
	}
	c.cfg.Notifier.Notify(level, message)
	c.cfg.Store.ResetSession()
	c.cfg.Navigator.GoToBattleMenu()
}
