// Package tracker maintains the in-battle feedback layer: a countdown derived
// from the shared start anchor and a per-side progress board folded from
// submission events. Authoritative scoring stays server-side.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/YM-Solutions-Official/leetcompete-client/internal/battle"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/presence"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/session"
)

type Config struct {
	Store    *session.Store
	Channel  presence.Channel
	SelfID   string
	Notifier battle.Notifier
	Logger   *zap.Logger
	// Interval overrides the one-second tick; tests shorten it.
	Interval time.Duration
	// Now overrides the clock source; tests pin it.
	Now func() time.Time
}

type Tracker struct {
	cfg   Config
	board *battle.Board

	mu    sync.Mutex
	clock string
}

func New(cfg Config) *Tracker {
	if cfg.Interval == 0 {
		cfg.Interval = time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	snap := cfg.Store.Snapshot()
	t := &Tracker{
		cfg:   cfg,
		board: battle.NewBoard(snap.Problems),
	}
	t.clock = battle.FormatClock(t.countdown(snap).Remaining(cfg.Now()))
	return t
}

func (t *Tracker) Board() *battle.Board { return t.board }

// Clock returns the current HH:MM:SS display.
func (t *Tracker) Clock() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clock
}

func (t *Tracker) countdown(s battle.Session) battle.Countdown {
	return battle.Countdown{
		StartMillis: s.StartTime,
		Duration:    time.Duration(s.Metadata.Duration) * time.Minute,
	}
}

// Run ticks the countdown and folds submission events until ctx is cancelled
// or the channel closes. The ticker is stopped on return; no orphaned timer
// fires into a destroyed view.
func (t *Tracker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.cfg.Interval)
	defer ticker.Stop()

	timesUp := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case now := <-ticker.C:
			if t.cfg.Now != nil {
				now = t.cfg.Now()
			}
			// Always rederived from the fixed end instant, never decremented,
			// so a zero tick can never be followed by a positive one.
			snap := t.cfg.Store.Snapshot()
			cd := t.countdown(snap)
			t.mu.Lock()
			t.clock = battle.FormatClock(cd.Remaining(now))
			t.mu.Unlock()
			if cd.Expired(now) && !timesUp {
				timesUp = true
				t.cfg.Notifier.Notify(battle.LevelError, "Time's up! Battle has ended.")
			}

		case ev, ok := <-t.cfg.Channel.Events():
			if !ok {
				return nil
			}
			t.handleEvent(ev)
		}
	}
}

func (t *Tracker) handleEvent(ev presence.Event) {
	switch ev.Type {
	case presence.EvtMySubmission, presence.EvtOpponentSubmitted:
	default:
		t.cfg.Logger.Debug("ignoring event", zap.String("type", ev.Type))
		return
	}
	if ev.Result == nil {
		return
	}

	side := battle.SideOpponent
	if ev.UserID == t.cfg.SelfID {
		side = battle.SideSelf
	}

	_, ok := t.board.Record(side, ev.ProblemID, ev.Result.AllPassed)
	if !ok {
		// Event for a problem outside the current set: drop it.
		t.cfg.Logger.Debug("submission for unknown problem", zap.String("problem", ev.ProblemID))
		return
	}

	switch {
	case side == battle.SideSelf && ev.Result.AllPassed:
		t.cfg.Notifier.Notify(battle.LevelSuccess, "All test cases passed!")
	case side == battle.SideSelf:
		t.cfg.Notifier.Notify(battle.LevelWarning,
			fmt.Sprintf("%d/%d passed", ev.Result.PassedTests, ev.Result.TotalTests))
	case ev.Result.AllPassed:
		t.cfg.Notifier.Notify(battle.LevelInfo, "Opponent solved a problem!")
	default:
		t.cfg.Notifier.Notify(battle.LevelInfo,
			fmt.Sprintf("Opponent passed %d/%d tests", ev.Result.PassedTests, ev.Result.TotalTests))
	}
}
