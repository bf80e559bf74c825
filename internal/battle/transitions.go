package battle

import (
	"errors"
	"fmt"

	"github.com/YM-Solutions-Official/leetcompete-client/internal/presence"
)

var ErrUnhandledEvent = errors.New("unhandled event type")
var ErrNotHost = errors.New("only the host may do that")
var ErrNoOpponent = errors.New("opponent has not joined")
var ErrNoProblems = errors.New("no problems available")

type EffectType string

const (
	EffectNotify          EffectType = "Notify"
	EffectReset           EffectType = "Reset"
	EffectNavigateProblem EffectType = "NavigateProblem"
	EffectNavigateMenu    EffectType = "NavigateMenu"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Effect is a side effect requested by a transition. Transitions stay pure;
// the controller interprets effects against the store, navigator and notifier.
type Effect struct {
	Type      EffectType
	Level     Level
	Message   string
	ProblemID string
}

// Notifier surfaces transient user-visible messages (the toast layer).
type Notifier interface {
	Notify(level Level, message string)
}

// Navigator moves the embedding view between screens.
type Navigator interface {
	GoToProblem(problemID string)
	GoToBattleMenu()
}

// Apply folds one presence event into the session. It reads nothing but its
// arguments, so the waiting-room state machine is testable without a network.
func Apply(s Session, ev presence.Event) ([]Effect, Session, error) {
	next := s

	switch ev.Type {
	case presence.EvtOpponentJoined:
		// Duplicate join from the same peer is a no-op.
		if s.OpponentJoined && s.Opponent.UserID == ev.UserID {
			return nil, s, nil
		}
		name := ev.Name
		if name == "" {
			name = "Opponent"
		}
		next.Opponent = Participant{UserID: ev.UserID, Name: name, PhotoURL: ev.PhotoURL}
		next.OpponentJoined = true
		return []Effect{
			{Type: EffectNotify, Level: LevelSuccess, Message: fmt.Sprintf("%s joined the room!", name)},
		}, next, nil

	case presence.EvtOpponentLeft:
		next.Opponent = Participant{}
		next.OpponentJoined = false
		return []Effect{
			{Type: EffectNotify, Level: LevelWarning, Message: "Opponent has left the room"},
		}, next, nil

	case presence.EvtOpponentDisconnected:
		next.Opponent = Participant{}
		next.OpponentJoined = false
		return []Effect{
			{Type: EffectNotify, Level: LevelError, Message: "Opponent disconnected from the room"},
		}, next, nil

	case presence.EvtMatchStarted:
		if len(s.Problems) == 0 {
			return []Effect{
				{Type: EffectNotify, Level: LevelError, Message: "No problems available"},
			}, s, nil
		}
		next.StartTime = ev.StartTime
		next.CurrentProblemIndex = 0
		return []Effect{
			{Type: EffectNotify, Level: LevelSuccess, Message: "Battle is starting!"},
			{Type: EffectNavigateProblem, ProblemID: s.Problems[0].ID},
		}, next, nil

	case presence.EvtRoomCancelled:
		return []Effect{
			{Type: EffectNotify, Level: LevelError, Message: "Host has cancelled the room"},
			{Type: EffectReset},
			{Type: EffectNavigateMenu},
		}, s, nil

	default:
		return nil, s, ErrUnhandledEvent
	}
}
