package lobby

import (
	"context"

	"github.com/YM-Solutions-Official/leetcompete-client/internal/presence"
)

// localChannel bridges a presence.Channel directly onto a lobby actor,
// bypassing the websocket transport. Tests drive two participants against
// one lobby through it.
type localChannel struct {
	lb  *Lobby
	id  presence.Identity
	out chan presence.Event
}

// Attach returns an in-process presence channel for one participant.
func Attach(lb *Lobby, id presence.Identity) presence.Channel {
	return &localChannel{
		lb:  lb,
		id:  id,
		out: make(chan presence.Event, 16),
	}
}

func (c *localChannel) Emit(_ context.Context, ev presence.Event) error {
	if ev.Type == presence.EvtJoinRoom {
		ident := presence.Identity{UserID: ev.UserID, Name: ev.Name, PhotoURL: ev.PhotoURL}
		if ident.UserID == "" {
			ident = c.id
		}
		c.lb.Inbox() <- Join{Identity: ident, Outbox: c.out}
		return nil
	}
	c.lb.Inbox() <- FromClient{From: c.id.UserID, Event: ev}
	return nil
}

func (c *localChannel) Events() <-chan presence.Event { return c.out }

// Close detaches from the lobby. The lobby closes the outbox when it
// unregisters the participant; a participant that already left is a no-op.
func (c *localChannel) Close() error {
	c.lb.Inbox() <- Disconnect{UserID: c.id.UserID}
	return nil
}
