package hub

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/YM-Solutions-Official/leetcompete-client/internal/battle"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/lobby"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/presence"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewHub(ctx, zap.NewNop())
}

func createLobby(t *testing.T, h *Hub, code string) *lobby.Lobby {
	t.Helper()
	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- CreateLobby{
		Code: code,
		Cfg: lobby.Config{
			RoomID: code,
			Host:   battle.Participant{UserID: "u-host", Name: "Host"},
		},
		Reply: reply,
	}
	select {
	case lb := <-reply:
		return lb
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out creating lobby")
		return nil
	}
}

func getLobby(t *testing.T, h *Hub, code string) *lobby.Lobby {
	t.Helper()
	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- GetLobby{Code: code, Reply: reply}
	select {
	case lb := <-reply:
		return lb
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out looking up lobby")
		return nil
	}
}

func TestHub_CreateAndGet(t *testing.T) {
	h := startHub(t)

	created := createLobby(t, h, "ABCD1234")
	if created == nil {
		t.Fatalf("expected a lobby")
	}
	if got := getLobby(t, h, "ABCD1234"); got != created {
		t.Fatalf("lookup returned a different lobby")
	}
}

func TestHub_CreateIsIdempotentPerCode(t *testing.T) {
	h := startHub(t)

	first := createLobby(t, h, "ABCD1234")
	second := createLobby(t, h, "ABCD1234")
	if first != second {
		t.Fatalf("duplicate create must return the existing lobby")
	}
}

func TestHub_GetUnknownReturnsNil(t *testing.T) {
	h := startHub(t)
	if lb := getLobby(t, h, "NOPE0000"); lb != nil {
		t.Fatalf("expected nil for unknown code")
	}
}

func TestHub_Remove(t *testing.T) {
	h := startHub(t)
	createLobby(t, h, "ABCD1234")

	h.Inbox() <- RemoveLobby{Code: "ABCD1234"}

	if lb := getLobby(t, h, "ABCD1234"); lb != nil {
		t.Fatalf("lobby still present after removal")
	}
}

func TestHub_SweepRemovesCancelled(t *testing.T) {
	h := startHub(t)
	lb := createLobby(t, h, "ABCD1234")
	keep := createLobby(t, h, "KEEP0001")

	// Host joins and cancels; the lobby sticks around for notice delivery
	// until a sweep collects it.
	out := make(chan presence.Event, 16)
	lb.Inbox() <- lobby.Join{Identity: presence.Identity{UserID: "u-host"}, Outbox: out}
	lb.Inbox() <- lobby.Cancel{By: "u-host"}

	// Keep the other lobby active so only the cancelled one is swept.
	keepOut := make(chan presence.Event, 16)
	keep.Inbox() <- lobby.Join{Identity: presence.Identity{UserID: "u-host"}, Outbox: keepOut}

	h.Inbox() <- SweepIdle{IdleFor: time.Hour}

	if got := getLobby(t, h, "ABCD1234"); got != nil {
		t.Fatalf("cancelled lobby survived the sweep")
	}
	if got := getLobby(t, h, "KEEP0001"); got == nil {
		t.Fatalf("active lobby must survive the sweep")
	}
}

func TestHub_SweepKeepsRecentlyIdle(t *testing.T) {
	h := startHub(t)
	createLobby(t, h, "ABCD1234")

	// Empty but only just created; a generous idle window keeps it.
	h.Inbox() <- SweepIdle{IdleFor: time.Hour}

	if got := getLobby(t, h, "ABCD1234"); got == nil {
		t.Fatalf("recently created lobby must survive the sweep")
	}
}

func TestHub_SweepRemovesLongIdle(t *testing.T) {
	h := startHub(t)
	createLobby(t, h, "ABCD1234")

	// Zero idle window: an empty lobby is past the cutoff immediately.
	time.Sleep(10 * time.Millisecond)
	h.Inbox() <- SweepIdle{IdleFor: 0}

	if got := getLobby(t, h, "ABCD1234"); got != nil {
		t.Fatalf("idle empty lobby survived the sweep")
	}
}
