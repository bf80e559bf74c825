package lobby

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/YM-Solutions-Official/leetcompete-client/internal/battle"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/presence"
)

func testConfig() Config {
	return Config{
		RoomID: "ABCD1234",
		Host:   battle.Participant{UserID: "u-host", Name: "Host"},
		Problems: []battle.Problem{
			{ID: "p1", Title: "One"},
			{ID: "p2", Title: "Two"},
		},
		Metadata: battle.Metadata{Duration: 30, TotalProblems: 2},
	}
}

func startLobby(t *testing.T) *Lobby {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewLobby(ctx, testConfig(), zap.NewNop())
}

func join(t *testing.T, lb *Lobby, userID, name string) chan presence.Event {
	t.Helper()
	out := make(chan presence.Event, 16)
	lb.Inbox() <- Join{Identity: presence.Identity{UserID: userID, Name: name}, Outbox: out}
	return out
}

// recvEvent waits for one event or fails the test.
func recvEvent(t *testing.T, ch chan presence.Event) presence.Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatalf("outbox closed while waiting for event")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
		return presence.Event{}
	}
}

// expectQuiet asserts no event arrives within the window.
func expectQuiet(t *testing.T, ch chan presence.Event) {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func expectClosed(t *testing.T, ch chan presence.Event) {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("expected closed outbox, got event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for outbox close")
	}
}

func view(t *testing.T, lb *Lobby) View {
	t.Helper()
	reply := make(chan View, 1)
	lb.Inbox() <- GetView{Reply: reply}
	select {
	case v := <-reply:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for view")
		return View{}
	}
}

func TestLobby_JoinCrossNotifies(t *testing.T) {
	lb := startLobby(t)

	hostOut := join(t, lb, "u-host", "Host")
	guestOut := join(t, lb, "u-guest", "Guest")

	// Host learns about the guest.
	ev := recvEvent(t, hostOut)
	if ev.Type != presence.EvtOpponentJoined || ev.UserID != "u-guest" || ev.Name != "Guest" {
		t.Fatalf("unexpected host notice: %+v", ev)
	}

	// Guest learns about the already-present host, name included.
	ev = recvEvent(t, guestOut)
	if ev.Type != presence.EvtOpponentJoined || ev.UserID != "u-host" || ev.Name != "Host" {
		t.Fatalf("unexpected guest notice: %+v", ev)
	}
}

func TestLobby_ThirdJoinRejected(t *testing.T) {
	lb := startLobby(t)

	join(t, lb, "u-host", "Host")
	join(t, lb, "u-guest", "Guest")
	third := join(t, lb, "u-third", "Intruder")

	expectClosed(t, third)
	if v := view(t, lb); v.NumClients != 2 {
		t.Fatalf("expected 2 clients, got %d", v.NumClients)
	}
}

func TestLobby_RejoinReplacesStaleConnection(t *testing.T) {
	lb := startLobby(t)

	stale := join(t, lb, "u-host", "Host")
	fresh := join(t, lb, "u-host", "Host")

	expectClosed(t, stale)

	if v := view(t, lb); v.NumClients != 1 {
		t.Fatalf("expected 1 client after rejoin, got %d", v.NumClients)
	}

	// Fresh connection still receives events.
	guestOut := join(t, lb, "u-guest", "Guest")
	ev := recvEvent(t, fresh)
	if ev.Type != presence.EvtOpponentJoined || ev.UserID != "u-guest" {
		t.Fatalf("fresh connection missed join notice: %+v", ev)
	}
	recvEvent(t, guestOut)
}

func TestLobby_StartSignalReachesBoth(t *testing.T) {
	lb := startLobby(t)

	hostOut := join(t, lb, "u-host", "Host")
	guestOut := join(t, lb, "u-guest", "Guest")
	recvEvent(t, hostOut)
	recvEvent(t, guestOut)

	before := time.Now().UnixMilli()
	lb.Inbox() <- FromClient{From: "u-host", Event: presence.Event{Type: presence.EvtStartMatch}}

	// Both participants, the sender included, get exactly one match-started
	// carrying the same lobby-stamped start time.
	hostEv := recvEvent(t, hostOut)
	guestEv := recvEvent(t, guestOut)
	for _, ev := range []presence.Event{hostEv, guestEv} {
		if ev.Type != presence.EvtMatchStarted {
			t.Fatalf("want match-started, got %+v", ev)
		}
		if ev.StartTime < before || ev.StartTime > time.Now().UnixMilli() {
			t.Fatalf("implausible start time %d", ev.StartTime)
		}
	}
	if hostEv.StartTime != guestEv.StartTime {
		t.Fatalf("start times diverge: %d vs %d", hostEv.StartTime, guestEv.StartTime)
	}

	// A duplicate start is swallowed.
	lb.Inbox() <- FromClient{From: "u-host", Event: presence.Event{Type: presence.EvtStartMatch}}
	expectQuiet(t, hostOut)
	expectQuiet(t, guestOut)
}

func TestLobby_StartFromGuestIgnored(t *testing.T) {
	lb := startLobby(t)

	hostOut := join(t, lb, "u-host", "Host")
	guestOut := join(t, lb, "u-guest", "Guest")
	recvEvent(t, hostOut)
	recvEvent(t, guestOut)

	lb.Inbox() <- FromClient{From: "u-guest", Event: presence.Event{Type: presence.EvtStartMatch}}

	expectQuiet(t, hostOut)
	expectQuiet(t, guestOut)
	if v := view(t, lb); v.Started {
		t.Fatalf("guest must not be able to start the match")
	}
}

func TestLobby_CancelNotifiesGuestOnly(t *testing.T) {
	lb := startLobby(t)

	hostOut := join(t, lb, "u-host", "Host")
	guestOut := join(t, lb, "u-guest", "Guest")
	recvEvent(t, hostOut)
	recvEvent(t, guestOut)

	lb.Inbox() <- FromClient{From: "u-host", Event: presence.Event{Type: presence.EvtCancelRoom}}

	ev := recvEvent(t, guestOut)
	if ev.Type != presence.EvtRoomCancelled {
		t.Fatalf("want room-cancelled, got %+v", ev)
	}
	expectQuiet(t, hostOut)
	if v := view(t, lb); !v.Cancelled {
		t.Fatalf("lobby not marked cancelled")
	}
}

func TestLobby_JoinAfterCancelGetsRoomCancelled(t *testing.T) {
	lb := startLobby(t)

	join(t, lb, "u-host", "Host")
	lb.Inbox() <- Cancel{By: "u-host"}

	// A guest joining the dead room is told so immediately instead of being
	// registered to wait forever.
	guestOut := join(t, lb, "u-guest", "Guest")
	ev := recvEvent(t, guestOut)
	if ev.Type != presence.EvtRoomCancelled {
		t.Fatalf("want room-cancelled, got %+v", ev)
	}
	expectClosed(t, guestOut)

	if v := view(t, lb); v.NumClients != 1 {
		t.Fatalf("cancelled lobby registered the joiner: %d clients", v.NumClients)
	}
}

func TestLobby_CancelFromGuestIgnored(t *testing.T) {
	lb := startLobby(t)

	hostOut := join(t, lb, "u-host", "Host")
	guestOut := join(t, lb, "u-guest", "Guest")
	recvEvent(t, hostOut)
	recvEvent(t, guestOut)

	lb.Inbox() <- Cancel{By: "u-guest"}

	expectQuiet(t, guestOut)
	if v := view(t, lb); v.Cancelled {
		t.Fatalf("guest cancellation must be rejected")
	}
}

func TestLobby_LeaveNotifiesPeer(t *testing.T) {
	lb := startLobby(t)

	hostOut := join(t, lb, "u-host", "Host")
	guestOut := join(t, lb, "u-guest", "Guest")
	recvEvent(t, hostOut)
	recvEvent(t, guestOut)

	lb.Inbox() <- FromClient{From: "u-guest", Event: presence.Event{Type: presence.EvtLeaveRoom}}

	ev := recvEvent(t, hostOut)
	if ev.Type != presence.EvtOpponentLeft || ev.UserID != "u-guest" {
		t.Fatalf("want opponent-left for guest, got %+v", ev)
	}
	expectClosed(t, guestOut)
}

func TestLobby_DisconnectNotifiesPeer(t *testing.T) {
	lb := startLobby(t)

	hostOut := join(t, lb, "u-host", "Host")
	guestOut := join(t, lb, "u-guest", "Guest")
	recvEvent(t, hostOut)
	recvEvent(t, guestOut)

	lb.Inbox() <- Disconnect{UserID: "u-guest"}

	ev := recvEvent(t, hostOut)
	if ev.Type != presence.EvtOpponentDisconnected || ev.UserID != "u-guest" {
		t.Fatalf("want opponent-disconnected for guest, got %+v", ev)
	}
}

func TestLobby_SubmissionRelay(t *testing.T) {
	lb := startLobby(t)

	hostOut := join(t, lb, "u-host", "Host")
	guestOut := join(t, lb, "u-guest", "Guest")
	recvEvent(t, hostOut)
	recvEvent(t, guestOut)

	result := &presence.SubmissionResult{AllPassed: false, PassedTests: 1, TotalTests: 3}
	lb.Inbox() <- FromClient{From: "u-guest", Event: presence.Event{
		Type:      presence.EvtSubmissionResult,
		ProblemID: "p1",
		Result:    result,
	}}

	// The submitter hears it back as my-submission, the peer as
	// opponent-submitted; both carry the counts.
	hostEv := recvEvent(t, hostOut)
	if hostEv.Type != presence.EvtOpponentSubmitted || hostEv.ProblemID != "p1" {
		t.Fatalf("unexpected peer relay: %+v", hostEv)
	}
	if hostEv.Result == nil || hostEv.Result.PassedTests != 1 || hostEv.Result.TotalTests != 3 {
		t.Fatalf("counts not relayed: %+v", hostEv.Result)
	}

	guestEv := recvEvent(t, guestOut)
	if guestEv.Type != presence.EvtMySubmission || guestEv.ProblemID != "p1" {
		t.Fatalf("unexpected self relay: %+v", guestEv)
	}
}

func TestAttach_RoundTrip(t *testing.T) {
	lb := startLobby(t)

	host := Attach(lb, presence.Identity{UserID: "u-host", Name: "Host"})
	guest := Attach(lb, presence.Identity{UserID: "u-guest", Name: "Guest"})
	ctx := context.Background()

	if err := host.Emit(ctx, presence.Event{Type: presence.EvtJoinRoom, UserID: "u-host", Name: "Host"}); err != nil {
		t.Fatalf("host join: %v", err)
	}
	if err := guest.Emit(ctx, presence.Event{Type: presence.EvtJoinRoom, UserID: "u-guest", Name: "Guest"}); err != nil {
		t.Fatalf("guest join: %v", err)
	}

	select {
	case ev := <-host.Events():
		if ev.Type != presence.EvtOpponentJoined || ev.UserID != "u-guest" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for join notice")
	}
}
