package presence

import "context"

// Channel is one participant's bidirectional attachment to a room. Events
// arrive in server order on Events; the channel is torn down with Close, after
// which Events is closed and no further event may mutate the session.
type Channel interface {
	Emit(ctx context.Context, ev Event) error
	Events() <-chan Event
	Close() error
}
