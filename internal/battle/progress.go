package battle

import "sync"

type Status string

const (
	StatusUnsolved  Status = "unsolved"
	StatusAttempted Status = "attempted"
	StatusSolved    Status = "solved"
)

type Side string

const (
	SideSelf     Side = "self"
	SideOpponent Side = "opponent"
)

// Board tracks per-side per-problem progress for the duration of one battle
// screen. It is a feedback layer only; authoritative scoring is server-side.
type Board struct {
	mu    sync.Mutex
	order []string
	self  map[string]Status
	opp   map[string]Status
}

func NewBoard(problems []Problem) *Board {
	b := &Board{
		order: make([]string, 0, len(problems)),
		self:  make(map[string]Status, len(problems)),
		opp:   make(map[string]Status, len(problems)),
	}
	for _, p := range problems {
		b.order = append(b.order, p.ID)
		b.self[p.ID] = StatusUnsolved
		b.opp[p.ID] = StatusUnsolved
	}
	return b
}

// Record folds a submission outcome into the board. Solved is monotonic: a
// later partial pass never downgrades it. Unknown problem ids report ok=false.
func (b *Board) Record(side Side, problemID string, allPassed bool) (Status, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m := b.side(side)
	cur, known := m[problemID]
	if !known {
		return "", false
	}
	if cur == StatusSolved {
		return StatusSolved, true
	}
	if allPassed {
		m[problemID] = StatusSolved
		return StatusSolved, true
	}
	m[problemID] = StatusAttempted
	return StatusAttempted, true
}

func (b *Board) Status(side Side, problemID string) Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.side(side)[problemID]
	if !ok {
		return StatusUnsolved
	}
	return s
}

type Summary struct {
	Total          int
	SelfSolved     int
	OpponentSolved int
	Self           []Status
	Opponent       []Status
}

// Summary returns a read-only view in problem-set order.
func (b *Board) Summary() Summary {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := Summary{Total: len(b.order)}
	for _, id := range b.order {
		out.Self = append(out.Self, b.self[id])
		out.Opponent = append(out.Opponent, b.opp[id])
		if b.self[id] == StatusSolved {
			out.SelfSolved++
		}
		if b.opp[id] == StatusSolved {
			out.OpponentSolved++
		}
	}
	return out
}

func (b *Board) side(side Side) map[string]Status {
	if side == SideOpponent {
		return b.opp
	}
	return b.self
}
