package battle

// Participant describes one side of a room.
type Participant struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

type TestCase struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
}

// Problem is one entry of a room's assigned problem set. Snippets maps a
// language slug to its starter code.
type Problem struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Difficulty  string            `json:"difficulty"`
	Description string            `json:"description"`
	Tags        []string          `json:"tags,omitempty"`
	Snippets    map[string]string `json:"snippets,omitempty"`
	TestCases   []TestCase        `json:"testCases,omitempty"`
}

// Metadata is the room configuration snapshot, write-once at room creation.
type Metadata struct {
	Duration      int      `json:"duration"` // minutes
	Difficulty    string   `json:"difficulty"`
	Topics        []string `json:"topics,omitempty"`
	TotalProblems int      `json:"totalProblems"`
}

// Session is the root aggregate for one client's view of a battle room.
// JSON tags match the persisted layout under the battleData storage key.
type Session struct {
	RoomID              string      `json:"roomId,omitempty"`
	Problems            []Problem   `json:"problems"`
	CurrentProblemIndex int         `json:"currentProblemIndex"`
	Host                Participant `json:"host"`
	Opponent            Participant `json:"opponent"`
	IsHost              bool        `json:"isHost"`
	StartTime           int64       `json:"startTime,omitempty"` // epoch ms, zero until the host starts
	Metadata            Metadata    `json:"metadata"`
	OpponentJoined      bool        `json:"opponentJoined"`
}

// NewSession returns the default (empty) session.
func NewSession() Session {
	return Session{Problems: []Problem{}}
}

// Clone deep-copies the session so callers can hand out read-only views.
func (s Session) Clone() Session {
	out := s
	out.Problems = make([]Problem, len(s.Problems))
	for i, p := range s.Problems {
		out.Problems[i] = p.Clone()
	}
	out.Metadata.Topics = append([]string(nil), s.Metadata.Topics...)
	return out
}

// Clone deep-copies the problem, detaching tags, test cases and snippets.
func (p Problem) Clone() Problem {
	out := p
	out.Tags = append([]string(nil), p.Tags...)
	out.TestCases = append([]TestCase(nil), p.TestCases...)
	if p.Snippets != nil {
		out.Snippets = make(map[string]string, len(p.Snippets))
		for k, v := range p.Snippets {
			out.Snippets[k] = v
		}
	}
	return out
}

// ProblemByID returns the problem with the given id, if it is part of the set.
func (s Session) ProblemByID(id string) (Problem, bool) {
	for _, p := range s.Problems {
		if p.ID == id {
			return p, true
		}
	}
	return Problem{}, false
}
