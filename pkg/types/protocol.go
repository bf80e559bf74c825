// Package types exports the presence channel wire protocol. Every frame is
// one JSON-encoded Event; the fields beyond Type are populated per event.
package types

// Wire event names, shared by the client transport and the relay server.
const (
	EvtJoinRoom             = "join-room"
	EvtOpponentJoined       = "opponent-joined"
	EvtOpponentLeft         = "opponent-left"
	EvtOpponentDisconnected = "opponent-disconnected"
	EvtLeaveRoom            = "leave-room"
	EvtStartMatch           = "start-match"
	EvtMatchStarted         = "match-started"
	EvtCancelRoom           = "cancel-room"
	EvtRoomCancelled        = "room-cancelled"
	EvtSubmissionResult     = "submission-result"
	EvtOpponentSubmitted    = "opponent-submitted"
	EvtMySubmission         = "my-submission"
)

// Identity is the presence announcement a participant makes when joining a room.
type Identity struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

// SubmissionResult is the judged outcome attached to submission events.
type SubmissionResult struct {
	AllPassed   bool `json:"allPassed"`
	PassedTests int  `json:"passedTests"`
	TotalTests  int  `json:"totalTests"`
}

// Event is the single message shape carried over the presence channel.
//
// Client -> Server: join-room (userId, name, photoUrl), leave-room (userId),
// start-match and cancel-room (host only, roomId), submission-result
// (problemId, result).
//
// Server -> Client: opponent-joined (userId, name, photoUrl), opponent-left
// and opponent-disconnected (userId), match-started (startTime, epoch ms,
// stamped by the lobby and sent to ALL participants including the host that
// asked), room-cancelled (guest side), my-submission and opponent-submitted
// (userId, problemId, result).
type Event struct {
	Type      string            `json:"type"`
	RoomID    string            `json:"roomId,omitempty"`
	UserID    string            `json:"userId,omitempty"`
	Name      string            `json:"name,omitempty"`
	PhotoURL  string            `json:"photoUrl,omitempty"`
	ProblemID string            `json:"problemId,omitempty"`
	StartTime int64             `json:"startTime,omitempty"`
	Result    *SubmissionResult `json:"result,omitempty"`
}
