package presence

import "github.com/YM-Solutions-Official/leetcompete-client/pkg/types"

// The wire protocol lives in pkg/types; aliased here so internal packages
// keep one import for both the channel and its message shapes.
const (
	EvtJoinRoom             = types.EvtJoinRoom
	EvtOpponentJoined       = types.EvtOpponentJoined
	EvtOpponentLeft         = types.EvtOpponentLeft
	EvtOpponentDisconnected = types.EvtOpponentDisconnected
	EvtLeaveRoom            = types.EvtLeaveRoom
	EvtStartMatch           = types.EvtStartMatch
	EvtMatchStarted         = types.EvtMatchStarted
	EvtCancelRoom           = types.EvtCancelRoom
	EvtRoomCancelled        = types.EvtRoomCancelled
	EvtSubmissionResult     = types.EvtSubmissionResult
	EvtOpponentSubmitted    = types.EvtOpponentSubmitted
	EvtMySubmission         = types.EvtMySubmission
)

type Identity = types.Identity

type SubmissionResult = types.SubmissionResult

type Event = types.Event
