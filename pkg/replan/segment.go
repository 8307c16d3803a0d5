package replan

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"lintang/kurirx/pkg/transit"
)

// Sentinels for not-yet-known actual times. Kept well inside the int64
// range so date arithmetic on them cannot overflow.
const (
	TimePosInf int64 = math.MaxInt64 / 4
	TimeNegInf int64 = -TimePosInf
)

// State of a segment within a shipment's history.
type State int

const (
	// the shipment has moved through this segment
	StateReached State = iota
	// the shipment is currently at this center or outbound from it
	StateActive
	// the shipment is expected here in the future
	StateFuture
	// inbound or outbound at this segment failed
	StateFail
	// deactivated because an upstream segment failed
	StateInactive
)

var stateNames = map[State]string{
	StateReached:  "REACHED",
	StateActive:   "ACTIVE",
	StateFuture:   "FUTURE",
	StateFail:     "FAIL",
	StateInactive: "INACTIVE",
}

func (s State) String() string {
	return stateNames[s]
}

func ParseState(name string) (State, error) {
	for st, n := range stateNames {
		if n == name {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown segment state <%s>", name)
}

// Comment records why a segment is in its current state.
type Comment int

const (
	CommentSegmentTraversed Comment = iota
	CommentCenterOverrideConnection
	CommentCenterDelayedConnection
	CommentConnectionLateArrivalFail
	CommentConnectionLateArrivalWarn
	CommentRegenTatChange
	CommentRegenDestinationChange
	CommentSegmentPredicted
	CommentSegmentBadData
)

var commentNames = map[Comment]string{
	CommentSegmentTraversed:          "SUCCESS_SEGMENT_TRAVERSED",
	CommentCenterOverrideConnection:  "FAILURE_CENTER_OVERRIDE_CONNECTION",
	CommentCenterDelayedConnection:   "WARNING_CENTER_DELAYED_CONNECTION",
	CommentConnectionLateArrivalFail: "FAILURE_CONNECTION_LATE_ARRIVAL",
	CommentConnectionLateArrivalWarn: "WARNING_CONNECTION_LATE_ARRIVAL",
	CommentRegenTatChange:            "INFO_REGEN_TAT_CHANGE",
	CommentRegenDestinationChange:    "INFO_REGEN_DC_CHANGE",
	CommentSegmentPredicted:          "INFO_SEGMENT_PREDICTED",
	CommentSegmentBadData:            "INFO_SEGMENT_BAD_DATA",
}

func (c Comment) String() string {
	return commentNames[c]
}

func ParseComment(name string) (Comment, error) {
	for cm, n := range commentNames {
		if n == name {
			return cm, nil
		}
	}
	return 0, fmt.Errorf("unknown segment comment <%s>", name)
}

// Action is a scan event kind after provider-code mapping.
type Action int

const (
	ActionLocation Action = iota
	ActionInscan
	ActionOutscan
)

func (a Action) String() string {
	switch a {
	case ActionInscan:
		return "INSCAN"
	case ActionOutscan:
		return "OUTSCAN"
	default:
		return "LOCATION"
	}
}

// Segment is one planned or traversed step of a shipment's path: presence
// at a center plus the connection expected to carry it onward. Parent is
// the id of the preceding segment, empty only for the synthetic root.
type Segment struct {
	ID    string
	Code  string
	CName string

	PArr, PDep int64
	AArr, ADep int64

	Tip, Tap, Top int64

	Cost float64

	State   State
	Comment Comment

	Parent string
}

func newSegmentID() string {
	return uuid.NewString()
}

// Match reports whether an outbound scan via connection cname at aDep is
// the planned departure of this segment. The scan may drift from the
// prediction by up to a day less the segment's outbound processing before
// it stops counting as the same departure.
func (s *Segment) Match(cname string, aDep int64) bool {
	if s.CName != cname {
		return false
	}
	drift := aDep - s.PDep
	if drift < 0 {
		drift = -drift
	}
	return drift < transit.TimeDurinal-s.Tap-s.Top
}
