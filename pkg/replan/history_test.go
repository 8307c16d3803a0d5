package replan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryIndices(t *testing.T) {
	h := NewHistory()

	root := h.Insert(Segment{ID: "root", State: StateActive})
	a := h.Insert(Segment{ID: "a", State: StateFuture, Parent: "root"})
	h.Insert(Segment{ID: "b", State: StateFuture, Parent: "a"})

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, root.ID, h.FirstByState(StateActive).ID)
	assert.Equal(t, a.ID, h.FirstByState(StateFuture).ID)
	assert.Equal(t, "b", h.FirstByStateParent(StateFuture, "a").ID)
	assert.Nil(t, h.FirstByState(StateFail))
	assert.Nil(t, h.Get("missing"))
}

func TestHistoryModifyReindexes(t *testing.T) {
	h := NewHistory()
	h.Insert(Segment{ID: "root", State: StateActive})
	h.Insert(Segment{ID: "a", State: StateFuture, Parent: "root"})

	seg := h.Modify("root", func(s *Segment) {
		s.State = StateReached
	})
	assert.NotNil(t, seg)
	assert.Nil(t, h.FirstByState(StateActive))
	assert.Equal(t, "root", h.FirstByState(StateReached).ID)

	promoted := h.ModifyFirstByStateParent(StateFuture, "root", func(s *Segment) {
		s.State = StateActive
	})
	assert.Equal(t, "a", promoted.ID)
	assert.Equal(t, "a", h.FirstByState(StateActive).ID)
	assert.Nil(t, h.FirstByStateParent(StateFuture, "root"))
}

func TestHistoryModifyAll(t *testing.T) {
	h := NewHistory()
	h.Insert(Segment{ID: "a", State: StateFuture})
	h.Insert(Segment{ID: "b", State: StateFuture})
	h.Insert(Segment{ID: "c", State: StateActive})

	h.ModifyAllByState(StateFuture, func(s *Segment) {
		s.State = StateInactive
	})
	assert.Nil(t, h.FirstByState(StateFuture))
	assert.Equal(t, StateInactive, h.Get("a").State)
	assert.Equal(t, StateInactive, h.Get("b").State)
	assert.Equal(t, StateActive, h.Get("c").State)
}

func TestHistoryFirstIsOldest(t *testing.T) {
	h := NewHistory()
	h.Insert(Segment{ID: "old", State: StateFuture})
	h.Insert(Segment{ID: "new", State: StateFuture})
	assert.Equal(t, "old", h.FirstByState(StateFuture).ID)
}

func TestSegmentMatch(t *testing.T) {
	seg := Segment{CName: "bc", PDep: 3600, Tap: 600, Top: 400}

	assert.True(t, seg.Match("bc", 3600))
	assert.True(t, seg.Match("bc", 3600+86400-1001))
	assert.False(t, seg.Match("bc", 3600+86400-1000))
	assert.False(t, seg.Match("xy", 3600))
}

func TestStateComment(t *testing.T) {
	st, err := ParseState("REACHED")
	assert.NoError(t, err)
	assert.Equal(t, StateReached, st)
	assert.Equal(t, "REACHED", st.String())

	_, err = ParseState("NOPE")
	assert.Error(t, err)

	cm, err := ParseComment("FAILURE_CENTER_OVERRIDE_CONNECTION")
	assert.NoError(t, err)
	assert.Equal(t, CommentCenterOverrideConnection, cm)

	_, err = ParseComment("NOPE")
	assert.Error(t, err)
}
