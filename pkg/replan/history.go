package replan

type stateParentKey struct {
	state  State
	parent string
}

// History is the canonical segment store for one shipment: an id-keyed
// arena plus derived indices by state and by (state, parent). Indices are
// maintained on every insert and every modify, and lookups resolve in
// insertion order so re-planning always touches the oldest matching
// segment first.
type History struct {
	segments map[string]*Segment
	order    []string

	byState       map[State][]string
	byStateParent map[stateParentKey][]string
}

func NewHistory() *History {
	return &History{
		segments:      make(map[string]*Segment),
		byState:       make(map[State][]string),
		byStateParent: make(map[stateParentKey][]string),
	}
}

func (h *History) index(seg *Segment) {
	h.byState[seg.State] = append(h.byState[seg.State], seg.ID)
	key := stateParentKey{state: seg.State, parent: seg.Parent}
	h.byStateParent[key] = append(h.byStateParent[key], seg.ID)
}

func (h *History) unindex(seg *Segment) {
	h.byState[seg.State] = remove(h.byState[seg.State], seg.ID)
	key := stateParentKey{state: seg.State, parent: seg.Parent}
	h.byStateParent[key] = remove(h.byStateParent[key], seg.ID)
}

func remove(ids []string, id string) []string {
	for i := range ids {
		if ids[i] == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func (h *History) Insert(seg Segment) *Segment {
	stored := seg
	h.segments[stored.ID] = &stored
	h.order = append(h.order, stored.ID)
	h.index(&stored)
	return &stored
}

func (h *History) Len() int {
	return len(h.segments)
}

// Get returns the segment with the given id, nil when absent.
func (h *History) Get(id string) *Segment {
	return h.segments[id]
}

// first resolves an index hit list to its oldest live segment.
func (h *History) first(ids []string) *Segment {
	if len(ids) == 0 {
		return nil
	}
	oldest := -1
	var found *Segment
	pos := make(map[string]int, len(h.order))
	for i, id := range h.order {
		pos[id] = i
	}
	for _, id := range ids {
		if at, ok := pos[id]; ok && (oldest == -1 || at < oldest) {
			oldest = at
			found = h.segments[id]
		}
	}
	return found
}

func (h *History) FirstByState(st State) *Segment {
	return h.first(h.byState[st])
}

func (h *History) FirstByStateParent(st State, parent string) *Segment {
	return h.first(h.byStateParent[stateParentKey{state: st, parent: parent}])
}

// Modify applies fn to the segment with the given id, keeping the derived
// indices consistent. Returns the modified segment, nil when absent.
func (h *History) Modify(id string, fn func(*Segment)) *Segment {
	seg, ok := h.segments[id]
	if !ok {
		return nil
	}
	h.unindex(seg)
	fn(seg)
	h.index(seg)
	return seg
}

// ModifyFirstByState modifies the oldest segment in state st.
func (h *History) ModifyFirstByState(st State, fn func(*Segment)) *Segment {
	seg := h.FirstByState(st)
	if seg == nil {
		return nil
	}
	return h.Modify(seg.ID, fn)
}

// ModifyFirstByStateParent modifies the oldest segment in state st whose
// parent is the given id.
func (h *History) ModifyFirstByStateParent(st State, parent string, fn func(*Segment)) *Segment {
	seg := h.FirstByStateParent(st, parent)
	if seg == nil {
		return nil
	}
	return h.Modify(seg.ID, fn)
}

// ModifyAllByState modifies every segment currently in state st.
func (h *History) ModifyAllByState(st State, fn func(*Segment)) {
	ids := make([]string, len(h.byState[st]))
	copy(ids, h.byState[st])
	for _, id := range ids {
		h.Modify(id, fn)
	}
}

// All returns every segment in insertion order.
func (h *History) All() []Segment {
	out := make([]Segment, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, *h.segments[id])
	}
	return out
}
