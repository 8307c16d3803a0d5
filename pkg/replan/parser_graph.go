package replan

import (
	"fmt"

	"lintang/kurirx/pkg/transit"
)

// SegmentStore persists one shipment's segment history between scan
// sessions.
type SegmentStore interface {
	LoadSegments(waybill string) ([]Segment, error)
	SaveSegments(waybill string, segments []Segment) error
}

func secondsOfDay(t int64) int64 {
	s := t % transit.TimeDurinal
	if s < 0 {
		s += transit.TimeDurinal
	}
	return s
}

// ParserGraph is one re-planning session for one shipment: load the
// segment history, apply scan events against it, persist on Close. A
// session is single owner of its waybill's history, callers shard the
// event stream per waybill to guarantee that.
type ParserGraph struct {
	waybill string
	planner *Planner
	store   SegmentStore
	history *History

	saveState bool
	onReplan  func()
}

func NewParserGraph(waybill string, planner *Planner, store SegmentStore) (*ParserGraph, error) {
	p := &ParserGraph{
		waybill:   waybill,
		planner:   planner,
		store:     store,
		history:   NewHistory(),
		saveState: true,
	}

	if err := p.loadSegments(); err != nil {
		return nil, err
	}
	if p.history.Len() == 0 {
		p.makeRoot()
	}
	return p, nil
}

// loadSegments restores persisted history. Records arrive in insertion
// order, so every parent is inserted before its children.
func (p *ParserGraph) loadSegments() error {
	if p.store == nil {
		return nil
	}
	segments, err := p.store.LoadSegments(p.waybill)
	if err != nil {
		return err
	}
	for _, seg := range segments {
		if seg.Parent != "" && p.history.Get(seg.Parent) == nil {
			return fmt.Errorf("segment <%s> of waybill <%s> references missing parent <%s>",
				seg.ID, p.waybill, seg.Parent)
		}
		p.history.Insert(seg)
	}
	return nil
}

// makeRoot seeds a fresh history with a synthetic active segment so the
// first scan has something to attach a plan to.
func (p *ParserGraph) makeRoot() {
	p.history.Insert(Segment{
		ID:      newSegmentID(),
		PArr:    TimeNegInf,
		PDep:    TimeNegInf,
		AArr:    TimeNegInf,
		ADep:    TimeNegInf,
		State:   StateActive,
		Comment: CommentSegmentPredicted,
	})
}

// OnReplan registers a callback fired whenever a scan deviation forces a
// new plan.
func (p *ParserGraph) OnReplan(fn func()) {
	p.onReplan = fn
}

func (p *ParserGraph) replanned() {
	if p.onReplan != nil {
		p.onReplan()
	}
}

// Save decides whether Close persists this session.
func (p *ParserGraph) Save(save bool) {
	p.saveState = save
}

func (p *ParserGraph) Close() error {
	if !p.saveState || p.store == nil {
		return nil
	}
	return p.store.SaveSegments(p.waybill, p.history.All())
}

func (p *ParserGraph) History() *History {
	return p.history
}

// MakePath plans from origin to destination and appends the plan as a
// chain of future segments under parent, ending in a terminal segment at
// the destination. Returns false when no routing meets the promise.
func (p *ParserGraph) MakePath(origin, destination string, startDt, promiseDt int64, parent string) bool {
	startT := secondsOfDay(startDt)
	maxT := startT + (promiseDt - startDt)

	hops := p.planner.Solve(origin, destination, startT, maxT)
	if len(hops) == 0 {
		return false
	}

	// midnight of the scan day anchors solver seconds back to wall time
	dayStart := startDt - startT

	base := 0.0
	if parent != "" {
		if ps := p.history.Get(parent); ps != nil {
			base = ps.Cost
		}
	}

	inbound := int64(0)
	for _, hop := range hops {
		seg := Segment{
			ID:      newSegmentID(),
			Code:    hop.Source,
			CName:   hop.Connection,
			PArr:    dayStart + hop.Arrival,
			PDep:    dayStart + hop.Departure,
			AArr:    TimePosInf,
			ADep:    TimePosInf,
			Tip:     inbound,
			Tap:     hop.Tap,
			Top:     hop.Top,
			Cost:    base + hop.Cost.Expense,
			State:   StateFuture,
			Comment: CommentSegmentPredicted,
			Parent:  parent,
		}
		if hop.Connection == "" {
			// terminal segment: nothing departs from here
			seg.PDep = TimePosInf
		}
		p.history.Insert(seg)
		parent = seg.ID
		inbound = hop.Tip
	}
	return true
}

// makeDuplicateActive forks a reached copy of seg reflecting the actual
// outbound connection, and returns the new segment's id.
func (p *ParserGraph) makeDuplicateActive(seg *Segment, conn transit.Edge, parent string, scanDt int64) string {
	fork := Segment{
		ID:      newSegmentID(),
		Code:    seg.Code,
		CName:   conn.Code,
		PArr:    seg.PArr,
		PDep:    seg.PDep,
		AArr:    seg.AArr,
		ADep:    scanDt,
		Tip:     seg.Tip,
		Tap:     conn.Tap,
		Top:     conn.Top,
		Cost:    seg.Cost,
		State:   StateReached,
		Comment: CommentSegmentTraversed,
		Parent:  parent,
	}
	p.history.Insert(fork)
	return fork.ID
}

// ParseScan applies one mapped scan event to the history. The returned
// bool reports whether re-planning, where needed, succeeded; on a planning
// failure the session is marked dirty so Close holds the previous state.
// Errors are reserved for events that reference unknown connections.
func (p *ParserGraph) ParseScan(location, destination, connection string, action Action, scanDt, promiseDt int64) (bool, error) {
	active := p.history.FirstByState(StateActive)
	if active == nil {
		return true, nil
	}

	switch {
	case active.Parent == "":
		if action != ActionLocation && action != ActionInscan {
			return true, nil
		}
		// first sighting: plan against the synthetic root
		if !p.MakePath(location, destination, scanDt, promiseDt, active.ID) {
			p.Save(false)
			return false, nil
		}
		reached := p.history.ModifyFirstByState(StateActive, func(s *Segment) {
			s.State = StateReached
		})
		if reached != nil {
			p.history.ModifyFirstByStateParent(StateFuture, reached.ID, func(s *Segment) {
				s.State = StateActive
				s.AArr = scanDt
			})
		}

	case active.Code == location:
		switch action {
		case ActionOutscan:
			if active.Match(connection, scanDt) {
				comment := CommentSegmentTraversed
				if active.PDep < scanDt {
					comment = CommentCenterDelayedConnection
				}
				p.history.Modify(active.ID, func(s *Segment) {
					s.State = StateReached
					s.ADep = scanDt
					s.Comment = comment
				})
				p.history.ModifyFirstByStateParent(StateFuture, active.ID, func(s *Segment) {
					s.State = StateActive
					s.AArr = scanDt
				})
				return true, nil
			}

			// departed on a different connection: fail the plan, fork
			// reality, re-plan from where that connection lands
			p.history.ModifyAllByState(StateFuture, func(s *Segment) {
				s.State = StateInactive
				s.Comment = CommentSegmentBadData
			})
			p.history.Modify(active.ID, func(s *Segment) {
				s.State = StateFail
				s.Comment = CommentCenterOverrideConnection
			})

			conn, _, dst, err := p.planner.Connection(connection)
			if err != nil {
				p.Save(false)
				return false, fmt.Errorf("waybill <%s>: %w", p.waybill, err)
			}

			forked := p.makeDuplicateActive(active, conn, active.Parent, scanDt)
			scanT := secondsOfDay(scanDt)
			landing := scanDt - scanT + conn.Dep + conn.Dur
			p.replanned()
			if !p.MakePath(dst.Code, destination, landing, promiseDt, forked) {
				p.Save(false)
				return false, nil
			}
			p.history.ModifyFirstByStateParent(StateFuture, forked, func(s *Segment) {
				s.State = StateActive
			})

		case ActionInscan:
			if scanDt < active.PDep {
				comment := CommentSegmentPredicted
				if scanDt > active.AArr {
					comment = CommentConnectionLateArrivalWarn
				}
				p.history.Modify(active.ID, func(s *Segment) {
					s.AArr = scanDt
					s.Comment = comment
				})
				return true, nil
			}

			// arrived after the planned departure: the rest of the plan
			// cannot hold
			p.history.ModifyAllByState(StateFuture, func(s *Segment) {
				s.State = StateInactive
				s.ADep = scanDt
			})
			p.history.ModifyAllByState(StateActive, func(s *Segment) {
				s.State = StateFail
				s.Comment = CommentConnectionLateArrivalFail
			})
			p.replanned()
			if !p.MakePath(location, destination, scanDt, promiseDt, active.Parent) {
				p.Save(false)
				return false, nil
			}
			p.history.ModifyFirstByStateParent(StateFuture, active.Parent, func(s *Segment) {
				s.State = StateActive
				s.AArr = scanDt
			})
		}

	default:
		// scanned somewhere the plan never predicted
		if action != ActionLocation && action != ActionInscan {
			return true, nil
		}
		p.history.ModifyAllByState(StateFuture, func(s *Segment) {
			s.State = StateInactive
		})
		p.history.ModifyAllByState(StateActive, func(s *Segment) {
			s.State = StateFail
			s.Comment = CommentSegmentBadData
		})
		p.replanned()
		if !p.MakePath(location, destination, scanDt, promiseDt, active.Parent) {
			p.Save(false)
			return false, nil
		}
		p.history.ModifyFirstByStateParent(StateFuture, active.Parent, func(s *Segment) {
			s.State = StateActive
			s.AArr = scanDt
		})
	}

	return true, nil
}
