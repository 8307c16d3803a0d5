package transit

// Vertex is a delivery center. Index is its position in the adjacency
// structure, Code the unique human readable key it is addressed by.
type Vertex struct {
	Index int
	Code  string
}

// Edge is a connection between two delivery centers. A continuous edge
// (custody movement, local handover) is always available and only adds its
// processing overhead. A scheduled edge departs at Dep seconds-of-day every
// day and takes Dur seconds in transit.
//
// Tip/Tap/Top are the inbound, aggregation and outbound processing times in
// seconds. EffDep and EffDur are derived once at insertion: the effective
// departure is pulled earlier by the aggregation+outbound processing at the
// source, the effective duration stretched by all three.
type Edge struct {
	Index      int
	Code       string
	Continuous bool

	Dep, Dur      int64
	Tip, Tap, Top int64

	EffDep, EffDur int64

	Cost float64
}

func newContinuousEdge(index int, code string, tip, tap, top int64, cost float64) Edge {
	return Edge{
		Index:      index,
		Code:       code,
		Continuous: true,
		Tip:        tip,
		Tap:        tap,
		Top:        top,
		Cost:       cost,
	}
}

func newScheduledEdge(index int, code string, dep, dur, tip, tap, top int64, cost float64) Edge {
	effDep := (dep - tap - top) % TimeDurinal
	if effDep < 0 {
		effDep += TimeDurinal
	}
	return Edge{
		Index:  index,
		Code:   code,
		Dep:    dep,
		Dur:    dur,
		Tip:    tip,
		Tap:    tap,
		Top:    top,
		EffDep: effDep,
		EffDur: dur + tap + top + tip,
		Cost:   cost,
	}
}

// WaitTime returns how long a shipment arriving at time t sits at the source
// center before the edge can be boarded. The departure recurs daily, so the
// wait is the cyclic distance from t's time-of-day to the effective
// departure.
func (e Edge) WaitTime(t int64) int64 {
	if e.Continuous {
		return 0
	}

	tDurinal := t % TimeDurinal
	if tDurinal < 0 {
		tDurinal += TimeDurinal
	}
	if tDurinal > e.EffDep {
		return TimeDurinal - tDurinal + e.EffDep
	}
	return e.EffDep - tDurinal
}

// Weight returns the cost of having traversed this edge given the cost of
// arrival at its source. Scheduled edges that cannot deliver before tMax
// yield the infinite sentinel.
func (e Edge) Weight(start Cost, tMax int64) Cost {
	if start.IsInf() {
		return InfCost()
	}

	if e.Continuous {
		return Cost{Expense: start.Expense, Time: start.Time + e.Tip + e.Tap + e.Top}
	}

	timeTotal := start.Time + e.WaitTime(start.Time) + e.EffDur
	if timeTotal > tMax {
		return InfCost()
	}
	return Cost{Expense: start.Expense + e.Cost, Time: timeTotal}
}
