package solver

import (
	"fmt"
	"math"

	"lintang/kurirx/pkg/transit"
	"lintang/kurirx/pkg/util"
)

// noDeadline is far enough out that every daily departure fits, yet leaves
// headroom so wait+duration arithmetic cannot overflow int64.
const noDeadline int64 = math.MaxInt64 / 4

// Optimal is the single criterion time-dependent dijkstra solver. With
// ignoreCost every connection is inserted with zero expense and searches run
// without a deadline, which reduces the objective to earliest arrival.
type Optimal struct {
	g          *transit.Graph
	ignoreCost bool
}

func NewOptimal(ignoreCost bool) *Optimal {
	return &Optimal{g: transit.NewGraph(), ignoreCost: ignoreCost}
}

func (o *Optimal) AddVertex(code string) error {
	return o.g.AddVertex(code)
}

func (o *Optimal) AddEdge(src, dst, conn string, dep, dur, tip, tap, top int64, cost float64) error {
	if o.ignoreCost {
		cost = 0
	}
	return o.g.AddEdge(src, dst, conn, dep, dur, tip, tap, top, cost)
}

func (o *Optimal) AddContinuousEdge(src, dst, conn string, tip, tap, top int64, cost float64) error {
	if o.ignoreCost {
		cost = 0
	}
	return o.g.AddContinuousEdge(src, dst, conn, tip, tap, top, cost)
}

func (o *Optimal) ToggleEdge(conn string, enabled bool) error {
	return o.g.ToggleEdge(conn, enabled)
}

func (o *Optimal) Lookup(src, conn string) (transit.Edge, transit.Vertex, error) {
	return o.g.Lookup(src, conn)
}

func (o *Optimal) Connection(conn string) (transit.Edge, transit.Vertex, transit.Vertex, error) {
	return o.g.Connection(conn)
}

// runDijkstra relaxes outward from source until destination is settled or
// no reachable vertex remains. Improvements re-insert into the heap, stale
// entries are skipped on pop (lazy deletion).
func (o *Optimal) runDijkstra(source, destination int, dist []transit.Cost,
	pred []transit.Arc, hasPred []bool, tStart, tMax int64) {

	pq := NewMinHeap[int]()

	dist[source] = transit.Cost{Expense: 0, Time: tStart}
	pq.Insert(PriorityQueueNode[int]{Rank: dist[source], Item: source})

	for pq.Size() != 0 {
		node, _ := pq.ExtractMin()
		current := node.Item

		if dist[current].Less(node.Rank) {
			continue
		}
		if current == destination {
			break
		}

		for _, arc := range o.g.OutArcs(current) {
			iterated := arc.Weight(dist[current], tMax)
			if iterated.IsInf() {
				continue
			}
			if iterated.Less(dist[arc.Dst]) {
				dist[arc.Dst] = iterated
				pred[arc.Dst] = arc
				hasPred[arc.Dst] = true
				pq.Insert(PriorityQueueNode[int]{Rank: iterated, Item: arc.Dst})
			}
		}
	}
}

// FindPath returns the cheapest path from src to dst for a shipment ready
// at tStart seconds of day, or an empty path when no connection chain can
// deliver before tMax.
func (o *Optimal) FindPath(src, dst string, tStart, tMax int64) ([]PathHop, error) {
	o.g.RLock()
	defer o.g.RUnlock()

	source, ok := o.g.VertexID(src)
	if !ok {
		return nil, fmt.Errorf("no source <%s> found: %w", src, transit.ErrUnknownVertex)
	}
	destination, ok := o.g.VertexID(dst)
	if !ok {
		return nil, fmt.Errorf("no destination <%s> found: %w", dst, transit.ErrUnknownVertex)
	}

	if o.ignoreCost {
		tMax = noDeadline
	}

	n := o.g.NumVertices()
	dist := make([]transit.Cost, n)
	pred := make([]transit.Arc, n)
	hasPred := make([]bool, n)
	for i := range dist {
		dist[i] = transit.InfCost()
	}

	o.runDijkstra(source, destination, dist, pred, hasPred, tStart, tMax)

	if dist[destination].IsInf() {
		return []PathHop{}, nil
	}

	// walk predecessors from the destination, then flip to travel order
	path := make([]PathHop, 0)
	current := destination
	path = append(path, PathHop{
		Source:    o.g.VertexAt(current).Code,
		Arrival:   dist[current].Time,
		Departure: noDeadline,
		Cost:      dist[current],
	})

	for current != source {
		if !hasPred[current] {
			return []PathHop{}, nil
		}
		arc := pred[current]
		current = arc.Src
		arrival := dist[current].Time
		path = append(path, PathHop{
			Source:      o.g.VertexAt(current).Code,
			Connection:  arc.Code,
			Destination: o.g.VertexAt(arc.Dst).Code,
			Arrival:     arrival,
			Departure:   arrival + arc.WaitTime(arrival),
			Cost:        dist[current],
			Tip:         arc.Tip,
			Tap:         arc.Tap,
			Top:         arc.Top,
		})
	}

	util.ReverseG(path)
	return path, nil
}
