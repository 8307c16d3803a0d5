package solver

import (
	"fmt"

	"golang.org/x/exp/slices"

	"lintang/kurirx/pkg/transit"
	"lintang/kurirx/pkg/util"
)

// label is one resource-constrained traversal state: the cost of reaching a
// vertex through one particular chain of connections. Labels at the same
// vertex form a pareto bag, dominated labels are flagged and skipped when
// popped.
type label struct {
	cost      transit.Cost
	vertex    int
	arc       transit.Arc
	hasArc    bool
	pred      *label
	dominated bool
}

// dominates: componentwise no-worse. Equal labels dominate each other, the
// bag keeps whichever arrived first.
func dominates(a, b transit.Cost) bool {
	return a.Expense <= b.Expense && a.Time <= b.Time
}

// Pareto is the resource constrained shortest path solver. Instead of one
// best cost per vertex it keeps every non-dominated (expense, time)
// combination, so a pricier-but-earlier routing survives next to the
// cheapest one.
type Pareto struct {
	g *transit.Graph
}

func NewPareto() *Pareto {
	return &Pareto{g: transit.NewGraph()}
}

func (p *Pareto) AddVertex(code string) error {
	return p.g.AddVertex(code)
}

func (p *Pareto) AddEdge(src, dst, conn string, dep, dur, tip, tap, top int64, cost float64) error {
	return p.g.AddEdge(src, dst, conn, dep, dur, tip, tap, top, cost)
}

func (p *Pareto) AddContinuousEdge(src, dst, conn string, tip, tap, top int64, cost float64) error {
	return p.g.AddContinuousEdge(src, dst, conn, tip, tap, top, cost)
}

func (p *Pareto) ToggleEdge(conn string, enabled bool) error {
	return p.g.ToggleEdge(conn, enabled)
}

func (p *Pareto) Lookup(src, conn string) (transit.Edge, transit.Vertex, error) {
	return p.g.Lookup(src, conn)
}

func (p *Pareto) Connection(conn string) (transit.Edge, transit.Vertex, transit.Vertex, error) {
	return p.g.Connection(conn)
}

// runLabeling grows pareto bags outward from source until no extendable
// label remains, and returns the bag at destination.
func (p *Pareto) runLabeling(source, destination int, tStart, tMax int64) []*label {
	bags := make([][]*label, p.g.NumVertices())
	pq := NewMinHeap[*label]()

	origin := &label{cost: transit.Cost{Expense: 0, Time: tStart}, vertex: source}
	bags[source] = append(bags[source], origin)
	pq.Insert(PriorityQueueNode[*label]{Rank: origin.cost, Item: origin})

	for pq.Size() != 0 {
		node, _ := pq.ExtractMin()
		current := node.Item
		if current.dominated {
			continue
		}

		for _, arc := range p.g.OutArcs(current.vertex) {
			extended := arc.Weight(current.cost, tMax)
			if extended.IsInf() {
				continue
			}

			bag := bags[arc.Dst]
			kept := true
			for _, other := range bag {
				if other.dominated {
					continue
				}
				if dominates(other.cost, extended) {
					kept = false
					break
				}
			}
			if !kept {
				continue
			}

			fresh := &label{
				cost:   extended,
				vertex: arc.Dst,
				arc:    arc,
				hasArc: true,
				pred:   current,
			}
			for _, other := range bag {
				if !other.dominated && dominates(extended, other.cost) {
					other.dominated = true
				}
			}
			bags[arc.Dst] = append(bags[arc.Dst], fresh)
			pq.Insert(PriorityQueueNode[*label]{Rank: extended, Item: fresh})
		}
	}

	frontier := make([]*label, 0, len(bags[destination]))
	for _, l := range bags[destination] {
		if !l.dominated {
			frontier = append(frontier, l)
		}
	}
	slices.SortFunc(frontier, func(a, b *label) int {
		if a.cost.Less(b.cost) {
			return -1
		}
		if b.cost.Less(a.cost) {
			return 1
		}
		return 0
	})
	return frontier
}

func (p *Pareto) reconstruct(end *label, tStart, tMax int64) []PathHop {
	arcs := make([]transit.Arc, 0)
	for l := end; l.hasArc; l = l.pred {
		arcs = append(arcs, l.arc)
	}
	util.ReverseG(arcs)

	path := make([]PathHop, 0, len(arcs)+1)
	current := transit.Cost{Expense: 0, Time: tStart}
	for _, arc := range arcs {
		path = append(path, PathHop{
			Source:      p.g.VertexAt(arc.Src).Code,
			Connection:  arc.Code,
			Destination: p.g.VertexAt(arc.Dst).Code,
			Arrival:     current.Time,
			Departure:   current.Time + arc.WaitTime(current.Time),
			Cost:        current,
			Tip:         arc.Tip,
			Tap:         arc.Tap,
			Top:         arc.Top,
		})
		current = arc.Weight(current, tMax)
	}
	path = append(path, PathHop{
		Source:    p.g.VertexAt(end.vertex).Code,
		Arrival:   current.Time,
		Departure: noDeadline,
		Cost:      current,
	})
	return path
}

// FindPath returns the cheapest pareto-optimal path from src to dst, or an
// empty path when the deadline admits none.
func (p *Pareto) FindPath(src, dst string, tStart, tMax int64) ([]PathHop, error) {
	p.g.RLock()
	defer p.g.RUnlock()

	source, ok := p.g.VertexID(src)
	if !ok {
		return nil, fmt.Errorf("no source <%s> found: %w", src, transit.ErrUnknownVertex)
	}
	destination, ok := p.g.VertexID(dst)
	if !ok {
		return nil, fmt.Errorf("no destination <%s> found: %w", dst, transit.ErrUnknownVertex)
	}

	frontier := p.runLabeling(source, destination, tStart, tMax)
	if len(frontier) == 0 {
		return []PathHop{}, nil
	}
	return p.reconstruct(frontier[0], tStart, tMax), nil
}

// FindPaths returns the full pareto frontier, cheapest first.
func (p *Pareto) FindPaths(src, dst string, tStart, tMax int64) ([][]PathHop, error) {
	p.g.RLock()
	defer p.g.RUnlock()

	source, ok := p.g.VertexID(src)
	if !ok {
		return nil, fmt.Errorf("no source <%s> found: %w", src, transit.ErrUnknownVertex)
	}
	destination, ok := p.g.VertexID(dst)
	if !ok {
		return nil, fmt.Errorf("no destination <%s> found: %w", dst, transit.ErrUnknownVertex)
	}

	frontier := p.runLabeling(source, destination, tStart, tMax)
	paths := make([][]PathHop, 0, len(frontier))
	for _, end := range frontier {
		paths = append(paths, p.reconstruct(end, tStart, tMax))
	}
	return paths, nil
}
