package replan

import (
	"lintang/kurirx/pkg/engine/solver"
	"lintang/kurirx/pkg/transit"
)

// Planner answers path queries for the re-planning engine. The pareto
// solver is asked first; when the deadline leaves it no feasible routing
// the earliest-arrival fallback is tried with its lifted deadline, so a
// shipment past its promise still gets a plan instead of none.
type Planner struct {
	primary  solver.PathFinder
	fallback solver.PathFinder
}

func NewPlanner(primary, fallback solver.PathFinder) *Planner {
	return &Planner{primary: primary, fallback: fallback}
}

// Solve returns a path or nothing. Unknown endpoints count as no plan, the
// caller holds state either way.
func (p *Planner) Solve(src, dst string, tStart, tMax int64) []solver.PathHop {
	path, err := p.primary.FindPath(src, dst, tStart, tMax)
	if err == nil && len(path) > 0 {
		return path
	}
	if p.fallback == nil {
		return nil
	}
	path, err = p.fallback.FindPath(src, dst, tStart, tMax)
	if err != nil {
		return nil
	}
	return path
}

// Connection resolves a connection code to its properties and endpoints.
func (p *Planner) Connection(conn string) (transit.Edge, transit.Vertex, transit.Vertex, error) {
	return p.primary.Connection(conn)
}
