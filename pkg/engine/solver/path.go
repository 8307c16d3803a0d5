package solver

import (
	"lintang/kurirx/pkg/transit"
)

// PathHop satu langkah dari path hasil solver. Hop terakhir adalah
// destination vertex itu sendiri (Connection kosong, cost kumulatif final).
type PathHop struct {
	Source      string       `json:"src"`
	Connection  string       `json:"conn"`
	Destination string       `json:"dst"`
	Arrival     int64        `json:"arr"`
	Departure   int64        `json:"dep"`
	Cost        transit.Cost `json:"cost"`

	Tip int64 `json:"tip"`
	Tap int64 `json:"tap"`
	Top int64 `json:"top"`
}

// PathFinder solver interface. Setiap solver own graph-nya sendiri, semua
// mutation di-fan-out oleh Weld ke semua solver.
type PathFinder interface {
	AddVertex(code string) error
	AddEdge(src, dst, conn string, dep, dur, tip, tap, top int64, cost float64) error
	AddContinuousEdge(src, dst, conn string, tip, tap, top int64, cost float64) error
	ToggleEdge(conn string, enabled bool) error
	Lookup(src, conn string) (transit.Edge, transit.Vertex, error)
	Connection(conn string) (transit.Edge, transit.Vertex, transit.Vertex, error)
	FindPath(src, dst string, tStart, tMax int64) ([]PathHop, error)
}
