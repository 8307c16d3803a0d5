package transit

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrDuplicateCode = errors.New("duplicate code specified")
	ErrUnknownVertex = errors.New("unknown vertex")
	ErrUnknownEdge   = errors.New("unknown connection")
	ErrNotFromSource = errors.New("connection does not originate at source")
)

// Arc is an edge placed in the graph, carrying the indices of its endpoint
// vertices.
type Arc struct {
	Edge
	Src, Dst int
}

// Graph is the time-dependent network of delivery centers. One
// reader/writer lock guards the whole graph: every mutation takes the write
// lock, every traversal holds the read lock for its full duration so a
// concurrent topology change can never corrupt an in-flight search.
type Graph struct {
	mu sync.RWMutex

	vertices  []Vertex
	out       [][]Arc
	vertexMap map[string]int

	// edgeMap holds the traversable arcs; edgeAll remembers the full
	// definition of every arc ever added so a disabled connection can be
	// re-enabled without re-specifying it.
	edgeMap map[string]Arc
	edgeAll map[string]Arc
}

func NewGraph() *Graph {
	return &Graph{
		vertexMap: make(map[string]int),
		edgeMap:   make(map[string]Arc),
		edgeAll:   make(map[string]Arc),
	}
}

// RLock takes the shared traversal lock. Solvers hold it for the duration
// of a search and use the lock-free accessors below.
func (g *Graph) RLock()   { g.mu.RLock() }
func (g *Graph) RUnlock() { g.mu.RUnlock() }

// NumVertices must be called with the read lock held.
func (g *Graph) NumVertices() int { return len(g.vertices) }

// VertexID must be called with the read lock held.
func (g *Graph) VertexID(code string) (int, bool) {
	idx, ok := g.vertexMap[code]
	return idx, ok
}

// VertexAt must be called with the read lock held.
func (g *Graph) VertexAt(idx int) Vertex { return g.vertices[idx] }

// OutArcs must be called with the read lock held.
func (g *Graph) OutArcs(idx int) []Arc { return g.out[idx] }

func (g *Graph) AddVertex(code string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.vertexMap[code]; ok {
		return fmt.Errorf("unable to add vertex <%s>: %w", code, ErrDuplicateCode)
	}

	v := Vertex{Index: len(g.vertices), Code: code}
	g.vertices = append(g.vertices, v)
	g.out = append(g.out, nil)
	g.vertexMap[code] = v.Index
	return nil
}

func (g *Graph) AddEdge(src, dst, conn string, dep, dur, tip, tap, top int64, cost float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	sindex, dindex, err := g.endpoints(src, dst, conn)
	if err != nil {
		return err
	}

	arc := Arc{
		Edge: newScheduledEdge(len(g.edgeAll), conn, dep, dur, tip, tap, top, cost),
		Src:  sindex,
		Dst:  dindex,
	}
	g.insertArc(arc)
	return nil
}

func (g *Graph) AddContinuousEdge(src, dst, conn string, tip, tap, top int64, cost float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	sindex, dindex, err := g.endpoints(src, dst, conn)
	if err != nil {
		return err
	}

	arc := Arc{
		Edge: newContinuousEdge(len(g.edgeAll), conn, tip, tap, top, cost),
		Src:  sindex,
		Dst:  dindex,
	}
	g.insertArc(arc)
	return nil
}

func (g *Graph) endpoints(src, dst, conn string) (int, int, error) {
	sindex, ok := g.vertexMap[src]
	if !ok {
		return 0, 0, fmt.Errorf("invalid source <%s> specified: %w", src, ErrUnknownVertex)
	}
	dindex, ok := g.vertexMap[dst]
	if !ok {
		return 0, 0, fmt.Errorf("invalid destination <%s> specified: %w", dst, ErrUnknownVertex)
	}
	if _, ok := g.edgeAll[conn]; ok {
		return 0, 0, fmt.Errorf("unable to create connection <%s>: %w", conn, ErrDuplicateCode)
	}
	return sindex, dindex, nil
}

func (g *Graph) insertArc(arc Arc) {
	g.out[arc.Src] = append(g.out[arc.Src], arc)
	g.edgeMap[arc.Code] = arc
	g.edgeAll[arc.Code] = arc
}

// ToggleEdge disables or re-enables a connection. Disabling removes the
// traversable arc but keeps its remembered definition; enabling re-inserts
// from that definition. Both directions are idempotent.
func (g *Graph) ToggleEdge(conn string, enabled bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if enabled {
		if _, ok := g.edgeMap[conn]; ok {
			return nil
		}
		arc, ok := g.edgeAll[conn]
		if !ok {
			return fmt.Errorf("invalid connection <%s> specified: %w", conn, ErrUnknownEdge)
		}
		g.out[arc.Src] = append(g.out[arc.Src], arc)
		g.edgeMap[conn] = arc
		return nil
	}

	arc, ok := g.edgeMap[conn]
	if !ok {
		if _, exists := g.edgeAll[conn]; !exists {
			return fmt.Errorf("invalid connection <%s> specified: %w", conn, ErrUnknownEdge)
		}
		return nil
	}
	outs := g.out[arc.Src]
	for i := range outs {
		if outs[i].Code == conn {
			g.out[arc.Src] = append(outs[:i], outs[i+1:]...)
			break
		}
	}
	delete(g.edgeMap, conn)
	return nil
}

// Lookup returns the properties of the connection conn departing from the
// vertex src, along with its destination vertex.
func (g *Graph) Lookup(src, conn string) (Edge, Vertex, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	sindex, ok := g.vertexMap[src]
	if !ok {
		return Edge{}, Vertex{}, fmt.Errorf("no source vertex <%s> found: %w", src, ErrUnknownVertex)
	}
	arc, ok := g.edgeMap[conn]
	if !ok {
		return Edge{}, Vertex{}, fmt.Errorf("connection <%s> not found: %w", conn, ErrUnknownEdge)
	}
	if arc.Src != sindex {
		return Edge{}, Vertex{}, fmt.Errorf("no connection <%s> from source <%s>: %w", conn, src, ErrNotFromSource)
	}
	return arc.Edge, g.vertices[arc.Dst], nil
}

// Connection returns a connection by code alone, with its source and
// destination vertices. Used by the re-planning engine to recover the
// properties of an unplanned outbound connection.
func (g *Graph) Connection(conn string) (Edge, Vertex, Vertex, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	arc, ok := g.edgeAll[conn]
	if !ok {
		return Edge{}, Vertex{}, Vertex{}, fmt.Errorf("connection <%s> not found: %w", conn, ErrUnknownEdge)
	}
	return arc.Edge, g.vertices[arc.Src], g.vertices[arc.Dst], nil
}
