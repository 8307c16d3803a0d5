package solver

import (
	"fmt"
	"sync"

	"lintang/kurirx/pkg/transit"
)

type CommandType string

const (
	CmdAddVertex         CommandType = "ADDV"
	CmdAddEdge           CommandType = "ADDE"
	CmdAddContinuousEdge CommandType = "ADDC"
	CmdToggleEdge        CommandType = "MODC"
	CmdLookupEdge        CommandType = "LOOK"
	CmdFindPath          CommandType = "FIND"
)

// DefaultConnectionCost is applied when a continuous connection is created
// without an explicit traversal cost.
const DefaultConnectionCost = 0.30

// Mode selects which solver instance answers a query. Mutations always hit
// every solver, so the instances stay topology-identical.
type Mode int

const (
	ModeRCSP Mode = iota
	ModeSTSP
)

// Request carries the arguments of one command. Fields outside the chosen
// command are ignored. Cost is a pointer so an omitted cost can be told
// apart from an explicit zero.
type Request struct {
	Vertex string

	Src  string
	Dst  string
	Conn string

	Dep  int64
	Dur  int64
	Tip  int64
	Tap  int64
	Top  int64
	Cost *float64

	Enabled bool

	TStart int64
	TMax   int64

	Mode Mode
}

func (r Request) cost(fallback float64) float64 {
	if r.Cost == nil {
		return fallback
	}
	return *r.Cost
}

// Response is the structured result of one command against one solver.
type Response struct {
	Success bool
	Err     error

	Edge        transit.Edge
	Destination transit.Vertex
	Path        []PathHop
}

func failure(err error) Response {
	return Response{Err: err}
}

type commandFunc func(PathFinder, Request) Response

var ErrUnknownCommand = fmt.Errorf("unknown command")

// Weld fans commands out to a fixed set of solver instances. Every command,
// queries included, runs against all solvers concurrently; the caller
// receives the response of the solver selected by the request mode.
type Weld struct {
	solvers []PathFinder
	table   map[CommandType]commandFunc
}

func NewWeld(solvers ...PathFinder) *Weld {
	w := &Weld{solvers: solvers}
	w.table = map[CommandType]commandFunc{
		CmdAddVertex:         addVertex,
		CmdAddEdge:           addEdge,
		CmdAddContinuousEdge: addContinuousEdge,
		CmdToggleEdge:        toggleEdge,
		CmdLookupEdge:        lookupEdge,
		CmdFindPath:          findPath,
	}
	return w
}

func addVertex(s PathFinder, req Request) Response {
	if err := s.AddVertex(req.Vertex); err != nil {
		return failure(err)
	}
	return Response{Success: true}
}

func addEdge(s PathFinder, req Request) Response {
	err := s.AddEdge(req.Src, req.Dst, req.Conn, req.Dep, req.Dur,
		req.Tip, req.Tap, req.Top, req.cost(0))
	if err != nil {
		return failure(err)
	}
	return Response{Success: true}
}

func addContinuousEdge(s PathFinder, req Request) Response {
	err := s.AddContinuousEdge(req.Src, req.Dst, req.Conn,
		req.Tip, req.Tap, req.Top, req.cost(DefaultConnectionCost))
	if err != nil {
		return failure(err)
	}
	return Response{Success: true}
}

func toggleEdge(s PathFinder, req Request) Response {
	if err := s.ToggleEdge(req.Conn, req.Enabled); err != nil {
		return failure(err)
	}
	return Response{Success: true}
}

func lookupEdge(s PathFinder, req Request) Response {
	edge, dst, err := s.Lookup(req.Src, req.Conn)
	if err != nil {
		return failure(err)
	}
	return Response{Success: true, Edge: edge, Destination: dst}
}

func findPath(s PathFinder, req Request) Response {
	path, err := s.FindPath(req.Src, req.Dst, req.TStart, req.TMax)
	if err != nil {
		return failure(err)
	}
	return Response{Success: true, Path: path}
}

// Execute runs cmd against every solver concurrently and returns the
// response of the solver at the request's mode index.
func (w *Weld) Execute(cmd CommandType, req Request) Response {
	handler, ok := w.table[cmd]
	if !ok {
		return failure(fmt.Errorf("<%s>: %w", cmd, ErrUnknownCommand))
	}
	if int(req.Mode) < 0 || int(req.Mode) >= len(w.solvers) {
		return failure(fmt.Errorf("no solver for mode <%d>", req.Mode))
	}

	results := make([]Response, len(w.solvers))
	var wg sync.WaitGroup
	for i, s := range w.solvers {
		wg.Add(1)
		go func(i int, s PathFinder) {
			defer wg.Done()
			results[i] = handler(s, req)
		}(i, s)
	}
	wg.Wait()

	return results[req.Mode]
}

// Solver exposes the instance behind a mode, for collaborators that talk to
// one solver directly instead of going through the command table.
func (w *Weld) Solver(mode Mode) PathFinder {
	return w.solvers[mode]
}
