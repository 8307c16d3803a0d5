package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lintang/kurirx/pkg/transit"
)

// buildNetwork: A -ab-> B (continuous, cost 1.0), B -bc-> C (departs 3600,
// runs 1800, cost 2.0).
func buildNetwork(t *testing.T, s PathFinder) {
	assert.NoError(t, s.AddVertex("A"))
	assert.NoError(t, s.AddVertex("B"))
	assert.NoError(t, s.AddVertex("C"))
	assert.NoError(t, s.AddContinuousEdge("A", "B", "ab", 0, 0, 0, 1.0))
	assert.NoError(t, s.AddEdge("B", "C", "bc", 3600, 1800, 0, 0, 0, 2.0))
}

func eachSolver(t *testing.T, run func(t *testing.T, s PathFinder)) {
	solvers := map[string]PathFinder{
		"optimal": NewOptimal(false),
		"pareto":  NewPareto(),
	}
	for name, s := range solvers {
		t.Run(name, func(t *testing.T) {
			run(t, s)
		})
	}
}

func TestFindPath(t *testing.T) {
	eachSolver(t, func(t *testing.T, s PathFinder) {
		buildNetwork(t, s)

		path, err := s.FindPath("A", "C", 0, 10000)
		assert.NoError(t, err)
		assert.Len(t, path, 3)

		assert.Equal(t, "A", path[0].Source)
		assert.Equal(t, "ab", path[0].Connection)
		assert.Equal(t, "B", path[0].Destination)
		assert.Equal(t, int64(0), path[0].Arrival)

		assert.Equal(t, "B", path[1].Source)
		assert.Equal(t, "bc", path[1].Connection)
		assert.Equal(t, "C", path[1].Destination)
		assert.Equal(t, int64(0), path[1].Arrival)
		assert.Equal(t, int64(3600), path[1].Departure)

		// continuous hop carries no expense, scheduled hop adds its cost
		assert.Equal(t, "C", path[2].Source)
		assert.Equal(t, "", path[2].Connection)
		assert.Equal(t, int64(5400), path[2].Arrival)
		assert.Equal(t, 2.0, path[2].Cost.Expense)
		assert.Equal(t, int64(5400), path[2].Cost.Time)
	})
}

func TestFindPathDeadline(t *testing.T) {
	eachSolver(t, func(t *testing.T, s PathFinder) {
		buildNetwork(t, s)

		t.Run("too tight", func(t *testing.T) {
			path, err := s.FindPath("A", "C", 0, 3000)
			assert.NoError(t, err)
			assert.Empty(t, path)
		})

		t.Run("exact arrival is feasible", func(t *testing.T) {
			path, err := s.FindPath("A", "C", 0, 5400)
			assert.NoError(t, err)
			assert.Len(t, path, 3)
		})

		t.Run("one second short", func(t *testing.T) {
			path, err := s.FindPath("A", "C", 0, 5399)
			assert.NoError(t, err)
			assert.Empty(t, path)
		})
	})
}

func TestFindPathUnknownVertex(t *testing.T) {
	eachSolver(t, func(t *testing.T, s PathFinder) {
		buildNetwork(t, s)

		_, err := s.FindPath("X", "C", 0, 10000)
		assert.ErrorIs(t, err, transit.ErrUnknownVertex)

		_, err = s.FindPath("A", "X", 0, 10000)
		assert.ErrorIs(t, err, transit.ErrUnknownVertex)
	})
}

func TestOptimalIgnoreCost(t *testing.T) {
	expensive := func(s PathFinder) {
		// direct but pricey: departs 100, lands 200
		assert.NoError(t, s.AddEdge("A", "C", "ac", 100, 100, 0, 0, 0, 50.0))
	}

	t.Run("cost aware picks the cheap routing", func(t *testing.T) {
		s := NewOptimal(false)
		buildNetwork(t, s)
		expensive(s)

		path, err := s.FindPath("A", "C", 0, 10000)
		assert.NoError(t, err)
		assert.Len(t, path, 3)
		assert.Equal(t, "ab", path[0].Connection)
		assert.Equal(t, 2.0, path[2].Cost.Expense)
	})

	t.Run("ignore cost picks the earliest arrival", func(t *testing.T) {
		s := NewOptimal(true)
		buildNetwork(t, s)
		expensive(s)

		path, err := s.FindPath("A", "C", 0, 10000)
		assert.NoError(t, err)
		assert.Len(t, path, 2)
		assert.Equal(t, "ac", path[0].Connection)
		assert.Equal(t, int64(200), path[1].Arrival)
		assert.Equal(t, 0.0, path[1].Cost.Expense)
	})
}

func TestParetoFrontier(t *testing.T) {
	s := NewPareto()
	buildNetwork(t, s)
	assert.NoError(t, s.AddEdge("A", "C", "ac", 100, 100, 0, 0, 0, 10.0))

	paths, err := s.FindPaths("A", "C", 0, 10000)
	assert.NoError(t, err)
	assert.Len(t, paths, 2)

	// cheapest first
	cheap := paths[0][len(paths[0])-1].Cost
	fast := paths[1][len(paths[1])-1].Cost
	assert.Equal(t, 2.0, cheap.Expense)
	assert.Equal(t, int64(5400), cheap.Time)
	assert.Equal(t, 10.0, fast.Expense)
	assert.Equal(t, int64(200), fast.Time)

	// neither dominates the other
	assert.False(t, dominates(cheap, fast))
	assert.False(t, dominates(fast, cheap))

	t.Run("single path query returns the cheapest", func(t *testing.T) {
		path, err := s.FindPath("A", "C", 0, 10000)
		assert.NoError(t, err)
		assert.Equal(t, 2.0, path[len(path)-1].Cost.Expense)
	})

	t.Run("dominated routing is dropped", func(t *testing.T) {
		// same arrival as ac but pricier: dominated, never surfaced
		assert.NoError(t, s.AddEdge("A", "C", "ax", 100, 100, 0, 0, 0, 20.0))
		paths, err := s.FindPaths("A", "C", 0, 10000)
		assert.NoError(t, err)
		assert.Len(t, paths, 2)
	})
}

func TestToggleEdge(t *testing.T) {
	eachSolver(t, func(t *testing.T, s PathFinder) {
		buildNetwork(t, s)

		assert.NoError(t, s.ToggleEdge("bc", false))
		path, err := s.FindPath("A", "C", 0, 10000)
		assert.NoError(t, err)
		assert.Empty(t, path)

		assert.NoError(t, s.ToggleEdge("bc", true))
		path, err = s.FindPath("A", "C", 0, 10000)
		assert.NoError(t, err)
		assert.Len(t, path, 3)
	})
}

func newTestWeld(t *testing.T) *Weld {
	w := NewWeld(NewPareto(), NewOptimal(true))
	for _, code := range []string{"A", "B", "C"} {
		res := w.Execute(CmdAddVertex, Request{Vertex: code})
		assert.True(t, res.Success)
	}
	cost := 1.0
	res := w.Execute(CmdAddContinuousEdge, Request{Src: "A", Dst: "B", Conn: "ab", Cost: &cost})
	assert.True(t, res.Success)
	cost2 := 2.0
	res = w.Execute(CmdAddEdge, Request{Src: "B", Dst: "C", Conn: "bc", Dep: 3600, Dur: 1800, Cost: &cost2})
	assert.True(t, res.Success)
	return w
}

func TestWeldExecute(t *testing.T) {
	w := newTestWeld(t)

	t.Run("find path per mode", func(t *testing.T) {
		for _, mode := range []Mode{ModeRCSP, ModeSTSP} {
			res := w.Execute(CmdFindPath, Request{Src: "A", Dst: "C", TStart: 0, TMax: 10000, Mode: mode})
			assert.True(t, res.Success)
			assert.Len(t, res.Path, 3)
			assert.Equal(t, int64(5400), res.Path[2].Arrival)
		}
	})

	t.Run("lookup", func(t *testing.T) {
		res := w.Execute(CmdLookupEdge, Request{Src: "B", Conn: "bc"})
		assert.True(t, res.Success)
		assert.Equal(t, "bc", res.Edge.Code)
		assert.Equal(t, "C", res.Destination.Code)
	})

	t.Run("default connection cost", func(t *testing.T) {
		res := w.Execute(CmdAddContinuousEdge, Request{Src: "B", Dst: "A", Conn: "ba"})
		assert.True(t, res.Success)

		res = w.Execute(CmdLookupEdge, Request{Src: "B", Conn: "ba"})
		assert.True(t, res.Success)
		assert.Equal(t, DefaultConnectionCost, res.Edge.Cost)
	})

	t.Run("toggle propagates to every solver", func(t *testing.T) {
		res := w.Execute(CmdToggleEdge, Request{Conn: "bc", Enabled: false})
		assert.True(t, res.Success)
		for _, mode := range []Mode{ModeRCSP, ModeSTSP} {
			res := w.Execute(CmdFindPath, Request{Src: "A", Dst: "C", TStart: 0, TMax: 10000, Mode: mode})
			assert.True(t, res.Success)
			assert.Empty(t, res.Path)
		}
		res = w.Execute(CmdToggleEdge, Request{Conn: "bc", Enabled: true})
		assert.True(t, res.Success)
	})

	t.Run("duplicate vertex", func(t *testing.T) {
		res := w.Execute(CmdAddVertex, Request{Vertex: "A"})
		assert.False(t, res.Success)
		assert.ErrorIs(t, res.Err, transit.ErrDuplicateCode)
	})

	t.Run("unknown command", func(t *testing.T) {
		res := w.Execute(CommandType("NOPE"), Request{})
		assert.False(t, res.Success)
		assert.ErrorIs(t, res.Err, ErrUnknownCommand)
	})

	t.Run("mode out of range", func(t *testing.T) {
		res := w.Execute(CmdFindPath, Request{Src: "A", Dst: "C", TMax: 10000, Mode: Mode(7)})
		assert.False(t, res.Success)
	})
}
