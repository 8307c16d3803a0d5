package kv

import (
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lintang/kurirx/pkg/engine/solver"
	"lintang/kurirx/pkg/replan"
)

func newTestDB(t *testing.T) *KVDB {
	db, err := pebble.Open(t.TempDir(), &pebble.Options{})
	require.NoError(t, err)
	k := NewKVDB(db)
	t.Cleanup(func() { k.Close() })
	return k
}

func TestNetworkRoundtrip(t *testing.T) {
	k := newTestDB(t)

	vertices := []VertexRecord{
		{Code: "A", Name: "Alpha Hub"},
		{Code: "B", Name: "Bravo Hub"},
		{Code: "C", Name: "Charlie Hub"},
	}
	edges := []EdgeRecord{
		{Code: "ab", Origin: "A", Destination: "B", Continuous: true, Cost: 1.0, Active: true},
		{Code: "bc", Origin: "B", Destination: "C", Departure: 3600, Duration: 1800, Cost: 2.0, Active: true},
		{Code: "bx", Origin: "B", Destination: "C", Departure: 100, Duration: 100, Cost: 0.5, Active: false},
	}
	assert.NoError(t, k.SaveNetwork(vertices, edges))

	loadedV, err := k.Vertices()
	assert.NoError(t, err)
	assert.ElementsMatch(t, vertices, loadedV)

	loadedE, err := k.Edges()
	assert.NoError(t, err)
	assert.ElementsMatch(t, edges, loadedE)

	t.Run("single record lookup", func(t *testing.T) {
		rec, ok, err := k.EdgeByCode("bc")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, edges[1], rec)

		_, ok, err = k.EdgeByCode("nope")
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestLoadNetwork(t *testing.T) {
	k := newTestDB(t)

	assert.NoError(t, k.SaveNetwork(
		[]VertexRecord{{Code: "A"}, {Code: "B"}, {Code: "C"}},
		[]EdgeRecord{
			{Code: "ab", Origin: "A", Destination: "B", Continuous: true, Cost: 1.0, Active: true},
			{Code: "bc", Origin: "B", Destination: "C", Departure: 3600, Duration: 1800, Cost: 2.0, Active: true},
			{Code: "bx", Origin: "B", Destination: "C", Departure: 100, Duration: 100, Cost: 0.5, Active: false},
		},
	))

	w := solver.NewWeld(solver.NewPareto(), solver.NewOptimal(true))
	assert.NoError(t, k.LoadNetwork(w))

	// the inactive connection must not carry traffic
	res := w.Execute(solver.CmdFindPath, solver.Request{
		Src: "A", Dst: "C", TStart: 0, TMax: 10000, Mode: solver.ModeRCSP,
	})
	assert.True(t, res.Success)
	assert.Len(t, res.Path, 3)
	assert.Equal(t, "bc", res.Path[1].Connection)

	// but it stays known, so it can come back
	res = w.Execute(solver.CmdToggleEdge, solver.Request{Conn: "bx", Enabled: true})
	assert.True(t, res.Success)
	res = w.Execute(solver.CmdFindPath, solver.Request{
		Src: "A", Dst: "C", TStart: 0, TMax: 10000, Mode: solver.ModeRCSP,
	})
	assert.True(t, res.Success)
	assert.Equal(t, "bx", res.Path[1].Connection)

	t.Run("reload skips existing records", func(t *testing.T) {
		assert.NoError(t, k.LoadNetwork(w))
	})
}

func TestSegmentRoundtrip(t *testing.T) {
	k := newTestDB(t)

	segments := []replan.Segment{
		{
			ID:    "root",
			PArr:  replan.TimeNegInf,
			PDep:  replan.TimeNegInf,
			AArr:  replan.TimeNegInf,
			ADep:  replan.TimeNegInf,
			State: replan.StateReached, Comment: replan.CommentSegmentPredicted,
		},
		{
			ID: "s1", Code: "A", CName: "ab",
			PArr: 0, PDep: 100, AArr: 10, ADep: replan.TimePosInf,
			Tap: 60, Top: 30, Cost: 1.5,
			State: replan.StateActive, Comment: replan.CommentSegmentTraversed,
			Parent: "root",
		},
	}
	assert.NoError(t, k.SaveSegments("WB1", segments))

	loaded, err := k.LoadSegments("WB1")
	assert.NoError(t, err)
	assert.Equal(t, segments, loaded)

	t.Run("unknown waybill is empty", func(t *testing.T) {
		loaded, err := k.LoadSegments("NOPE")
		assert.NoError(t, err)
		assert.Empty(t, loaded)
	})

	t.Run("second save replaces the blob", func(t *testing.T) {
		assert.NoError(t, k.SaveSegments("WB1", segments[:1]))
		loaded, err := k.LoadSegments("WB1")
		assert.NoError(t, err)
		assert.Len(t, loaded, 1)
	})
}
