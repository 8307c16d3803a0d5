package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lintang/kurirx/pkg/engine/solver"
	"lintang/kurirx/pkg/kv"
	"lintang/kurirx/pkg/server"
)

type fakeStore struct {
	vertices map[string]kv.VertexRecord
	edges    map[string]kv.EdgeRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		vertices: map[string]kv.VertexRecord{},
		edges:    map[string]kv.EdgeRecord{},
	}
}

func (f *fakeStore) SaveVertices(records []kv.VertexRecord) error {
	for _, rec := range records {
		f.vertices[rec.Code] = rec
	}
	return nil
}

func (f *fakeStore) SaveEdges(records []kv.EdgeRecord) error {
	for _, rec := range records {
		f.edges[rec.Code] = rec
	}
	return nil
}

func (f *fakeStore) EdgeByCode(code string) (kv.EdgeRecord, bool, error) {
	rec, ok := f.edges[code]
	return rec, ok, nil
}

func errCode(t *testing.T, err error) error {
	t.Helper()
	var serr *server.Error
	require.True(t, errors.As(err, &serr))
	return serr.Code()
}

func TestTransitService(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	weld := solver.NewWeld(solver.NewPareto(), solver.NewOptimal(true))
	svc := NewTransitService(weld, store)

	require.NoError(t, svc.AddVertex(ctx, "A"))
	require.NoError(t, svc.AddVertex(ctx, "B"))
	require.NoError(t, svc.AddConnection(ctx, "A", "B", "ab", 3600, 1800, 0, 0, 0, nil))
	require.NoError(t, svc.AddContinuousConnection(ctx, "B", "A", "ba", 0, 0, 0, nil))

	t.Run("mutations write through to the store", func(t *testing.T) {
		assert.Len(t, store.vertices, 2)
		require.Contains(t, store.edges, "ab")
		assert.True(t, store.edges["ab"].Active)
		assert.False(t, store.edges["ab"].Continuous)
		require.Contains(t, store.edges, "ba")
		assert.True(t, store.edges["ba"].Continuous)
		assert.Equal(t, solver.DefaultConnectionCost, store.edges["ba"].Cost)
	})

	t.Run("duplicate vertex maps to conflict", func(t *testing.T) {
		err := svc.AddVertex(ctx, "A")
		require.Error(t, err)
		assert.Equal(t, server.ErrConflict, errCode(t, err))
	})

	t.Run("unknown connection maps to not found", func(t *testing.T) {
		err := svc.ToggleConnection(ctx, "nope", false)
		require.Error(t, err)
		assert.Equal(t, server.ErrNotFound, errCode(t, err))
	})

	t.Run("toggle flips the persisted record", func(t *testing.T) {
		require.NoError(t, svc.ToggleConnection(ctx, "ab", false))
		assert.False(t, store.edges["ab"].Active)
		require.NoError(t, svc.ToggleConnection(ctx, "ab", true))
		assert.True(t, store.edges["ab"].Active)
	})

	t.Run("lookup returns the edge and its destination", func(t *testing.T) {
		edge, dst, err := svc.LookupConnection(ctx, "A", "ab")
		require.NoError(t, err)
		assert.Equal(t, "ab", edge.Code)
		assert.Equal(t, "B", dst.Code)
	})

	t.Run("find path answers per mode", func(t *testing.T) {
		hops, err := svc.FindPath(ctx, "A", "B", 0, 86400, solver.ModeRCSP)
		require.NoError(t, err)
		require.Len(t, hops, 2)
		assert.Equal(t, "ab", hops[0].Connection)

		_, err = svc.FindPath(ctx, "A", "Z", 0, 86400, solver.ModeSTSP)
		require.Error(t, err)
		assert.Equal(t, server.ErrNotFound, errCode(t, err))
	})
}
