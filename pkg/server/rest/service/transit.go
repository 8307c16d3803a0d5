package service

import (
	"context"
	"errors"

	"lintang/kurirx/pkg/engine/solver"
	"lintang/kurirx/pkg/kv"
	"lintang/kurirx/pkg/server"
	"lintang/kurirx/pkg/transit"
)

// CommandBus is the solver command surface the service talks to.
type CommandBus interface {
	Execute(cmd solver.CommandType, req solver.Request) solver.Response
}

// NetworkStore persists accepted mutations so the next startup replays the
// same network.
type NetworkStore interface {
	SaveVertices(records []kv.VertexRecord) error
	SaveEdges(records []kv.EdgeRecord) error
	EdgeByCode(code string) (kv.EdgeRecord, bool, error)
}

type TransitService struct {
	weld  CommandBus
	store NetworkStore
}

func NewTransitService(weld CommandBus, store NetworkStore) *TransitService {
	return &TransitService{weld: weld, store: store}
}

// asServerError maps graph errors onto transport error codes.
func asServerError(err error, msg string) error {
	switch {
	case errors.Is(err, transit.ErrDuplicateCode):
		return server.WrapErrorf(err, server.ErrConflict, msg)
	case errors.Is(err, transit.ErrUnknownVertex), errors.Is(err, transit.ErrUnknownEdge):
		return server.WrapErrorf(err, server.ErrNotFound, msg)
	case errors.Is(err, transit.ErrNotFromSource):
		return server.WrapErrorf(err, server.ErrBadParamInput, msg)
	default:
		return server.WrapErrorf(err, server.ErrInternalServerError, server.MessageInternalServerError)
	}
}

func (uc *TransitService) AddVertex(ctx context.Context, code string) error {
	res := uc.weld.Execute(solver.CmdAddVertex, solver.Request{Vertex: code})
	if res.Err != nil {
		return asServerError(res.Err, "unable to add delivery center")
	}

	err := uc.store.SaveVertices([]kv.VertexRecord{{Code: code, Name: code}})
	if err != nil {
		return server.WrapErrorf(err, server.ErrInternalServerError, server.MessageInternalServerError)
	}
	return nil
}

func (uc *TransitService) AddConnection(ctx context.Context, src, dst, conn string,
	dep, dur, tip, tap, top int64, cost *float64) error {

	res := uc.weld.Execute(solver.CmdAddEdge, solver.Request{
		Src: src, Dst: dst, Conn: conn,
		Dep: dep, Dur: dur, Tip: tip, Tap: tap, Top: top,
		Cost: cost,
	})
	if res.Err != nil {
		return asServerError(res.Err, "unable to add connection")
	}

	expense := 0.0
	if cost != nil {
		expense = *cost
	}
	err := uc.store.SaveEdges([]kv.EdgeRecord{{
		Code:        conn,
		Origin:      src,
		Destination: dst,
		Departure:   dep,
		Duration:    dur,
		Tip:         tip,
		Tap:         tap,
		Top:         top,
		Cost:        expense,
		Active:      true,
	}})
	if err != nil {
		return server.WrapErrorf(err, server.ErrInternalServerError, server.MessageInternalServerError)
	}
	return nil
}

func (uc *TransitService) AddContinuousConnection(ctx context.Context, src, dst, conn string,
	tip, tap, top int64, cost *float64) error {

	res := uc.weld.Execute(solver.CmdAddContinuousEdge, solver.Request{
		Src: src, Dst: dst, Conn: conn,
		Tip: tip, Tap: tap, Top: top,
		Cost: cost,
	})
	if res.Err != nil {
		return asServerError(res.Err, "unable to add continuous connection")
	}

	expense := solver.DefaultConnectionCost
	if cost != nil {
		expense = *cost
	}
	err := uc.store.SaveEdges([]kv.EdgeRecord{{
		Code:        conn,
		Origin:      src,
		Destination: dst,
		Continuous:  true,
		Tip:         tip,
		Tap:         tap,
		Top:         top,
		Cost:        expense,
		Active:      true,
	}})
	if err != nil {
		return server.WrapErrorf(err, server.ErrInternalServerError, server.MessageInternalServerError)
	}
	return nil
}

func (uc *TransitService) ToggleConnection(ctx context.Context, conn string, enabled bool) error {
	res := uc.weld.Execute(solver.CmdToggleEdge, solver.Request{Conn: conn, Enabled: enabled})
	if res.Err != nil {
		return asServerError(res.Err, "unable to toggle connection")
	}

	rec, ok, err := uc.store.EdgeByCode(conn)
	if err != nil {
		return server.WrapErrorf(err, server.ErrInternalServerError, server.MessageInternalServerError)
	}
	if ok {
		rec.Active = enabled
		if err := uc.store.SaveEdges([]kv.EdgeRecord{rec}); err != nil {
			return server.WrapErrorf(err, server.ErrInternalServerError, server.MessageInternalServerError)
		}
	}
	return nil
}

func (uc *TransitService) LookupConnection(ctx context.Context, src, conn string) (transit.Edge, transit.Vertex, error) {
	res := uc.weld.Execute(solver.CmdLookupEdge, solver.Request{Src: src, Conn: conn})
	if res.Err != nil {
		return transit.Edge{}, transit.Vertex{}, asServerError(res.Err, "unable to lookup connection")
	}
	return res.Edge, res.Destination, nil
}

func (uc *TransitService) FindPath(ctx context.Context, src, dst string,
	tStart, tMax int64, mode solver.Mode) ([]solver.PathHop, error) {

	res := uc.weld.Execute(solver.CmdFindPath, solver.Request{
		Src: src, Dst: dst, TStart: tStart, TMax: tMax, Mode: mode,
	})
	if res.Err != nil {
		return nil, asServerError(res.Err, "unable to find path")
	}
	return res.Path, nil
}
