package kv

import (
	"errors"
	"fmt"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"lintang/kurirx/pkg/engine/solver"
	"lintang/kurirx/pkg/transit"
)

func newBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

// LoadNetwork replays every persisted center and connection into the weld,
// so all solver instances start from the same topology. Records already
// present are skipped, inactive connections are inserted disabled.
func (k *KVDB) LoadNetwork(w *solver.Weld) error {
	vertices, err := k.Vertices()
	if err != nil {
		return err
	}
	edges, err := k.Edges()
	if err != nil {
		return err
	}

	fmt.Println("wait until transit network load complete...")
	bar := newBar(len(vertices), "[cyan][1/2][reset] loading delivery centers...")
	for _, rec := range vertices {
		res := w.Execute(solver.CmdAddVertex, solver.Request{Vertex: rec.Code})
		if res.Err != nil && !errors.Is(res.Err, transit.ErrDuplicateCode) {
			return res.Err
		}
		bar.Add(1)
	}

	fmt.Println("")
	bar = newBar(len(edges), "[cyan][2/2][reset] loading connections...")
	for _, rec := range edges {
		cost := rec.Cost
		req := solver.Request{
			Src:  rec.Origin,
			Dst:  rec.Destination,
			Conn: rec.Code,
			Dep:  rec.Departure,
			Dur:  rec.Duration,
			Tip:  rec.Tip,
			Tap:  rec.Tap,
			Top:  rec.Top,
			Cost: &cost,
		}

		cmd := solver.CmdAddEdge
		if rec.Continuous {
			cmd = solver.CmdAddContinuousEdge
		}
		res := w.Execute(cmd, req)
		if res.Err != nil && !errors.Is(res.Err, transit.ErrDuplicateCode) {
			return res.Err
		}

		if !rec.Active {
			res = w.Execute(solver.CmdToggleEdge, solver.Request{Conn: rec.Code, Enabled: false})
			if res.Err != nil {
				return res.Err
			}
		}
		bar.Add(1)
	}
	fmt.Println("")

	return nil
}

// SaveNetwork persists the full set of centers and connections.
func (k *KVDB) SaveNetwork(vertices []VertexRecord, edges []EdgeRecord) error {
	if err := k.SaveVertices(vertices); err != nil {
		return err
	}
	return k.SaveEdges(edges)
}
