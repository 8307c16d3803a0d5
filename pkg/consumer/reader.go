package consumer

import (
	"hash/fnv"
	"log"
	"sync"

	"lintang/kurirx/pkg/replan"
)

// Reader applies scan events to shipment histories. One re-planning
// session is opened per event, so every event sees the latest persisted
// state and persists its own outcome.
type Reader struct {
	planner  *replan.Planner
	store    replan.SegmentStore
	observe  func(outcome string)
	onReplan func()
}

// ObserveReplans registers a callback fired on every re-plan a scan
// deviation triggers.
func (r *Reader) ObserveReplans(fn func()) {
	r.onReplan = fn
}

// NewReader builds a reader. observe, when non-nil, is called with the
// outcome of every event: "consumed", "dropped" or "held".
func NewReader(planner *replan.Planner, store replan.SegmentStore, observe func(outcome string)) *Reader {
	if observe == nil {
		observe = func(string) {}
	}
	return &Reader{planner: planner, store: store, observe: observe}
}

// Read processes one raw payload. Any failure is logged and swallowed: a
// bad event must never take the consumer down.
func (r *Reader) Read(payload []byte) {
	event, err := ParseRaw(payload)
	if err != nil {
		log.Printf("dropping scan: %v", err)
		r.observe("dropped")
		return
	}
	r.Process(event)
}

func (r *Reader) Process(event ScanEvent) {
	session, err := replan.NewParserGraph(event.Waybill, r.planner, r.store)
	if err != nil {
		log.Printf("dropping scan for waybill %s: %v", event.Waybill, err)
		r.observe("dropped")
		return
	}
	if r.onReplan != nil {
		session.OnReplan(r.onReplan)
	}

	ok, err := session.ParseScan(
		event.Location, event.Destination, event.Connection,
		event.Action, event.ScanTime, event.PromiseTime,
	)
	switch {
	case err != nil:
		log.Printf("scan for waybill %s failed: %v", event.Waybill, err)
		session.Save(false)
		r.observe("dropped")
	case !ok:
		log.Printf("no feasible plan for waybill %s, holding state", event.Waybill)
		r.observe("held")
	default:
		r.observe("consumed")
	}

	if err := session.Close(); err != nil {
		log.Printf("persisting waybill %s failed: %v", event.Waybill, err)
	}
}

// Dispatcher shards events across workers by waybill, so no two workers
// ever touch the same shipment's history concurrently.
type Dispatcher struct {
	shards []chan ScanEvent
	wg     sync.WaitGroup
}

func NewDispatcher(reader *Reader, numWorkers int) *Dispatcher {
	d := &Dispatcher{shards: make([]chan ScanEvent, numWorkers)}
	for i := range d.shards {
		shard := make(chan ScanEvent, 128)
		d.shards[i] = shard
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for event := range shard {
				reader.Process(event)
			}
		}()
	}
	return d
}

func (d *Dispatcher) Dispatch(event ScanEvent) {
	h := fnv.New32a()
	h.Write([]byte(event.Waybill))
	d.shards[int(h.Sum32())%len(d.shards)] <- event
}

// Close stops accepting events and waits for in-flight ones to finish.
func (d *Dispatcher) Close() {
	for _, shard := range d.shards {
		close(shard)
	}
	d.wg.Wait()
}
