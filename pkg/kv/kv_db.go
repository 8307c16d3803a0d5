package kv

import (
	"fmt"

	"github.com/cockroachdb/pebble"

	"lintang/kurirx/pkg/concurrent"
	"lintang/kurirx/pkg/replan"
)

const (
	vertexPrefix  = "vertex#"
	edgePrefix    = "edge#"
	segmentPrefix = "segments#"
)

type KVDB struct {
	db *pebble.DB
}

func NewKVDB(db *pebble.DB) *KVDB {
	return &KVDB{db}
}

func (k *KVDB) Close() error {
	return k.db.Close()
}

func (k *KVDB) set(key string, val []byte) error {
	return k.db.Set([]byte(key), val, pebble.Sync)
}

func (k *KVDB) get(key string) ([]byte, bool, error) {
	val, closer, err := k.db.Get([]byte(key))
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()

	out := make([]byte, len(val))
	copy(out, val)
	return out, true, nil
}

// scan returns every value stored under prefix, in key order.
func (k *KVDB) scan(prefix string) ([][]byte, error) {
	iter, err := k.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: []byte(prefix + "\xff"),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var values [][]byte
	for iter.First(); iter.Valid(); iter.Next() {
		val := make([]byte, len(iter.Value()))
		copy(val, iter.Value())
		values = append(values, val)
	}
	return values, iter.Error()
}

type saveJob struct {
	key string
	val []byte
}

// saveAll writes jobs through a small worker pool, pebble handles the
// concurrent writers.
func (k *KVDB) saveAll(jobs []saveJob) error {
	workers := concurrent.NewWorkerPool[saveJob, error](4, len(jobs))
	for _, job := range jobs {
		workers.AddJob(job)
	}
	workers.Close()

	workers.Start(func(job saveJob) error {
		return k.set(job.key, job.val)
	})
	workers.Wait()

	for err := range workers.CollectResults() {
		if err != nil {
			return err
		}
	}
	return nil
}

func (k *KVDB) SaveVertices(records []VertexRecord) error {
	jobs := make([]saveJob, 0, len(records))
	for _, rec := range records {
		val, err := Compress(Encode([]VertexRecord{rec}))
		if err != nil {
			return err
		}
		jobs = append(jobs, saveJob{key: vertexPrefix + rec.Code, val: val})
	}
	return k.saveAll(jobs)
}

func (k *KVDB) SaveEdges(records []EdgeRecord) error {
	jobs := make([]saveJob, 0, len(records))
	for _, rec := range records {
		val, err := Compress(Encode([]EdgeRecord{rec}))
		if err != nil {
			return err
		}
		jobs = append(jobs, saveJob{key: edgePrefix + rec.Code, val: val})
	}
	return k.saveAll(jobs)
}

func (k *KVDB) EdgeByCode(code string) (EdgeRecord, bool, error) {
	val, ok, err := k.get(edgePrefix + code)
	if err != nil || !ok {
		return EdgeRecord{}, false, err
	}

	bb, err := Decompress(val)
	if err != nil {
		return EdgeRecord{}, false, err
	}
	records, err := Decode[EdgeRecord](bb)
	if err != nil || len(records) == 0 {
		return EdgeRecord{}, false, err
	}
	return records[0], true, nil
}

func decodeScan[T any](values [][]byte) ([]T, error) {
	records := make([]T, 0, len(values))
	for _, val := range values {
		bb, err := Decompress(val)
		if err != nil {
			return nil, err
		}
		decoded, err := Decode[T](bb)
		if err != nil {
			return nil, err
		}
		records = append(records, decoded...)
	}
	return records, nil
}

func (k *KVDB) Vertices() ([]VertexRecord, error) {
	values, err := k.scan(vertexPrefix)
	if err != nil {
		return nil, err
	}
	return decodeScan[VertexRecord](values)
}

func (k *KVDB) Edges() ([]EdgeRecord, error) {
	values, err := k.scan(edgePrefix)
	if err != nil {
		return nil, err
	}
	return decodeScan[EdgeRecord](values)
}

// LoadSegments restores one waybill's history. The whole history is one
// compressed blob, written in insertion order.
func (k *KVDB) LoadSegments(waybill string) ([]replan.Segment, error) {
	val, ok, err := k.get(segmentPrefix + waybill)
	if err != nil || !ok {
		return nil, err
	}

	bb, err := Decompress(val)
	if err != nil {
		return nil, err
	}
	records, err := Decode[SegmentRecord](bb)
	if err != nil {
		return nil, err
	}

	segments := make([]replan.Segment, 0, len(records))
	for _, rec := range records {
		state, err := replan.ParseState(rec.State)
		if err != nil {
			return nil, fmt.Errorf("waybill <%s>: %w", waybill, err)
		}
		comment, err := replan.ParseComment(rec.Comment)
		if err != nil {
			return nil, fmt.Errorf("waybill <%s>: %w", waybill, err)
		}
		segments = append(segments, replan.Segment{
			ID:      rec.ID,
			Code:    rec.Code,
			CName:   rec.CName,
			PArr:    rec.PArr,
			PDep:    rec.PDep,
			AArr:    rec.AArr,
			ADep:    rec.ADep,
			Tip:     rec.Tip,
			Tap:     rec.Tap,
			Top:     rec.Top,
			Cost:    rec.Cost,
			State:   state,
			Comment: comment,
			Parent:  rec.Parent,
		})
	}
	return segments, nil
}

func (k *KVDB) SaveSegments(waybill string, segments []replan.Segment) error {
	records := make([]SegmentRecord, 0, len(segments))
	for _, seg := range segments {
		records = append(records, SegmentRecord{
			ID:      seg.ID,
			Code:    seg.Code,
			CName:   seg.CName,
			PArr:    seg.PArr,
			PDep:    seg.PDep,
			AArr:    seg.AArr,
			ADep:    seg.ADep,
			Tip:     seg.Tip,
			Tap:     seg.Tap,
			Top:     seg.Top,
			Cost:    seg.Cost,
			State:   seg.State.String(),
			Comment: seg.Comment.String(),
			Parent:  seg.Parent,
		})
	}

	val, err := Compress(Encode(records))
	if err != nil {
		return err
	}
	return k.set(segmentPrefix+waybill, val)
}
