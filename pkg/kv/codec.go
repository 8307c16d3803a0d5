package kv

import (
	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"
)

// VertexRecord is one persisted delivery center.
type VertexRecord struct {
	Code string
	Name string
}

// EdgeRecord is one persisted connection between two centers. Inactive
// records are inserted into the graph disabled so they can be toggled back
// on without re-specifying them.
type EdgeRecord struct {
	Code        string
	Origin      string
	Destination string
	Continuous  bool

	Departure int64
	Duration  int64
	Tip       int64
	Tap       int64
	Top       int64

	Cost   float64
	Active bool
}

// SegmentRecord is one persisted step of a shipment's history. State and
// Comment are stored by name so the records stay readable across enum
// reorderings.
type SegmentRecord struct {
	ID    string
	Code  string
	CName string

	PArr int64
	PDep int64
	AArr int64
	ADep int64

	Tip int64
	Tap int64
	Top int64

	Cost    float64
	State   string
	Comment string
	Parent  string
}

func Encode[T any](records []T) []byte {
	encoded, _ := binary.Marshal(records)
	return encoded
}

func Decode[T any](bb []byte) ([]T, error) {
	var records []T
	if err := binary.Unmarshal(bb, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func Compress(bb []byte) ([]byte, error) {
	var bbCompressed []byte
	bbCompressed, err := zstd.Compress(bbCompressed, bb)
	if err != nil {
		return []byte{}, err
	}
	return bbCompressed, nil
}

func Decompress(bbCompressed []byte) ([]byte, error) {
	var bb []byte
	bb, err := zstd.Decompress(bb, bbCompressed)
	if err != nil {
		return []byte{}, err
	}

	return bb, nil
}
