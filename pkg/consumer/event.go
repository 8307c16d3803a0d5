package consumer

import (
	"encoding/json"
	"fmt"

	"lintang/kurirx/pkg/replan"
)

// RawScan is the provider wire shape of one scan event.
type RawScan struct {
	Waybill     string `json:"wbn"`
	Destination string `json:"cn"`
	PromiseDate int64  `json:"pdd"`

	Scan struct {
		Location   string `json:"sl"`
		Connection string `json:"cid"`
		Act        string `json:"act"`
		ScanDate   int64  `json:"sd"`
		Station    string `json:"ps"`
		StationID  string `json:"pid"`
	} `json:"cs"`
}

// ScanEvent is a validated scan with the provider action code already
// mapped.
type ScanEvent struct {
	Waybill     string
	Location    string
	Destination string
	Connection  string
	Action      replan.Action
	ScanTime    int64
	PromiseTime int64
}

// MapAction maps a provider action code. Outbound markers are outscans; an
// inbound marker counts as an inscan only when the provider's two station
// codes agree, otherwise it degrades to a plain location sighting.
func MapAction(act, station, stationID string) replan.Action {
	switch act {
	case "+L", "+C":
		return replan.ActionOutscan
	case "<L", "<C":
		if station != "" && station == stationID {
			return replan.ActionInscan
		}
	}
	return replan.ActionLocation
}

// ParseRaw decodes and validates one provider payload.
func ParseRaw(payload []byte) (ScanEvent, error) {
	var raw RawScan
	if err := json.Unmarshal(payload, &raw); err != nil {
		return ScanEvent{}, fmt.Errorf("malformed scan payload: %w", err)
	}

	if raw.Waybill == "" {
		return ScanEvent{}, fmt.Errorf("scan event missing waybill")
	}
	if raw.Scan.Location == "" {
		return ScanEvent{}, fmt.Errorf("scan event <%s> missing location", raw.Waybill)
	}
	if raw.Destination == "" {
		return ScanEvent{}, fmt.Errorf("scan event <%s> missing destination", raw.Waybill)
	}
	if raw.Scan.ScanDate <= 0 {
		return ScanEvent{}, fmt.Errorf("scan event <%s> missing scan time", raw.Waybill)
	}
	if raw.PromiseDate <= 0 {
		return ScanEvent{}, fmt.Errorf("scan event <%s> missing promise time", raw.Waybill)
	}

	return ScanEvent{
		Waybill:     raw.Waybill,
		Location:    raw.Scan.Location,
		Destination: raw.Destination,
		Connection:  raw.Scan.Connection,
		Action:      MapAction(raw.Scan.Act, raw.Scan.Station, raw.Scan.StationID),
		ScanTime:    raw.Scan.ScanDate,
		PromiseTime: raw.PromiseDate,
	}, nil
}
