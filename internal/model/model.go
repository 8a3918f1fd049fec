package model

import (
	"time"
)

// Direction classifies a frame's traffic direction relative to the monitored host(s).
type Direction uint8

const (
	// DirectionUnknown covers transit traffic (neither endpoint is local),
	// local-to-local traffic, and frames whose link-layer header cannot be parsed.
	DirectionUnknown Direction = iota
	DirectionInbound
	DirectionOutbound
)

func (d Direction) String() string {
	switch d {
	case DirectionInbound:
		return "inbound"
	case DirectionOutbound:
		return "outbound"
	default:
		return "unknown"
	}
}

// CapturedFrame is a single raw link-layer capture unit. It is owned by the
// frame source until handed to the pipeline and is never mutated afterwards.
type CapturedFrame struct {
	Data          []byte
	CaptureLength int
	Timestamp     time.Time
}

// ByteSample is the per-frame classification and sizing result. It is consumed
// by the aggregator immediately and never retained.
type ByteSample struct {
	Direction Direction
	Bytes     int
	Timestamp time.Time
}

// BandwidthSample is the unit emitted to consumers: the smoothed bidirectional
// rate at a point in time. Both rates are non-negative finite numbers.
type BandwidthSample struct {
	InboundBps  float64   `json:"inbound_bps"`
	OutboundBps float64   `json:"outbound_bps"`
	Timestamp   time.Time `json:"timestamp"`
}
