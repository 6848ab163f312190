package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// SweepRequest asks for a humidity x temperature grid for one person. Empty
// axes fall back to the default grid.
type SweepRequest struct {
	ID          string              `json:"id,omitempty"`
	Person      BiophysicalFeatures `json:"person"`
	Humidity    []float64           `json:"humidity,omitempty"`
	Temperature []float64           `json:"temperature,omitempty"`
}

// Grid holds one exposure result per (humidity, temperature) pair.
// Cells[i][j] corresponds to Humidity[i] and Temperature[j].
type Grid struct {
	Humidity    []float64          `json:"humidity"`
	Temperature []float64          `json:"temperature"`
	Cells       [][]ExposureResult `json:"cells"`
	ComputedAt  time.Time          `json:"computed_at"`
}

// GridSummary aggregates the computed cells of a grid.
type GridSummary struct {
	Computed        int     `json:"computed"`
	OutOfRange      int     `json:"out_of_range"`
	MinRectalDelta  float64 `json:"min_rectal_delta"`
	MaxRectalDelta  float64 `json:"max_rectal_delta"`
	MeanRectalDelta float64 `json:"mean_rectal_delta"`
	MaxSkinDelta    float64 `json:"max_skin_delta"`
}

// SweepResult is published for every processed SweepRequest.
type SweepResult struct {
	ID      string              `json:"id"`
	Person  BiophysicalFeatures `json:"person"`
	Grid    Grid                `json:"grid"`
	Summary GridSummary         `json:"summary"`
}
