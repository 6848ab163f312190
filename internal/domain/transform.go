package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ParseSweepRequest decodes a raw message into a SweepRequest. A request
// without an id takes the message key, or a fresh UUID when the key is empty.
func ParseSweepRequest(raw RawEvent) (SweepRequest, error) {
	var req SweepRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return SweepRequest{}, fmt.Errorf("%w: unmarshal sweep request: %w", ErrInvalidInput, err)
	}
	if err := req.Person.Validate(); err != nil {
		return SweepRequest{}, fmt.Errorf("sweep request %q: %w", req.ID, err)
	}
	if req.ID == "" {
		req.ID = string(raw.Key)
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	return req, nil
}

// SerializeSweepResult encodes a SweepResult keyed by its request id.
func SerializeSweepResult(result SweepResult) (OutputEvent, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize sweep result: %w", err)
	}
	return OutputEvent{
		Key:   []byte(result.ID),
		Value: data,
		Headers: map[string]string{
			"request_id":         result.ID,
			"computed_at":        result.Grid.ComputedAt.Format(time.RFC3339),
			"out_of_range_cells": strconv.Itoa(result.Summary.OutOfRange),
		},
	}, nil
}
