package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/couchcryptid/heat-response/internal/domain"
	"github.com/couchcryptid/heat-response/internal/thermo"
	"github.com/google/uuid"
)

const (
	maxBodyBytes = 1 << 20
	maxSteps     = 100_000
)

// RawPredictor returns absolute temperatures after a number of steps.
// *thermo.Service satisfies it.
type RawPredictor interface {
	Predict(ctx context.Context, person domain.BiophysicalFeatures, env domain.EnvironmentalFeatures, steps int) (domain.Temperatures, error)
}

// Sweeper computes a grid for one request. *sweep.Service satisfies it.
type Sweeper interface {
	Sweep(ctx context.Context, req domain.SweepRequest) (domain.SweepResult, error)
}

// API holds the handlers' collaborators. A nil Greenspace disables the
// green-space route.
type API struct {
	Raw        RawPredictor
	Exposures  domain.Predictor
	Sweeps     Sweeper
	Greenspace domain.GreenspaceProvider
}

type predictionRequest struct {
	Person      domain.BiophysicalFeatures   `json:"person"`
	Environment domain.EnvironmentalFeatures `json:"environment"`
	Steps       *int                         `json:"steps,omitempty"`
}

type exposureRequest struct {
	Person      domain.BiophysicalFeatures   `json:"person"`
	Environment domain.EnvironmentalFeatures `json:"environment"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) handlePrediction(w http.ResponseWriter, r *http.Request) {
	var req predictionRequest
	if !s.decode(w, r, &req) {
		return
	}
	steps := thermo.ExposureSteps
	if req.Steps != nil {
		steps = *req.Steps
	}
	if steps > maxSteps {
		s.writeError(w, fmt.Errorf("%w: steps must not exceed %d", domain.ErrInvalidInput, maxSteps))
		return
	}

	out, err := s.api.Raw.Predict(r.Context(), req.Person, req.Environment, steps)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExposure(w http.ResponseWriter, r *http.Request) {
	var req exposureRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.api.Exposures.PredictExposure(r.Context(), req.Person, req.Environment)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	var req domain.SweepRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	result, err := s.api.Sweeps.Sweep(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGreenspace(w http.ResponseWriter, r *http.Request) {
	if s.api.Greenspace == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:   "unavailable",
			Message: "green-space lookup is not configured",
		})
		return
	}

	postcode := r.URL.Query().Get("postcode")
	if postcode == "" {
		s.writeError(w, fmt.Errorf("%w: postcode parameter is required", domain.ErrInvalidInput))
		return
	}

	stats, err := s.api.Greenspace.Lookup(r.Context(), postcode)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// decode reads a JSON body into v, answering 400 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, fmt.Errorf("%w: decode request body: %w", domain.ErrInvalidInput, err))
		return false
	}
	return true
}

// writeError maps domain errors to status codes. Unexpected errors are logged
// and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found", Message: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "unavailable", Message: "request cancelled"})
	default:
		s.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "server error", Message: "please try again later"})
	}
}
