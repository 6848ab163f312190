package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "heat_response"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Prediction metrics.
	Predictions        *prometheus.CounterVec   // labels: kind={raw,exposure}, outcome={computed,out_of_range,error}
	PredictionDuration *prometheus.HistogramVec // labels: kind={raw,exposure}
	SimulationSteps    prometheus.Counter
	PredictionCache    *prometheus.CounterVec // labels: result={hit,miss}

	// Sweep metrics.
	SweepCells    *prometheus.CounterVec // labels: outcome={computed,out_of_range}
	SweepDuration prometheus.Histogram
	SweepsRunning prometheus.Gauge

	// Pipeline metrics.
	MessagesConsumed        prometheus.Counter
	MessagesProduced        prometheus.Counter
	TransformErrors         prometheus.Counter
	PipelineRunning         prometheus.Gauge
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Green-space lookup metrics.
	GreenspaceRequests    *prometheus.CounterVec // labels: outcome={success,error,not_found}
	GreenspaceCache       *prometheus.CounterVec // labels: result={hit,miss}
	GreenspaceAPIDuration prometheus.Histogram
	GreenspaceEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewMetricsWith(prometheus.NewRegistry())
}

// NewMetricsWith creates all metrics and registers them with reg. A nil reg
// leaves them unregistered, which suits one-shot command-line runs.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Predictions by entry point and outcome.",
		}, []string{"kind", "outcome"}),
		PredictionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time to compute a single prediction.",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}, []string{"kind"}),
		SimulationSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_steps_total",
			Help:      "Discrete recurrence steps executed.",
		}),
		PredictionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_cache_total",
			Help:      "Exposure prediction cache lookups by result.",
		}, []string{"result"}),
		SweepCells: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_cells_total",
			Help:      "Grid cells evaluated by outcome.",
		}, []string{"outcome"}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of a complete humidity x temperature sweep.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		SweepsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sweeps_running",
			Help:      "Number of sweeps currently in progress.",
		}),
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total sweep requests read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total sweep results written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total sweep requests that could not be processed.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the sweep pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		GreenspaceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "greenspace_requests_total",
			Help:      "Green-space API requests by outcome.",
		}, []string{"outcome"}),
		GreenspaceCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "greenspace_cache_total",
			Help:      "Green-space cache lookups by result.",
		}, []string{"result"}),
		GreenspaceAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "greenspace_api_duration_seconds",
			Help:      "Green-space API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GreenspaceEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "greenspace_enabled",
			Help:      "1 when green-space lookups are enabled, 0 otherwise.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Predictions,
			m.PredictionDuration,
			m.SimulationSteps,
			m.PredictionCache,
			m.SweepCells,
			m.SweepDuration,
			m.SweepsRunning,
			m.MessagesConsumed,
			m.MessagesProduced,
			m.TransformErrors,
			m.PipelineRunning,
			m.BatchSize,
			m.BatchProcessingDuration,
			m.GreenspaceRequests,
			m.GreenspaceCache,
			m.GreenspaceAPIDuration,
			m.GreenspaceEnabled,
		)
	}

	return m
}
