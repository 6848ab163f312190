package thermo

import (
	"fmt"
	"iter"

	"github.com/couchcryptid/heat-response/internal/domain"
	"github.com/couchcryptid/heat-response/internal/model"
)

// ProgressInterval is the step cadence of progress callbacks.
const ProgressInterval = 10

// DefaultSeed is the resting state a run starts from when none is given.
var DefaultSeed = domain.Temperatures{Rectal: 37.0, Skin: 32.0}

// ProgressFunc is called synchronously from inside the simulation loop. It
// must not block for long; its time is charged to the caller.
type ProgressFunc func(currentStep, totalSteps int)

// Simulator runs the thermoregulation recurrence for one person. It holds only
// immutable state, so one instance may serve concurrent runs.
type Simulator struct {
	person            domain.BiophysicalFeatures
	featureScaler     *model.Scaler
	outputScaler      *model.Scaler
	core              model.Coefficients
	skin              model.Coefficients
	maxVapourPressure float64
}

// NewSimulator binds a person to a set of trained parameters.
func NewSimulator(person domain.BiophysicalFeatures, params model.Params) (*Simulator, error) {
	if err := person.Validate(); err != nil {
		return nil, fmt.Errorf("new simulator: %w", err)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("new simulator: %w", err)
	}
	featureScaler, err := model.NewScaler(params.FeatureScaler)
	if err != nil {
		return nil, fmt.Errorf("new simulator: feature scaler: %w", err)
	}
	outputScaler, err := model.NewScaler(params.OutputScaler)
	if err != nil {
		return nil, fmt.Errorf("new simulator: output scaler: %w", err)
	}
	return &Simulator{
		person:            person,
		featureScaler:     featureScaler,
		outputScaler:      outputScaler,
		core:              cloneCoefficients(params.Core),
		skin:              cloneCoefficients(params.Skin),
		maxVapourPressure: params.MaxVapourPressureKPa,
	}, nil
}

// Person returns the features the simulator was built with.
func (s *Simulator) Person() domain.BiophysicalFeatures { return s.person }

// Run simulates totalSteps discrete steps in env starting from seed and
// returns the final temperatures in °C. progress may be nil; otherwise it is
// called after every step whose index is a multiple of ProgressInterval.
func (s *Simulator) Run(env domain.EnvironmentalFeatures, totalSteps int, seed domain.Temperatures, progress ProgressFunc) (domain.Temperatures, error) {
	r, err := s.start(env, totalSteps, seed)
	if err != nil {
		return domain.Temperatures{}, err
	}
	for step := range totalSteps {
		r.advance()
		if progress != nil && step%ProgressInterval == 0 {
			progress(step, totalSteps)
		}
	}
	return r.temperatures()
}

// Trajectory yields the state in °C after each of totalSteps steps. It is the
// pull-based counterpart of Run's progress callback: the caller decides how
// often to look and may stop early. Setup errors are returned before iteration.
func (s *Simulator) Trajectory(env domain.EnvironmentalFeatures, totalSteps int, seed domain.Temperatures) (iter.Seq2[int, domain.Temperatures], error) {
	r, err := s.start(env, totalSteps, seed)
	if err != nil {
		return nil, err
	}
	return func(yield func(int, domain.Temperatures) bool) {
		// Each iteration restarts from the seed so the sequence can be ranged
		// over more than once.
		state := *r
		for step := range totalSteps {
			state.advance()
			out, err := state.temperatures()
			if err != nil {
				return
			}
			if !yield(step, out) {
				return
			}
		}
	}, nil
}

// run is the per-call recurrence state. Both temperatures are in normalized
// space until temperatures() maps them back.
type run struct {
	sim        *Simulator
	staticCore float64
	staticSkin float64
	core       float64
	skin       float64
}

func (s *Simulator) start(env domain.EnvironmentalFeatures, totalSteps int, seed domain.Temperatures) (*run, error) {
	if s == nil || s.featureScaler == nil || s.outputScaler == nil {
		return nil, fmt.Errorf("simulate: %w", domain.ErrInvalidState)
	}
	if totalSteps < 0 {
		return nil, fmt.Errorf("simulate: %w: steps must be >= 0, got %d", domain.ErrInvalidInput, totalSteps)
	}

	raw := make([]float64, model.NumFeatures)
	raw[model.FeatureSex] = float64(s.person.Sex)
	raw[model.FeatureAge] = s.person.Age
	raw[model.FeatureHeight] = s.person.HeightCm
	raw[model.FeatureMass] = s.person.MassKg
	raw[model.FeatureAmbientTemp] = env.AmbientTemp
	raw[model.FeatureHumidity] = env.Humidity
	raw[model.FeatureCoreTemp] = seed.Rectal
	raw[model.FeatureSkinTemp] = seed.Skin

	scaled, err := s.featureScaler.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	staticCore, err := model.StaticComponent(scaled, s.core)
	if err != nil {
		return nil, fmt.Errorf("simulate: core: %w", err)
	}
	staticSkin, err := model.StaticComponent(scaled, s.skin)
	if err != nil {
		return nil, fmt.Errorf("simulate: skin: %w", err)
	}

	return &run{
		sim:        s,
		staticCore: staticCore,
		staticSkin: staticSkin,
		core:       scaled[model.FeatureCoreTemp],
		skin:       scaled[model.FeatureSkinTemp],
	}, nil
}

// advance computes both next values from the same prior state.
func (r *run) advance() {
	c, k := r.sim.core.Weights, r.sim.skin.Weights
	nextCore := r.staticCore + c[model.FeatureCoreTemp]*r.core + c[model.FeatureSkinTemp]*r.skin
	nextSkin := r.staticSkin + k[model.FeatureCoreTemp]*r.core + k[model.FeatureSkinTemp]*r.skin
	r.core, r.skin = nextCore, nextSkin
}

func (r *run) temperatures() (domain.Temperatures, error) {
	out, err := r.sim.outputScaler.InverseTransform([]float64{r.core, r.skin})
	if err != nil {
		return domain.Temperatures{}, fmt.Errorf("simulate: %w", err)
	}
	return domain.Temperatures{Rectal: out[0], Skin: out[1]}, nil
}

func cloneCoefficients(c model.Coefficients) model.Coefficients {
	return model.Coefficients{
		Weights:   append([]float64(nil), c.Weights...),
		Intercept: c.Intercept,
	}
}
