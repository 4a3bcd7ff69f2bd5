// Package fit orchestrates the per-gene pipeline: walker initialization,
// the ensemble run, flattening, point estimates, posterior-predictive
// validation, and export of the tabular artifacts. Batch runs over many
// genes share one read-only Context.
package fit

import (
	"github.com/pkg/errors"

	"github.com/LiBuchauer/spatial-MP-discordances/model"
)

// DefaultFixedInit is the initial protein level used by the fixed-init
// variants. The value is a legacy calibration default with no documented
// derivation; it is surfaced here as configuration instead of being buried
// in the likelihood.
const DefaultFixedInit = 10000.0

// Chain start point used when no per-gene start values are available,
// roughly the mode of the fitted priors.
const (
	DefaultStartLogBeta  = 5.0
	DefaultStartLogDelta = 0.0
)

// Config holds the sampling policy for one batch. All values are plain
// data so a run's policy can be logged and reproduced.
type Config struct {
	Variant model.Variant

	Walkers int // Ensemble size
	Steps   int // Ensemble steps
	Discard int // Burn-in steps dropped before flattening
	Thin    int // Thinning stride over flattened rows
	Draws   int // Posterior-predictive draw count

	JitterScale float64 // Gaussian jitter around the start point
	FixedInit   float64 // Initial condition for fixed-init variants; <= 0 uses the first observation
}

// DefaultConfig is the full-length policy used for the production fits.
func DefaultConfig(v model.Variant) Config {
	return Config{
		Variant:     v,
		Walkers:     32,
		Steps:       6000,
		Discard:     500,
		Thin:        15,
		Draws:       2000,
		JitterScale: 1e-4,
		FixedInit:   DefaultFixedInit,
	}
}

// PowerConfig is the lighter policy for the power-analysis variant, whose
// 2-D posterior needs far fewer steps.
func PowerConfig() Config {
	cfg := DefaultConfig(model.FixedInitReference)
	cfg.Steps = 600
	cfg.Discard = 50
	cfg.Thin = 1
	return cfg
}

// Check returns an error for any policy the pipeline can not run.
func (c Config) Check() error {
	if c.Walkers < 2*c.Variant.Dim()+2 || c.Walkers%2 != 0 {
		return errors.Errorf("Walker count %d invalid for %d parameters", c.Walkers, c.Variant.Dim())
	}
	if c.Steps < 1 {
		return errors.Errorf("Step count must be >= 1, got %d", c.Steps)
	}
	if c.Discard < 0 || c.Discard >= c.Steps {
		return errors.Errorf("Burn-in discard %d invalid for %d steps", c.Discard, c.Steps)
	}
	if c.Thin < 1 {
		return errors.Errorf("Thin stride must be >= 1, got %d", c.Thin)
	}

	retained := (c.Steps - c.Discard) * c.Walkers / c.Thin
	if c.Draws < 1 || c.Draws > retained {
		return errors.Errorf("Draw count %d invalid for %d retained samples", c.Draws, retained)
	}

	if c.JitterScale <= 0 {
		return errors.Errorf("Jitter scale must be positive, got %v", c.JitterScale)
	}

	return nil
}
