package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LiBuchauer/spatial-MP-discordances/model"
)

func TestPolicySelection(t *testing.T) {
	assert := assert.New(t)

	sp := &startupParams{variantName: "free-init"}
	assert.NoError(sp.Setup())
	cfg := sp.Policy()
	assert.Equal(model.FreeInit, cfg.Variant)
	assert.Equal(32, cfg.Walkers)
	assert.Equal(6000, cfg.Steps)

	// The reference-comparison variant defaults to the light schedule
	sp = &startupParams{variantName: "fixed-init-reference"}
	assert.NoError(sp.Setup())
	cfg = sp.Policy()
	assert.Equal(model.FixedInitReference, cfg.Variant)
	assert.Equal(600, cfg.Steps)
	assert.Equal(50, cfg.Discard)
	assert.Equal(1, cfg.Thin)

	// Positive flags override the schedule
	sp = &startupParams{variantName: "fixed-init-decay", steps: 100, discard: 10, thin: 2, draws: 50}
	assert.NoError(sp.Setup())
	cfg = sp.Policy()
	assert.Equal(100, cfg.Steps)
	assert.Equal(10, cfg.Discard)
	assert.Equal(2, cfg.Thin)
	assert.Equal(50, cfg.Draws)

	sp = &startupParams{variantName: "nope"}
	assert.Error(sp.Setup())
}
