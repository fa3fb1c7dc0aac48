package extract

import (
	"fmt"

	"github.com/chazu/subvol/pkg/scene"
	"github.com/chazu/subvol/pkg/subvolume"
)

// ErrMalformedInput marks input that cannot be extracted. It is fatal for
// the run.
var ErrMalformedInput = subvolume.ErrMalformedInput

// Config holds the thresholds of one extraction.
type Config struct {
	Epsilon0           float64 // vertex weld distance
	EpsilonCheckPoints float64 // corner coplanarity
	EpsilonLength      float64 // shortest intersection or edge kept
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return ConfigFrom(scene.DefaultSettings())
}

// ConfigFrom copies the thresholds of a scene.
func ConfigFrom(st scene.Settings) Config {
	return Config{
		Epsilon0:           st.Epsilon0,
		EpsilonCheckPoints: st.EpsilonCheckPoints,
		EpsilonLength:      st.EpsilonLength,
	}
}

// Validate rejects non-positive thresholds.
func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"epsilon-zero", c.Epsilon0},
		{"epsilon-check-points", c.EpsilonCheckPoints},
		{"epsilon-length", c.EpsilonLength},
	} {
		if !(f.v > 0) {
			return fmt.Errorf("extract: %s is %g: %w", f.name, f.v, ErrMalformedInput)
		}
	}
	return nil
}
