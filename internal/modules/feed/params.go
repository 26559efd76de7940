package feed

import (
	"embed"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

const paramsEnv = "FEED_SAMPLER_PARAMS_YAML"

//go:embed params.yaml
var paramsFS embed.FS

// Params tunes the cluster sampler.
type Params struct {
	SharpTemperature  float64 `yaml:"sharp_temperature"`
	SmoothTemperature float64 `yaml:"smooth_temperature"`
	SharpProbability  float64 `yaml:"sharp_probability"`
	DrawMultiplier    int     `yaml:"draw_multiplier"`
	ColorTemperature  float64 `yaml:"color_temperature"`
}

type yamlParams struct {
	Sampler string `yaml:"sampler"`
	Version int    `yaml:"version"`
	Params  `yaml:",inline"`
}

func DefaultParams() Params {
	return Params{
		SharpTemperature:  0.1,
		SmoothTemperature: 10,
		SharpProbability:  0.6,
		DrawMultiplier:    3,
		ColorTemperature:  1,
	}
}

func (p Params) Validate() error {
	switch {
	case !(p.SharpTemperature > 0) || math.IsInf(p.SharpTemperature, 0):
		return fmt.Errorf("sharp_temperature must be positive, got %v", p.SharpTemperature)
	case !(p.SmoothTemperature > 0) || math.IsInf(p.SmoothTemperature, 0):
		return fmt.Errorf("smooth_temperature must be positive, got %v", p.SmoothTemperature)
	case !(p.ColorTemperature > 0) || math.IsInf(p.ColorTemperature, 0):
		return fmt.Errorf("color_temperature must be positive, got %v", p.ColorTemperature)
	case !(p.SharpProbability >= 0 && p.SharpProbability <= 1):
		return fmt.Errorf("sharp_probability must be within [0,1], got %v", p.SharpProbability)
	case p.DrawMultiplier < 1:
		return fmt.Errorf("draw_multiplier must be >= 1, got %d", p.DrawMultiplier)
	}
	return nil
}

// ParseParams overlays raw YAML on the defaults.
func ParseParams(raw []byte) (Params, error) {
	spec := yamlParams{Params: DefaultParams()}
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return Params{}, err
	}
	if err := spec.Params.Validate(); err != nil {
		return Params{}, err
	}
	return spec.Params, nil
}

func readParams() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(paramsEnv)); path != "" {
		return os.ReadFile(path)
	}
	return paramsFS.ReadFile("params.yaml")
}

// LoadParams reads the override file or the embedded defaults. Invalid
// input is logged and the built-in defaults are used instead.
func LoadParams(log *logger.Logger) Params {
	raw, err := readParams()
	if err == nil {
		var p Params
		if p, err = ParseParams(raw); err == nil {
			return p
		}
	}
	if log != nil {
		log.Warn("feed: sampler params load failed; using defaults", "error", err)
	}
	return DefaultParams()
}
