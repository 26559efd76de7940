package feed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedParamsMatchDefaults(t *testing.T) {
	t.Setenv(paramsEnv, "")
	assert.Equal(t, DefaultParams(), LoadParams(nil))
}

func TestParseParamsOverlaysDefaults(t *testing.T) {
	p, err := ParseParams([]byte("sharp_probability: 0.9\ndraw_multiplier: 5\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.9, p.SharpProbability)
	assert.Equal(t, 5, p.DrawMultiplier)
	assert.Equal(t, 0.1, p.SharpTemperature)
	assert.Equal(t, 10.0, p.SmoothTemperature)
}

func TestParseParamsRejectsInvalid(t *testing.T) {
	for _, raw := range []string{
		"sharp_temperature: 0",
		"smooth_temperature: -1",
		"sharp_probability: 1.5",
		"draw_multiplier: 0",
		"color_temperature: 0",
		"sharp_temperature: [",
	} {
		_, err := ParseParams([]byte(raw))
		assert.Error(t, err, raw)
	}
}

func TestLoadParamsFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("smooth_temperature: 20\n"), 0o600))
	t.Setenv(paramsEnv, path)
	assert.Equal(t, 20.0, LoadParams(nil).SmoothTemperature)

	t.Setenv(paramsEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, DefaultParams(), LoadParams(nil))
}

func TestNewSamplerFallsBackOnInvalidParams(t *testing.T) {
	s := NewSampler(Params{})
	assert.Equal(t, DefaultParams(), s.Params)
}
