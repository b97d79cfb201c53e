package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/combine"
	"github.com/Sumatoshi-tech/streamgraph/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "streamgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultWorkers, cfg.Engine.Workers)
	assert.InDelta(t, config.DefaultWeightTolerance, cfg.Engine.WeightTolerance, 0)
	assert.InDelta(t, config.DefaultZeroThreshold, cfg.Engine.ZeroThreshold, 0)
	assert.Equal(t, config.DefaultDirection, cfg.Cliques.Direction)
	assert.Zero(t, cfg.Cliques.Delta)
	assert.Equal(t, config.DefaultLogFormat, cfg.Logging.Format)
	assert.Empty(t, cfg.Combine.Union)
	assert.False(t, cfg.Telemetry.Prometheus)

	level, err := cfg.Logging.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadConfig_ValidFile_Unmarshals(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `engine:
  workers: 4
  zero_threshold: 0.5
combine:
  union: max
  measure: min-of-sums
cliques:
  direction: out
logging:
  level: debug
  format: json
telemetry:
  otlp_endpoint: localhost:4317
  sample_ratio: 0.25
  prometheus: true
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.InDelta(t, 0.5, cfg.Engine.ZeroThreshold, 0)
	assert.Equal(t, "max", cfg.Combine.Union)
	assert.Equal(t, "min-of-sums", cfg.Combine.Measure)
	assert.Equal(t, "out", cfg.Cliques.Direction)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.InDelta(t, 0.25, cfg.Telemetry.SampleRatio, 0)
	assert.True(t, cfg.Telemetry.Prometheus)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv("STREAMGRAPH_ENGINE_WORKERS", "6")
	t.Setenv("STREAMGRAPH_CLIQUES_DIRECTION", "in")

	cfg, err := config.LoadConfig(writeConfig(t, "engine:\n  workers: 2\n"))
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Engine.Workers)
	assert.Equal(t, "in", cfg.Cliques.Direction)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "engine: [unterminated"))
	require.Error(t, err)
}

func TestLoadConfig_Validation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
		want    error
	}{
		{"negative workers", "engine:\n  workers: -1\n", config.ErrInvalidWorkers},
		{"negative tolerance", "engine:\n  weight_tolerance: -0.1\n", config.ErrInvalidThreshold},
		{"unknown union", "combine:\n  union: mean\n", config.ErrInvalidCombine},
		{"unknown measure", "combine:\n  measure: ratio\n", config.ErrInvalidCombine},
		{"direction", "cliques:\n  direction: up\n", config.ErrInvalidDirection},
		{"delta", "cliques:\n  delta: -2\n", config.ErrInvalidDelta},
		{"log level", "logging:\n  level: loud\n", config.ErrInvalidLogLevel},
		{"log format", "logging:\n  format: xml\n", config.ErrInvalidLogFormat},
		{"sample ratio", "telemetry:\n  sample_ratio: 2\n", config.ErrInvalidSampleRatio},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tc.content))
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidate_WrapsCombineLookup(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Combine: config.CombineConfig{Cartesian: "avg"},
		Cliques: config.CliqueConfig{Direction: "both"},
		Logging: config.LoggingConfig{Level: "info", Format: "text"},
	}

	err := cfg.Validate()
	require.ErrorIs(t, err, config.ErrInvalidCombine)
	require.ErrorIs(t, err, combine.ErrUnknown)
}
