// Package config loads the streamgraph configuration from defaults, an
// optional YAML file and STREAMGRAPH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/clique"
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/combine"
)

// Sentinel validation errors.
var (
	ErrInvalidWorkers     = errors.New("engine workers must not be negative")
	ErrInvalidThreshold   = errors.New("thresholds must not be negative")
	ErrInvalidCombine     = errors.New("invalid combination function")
	ErrInvalidDirection   = errors.New("invalid clique direction")
	ErrInvalidDelta       = errors.New("clique delta must not be negative")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("invalid log format")
	ErrInvalidSampleRatio = errors.New("sample ratio must be within [0, 1]")
)

const (
	// configName is the config file name without extension.
	configName = "streamgraph"

	configType = "yaml"
	envPrefix  = "STREAMGRAPH"
)

// Default configuration values.
const (
	DefaultWorkers         = 1
	DefaultZeroThreshold   = 0.0
	DefaultWeightTolerance = 1e-9
	DefaultDirection       = "both"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// Config holds all configuration of the streamgraph binary.
type Config struct {
	Engine    EngineConfig    `mapstructure:"engine"`
	Combine   CombineConfig   `mapstructure:"combine"`
	Cliques   CliqueConfig    `mapstructure:"cliques"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// EngineConfig tunes the sweeps.
type EngineConfig struct {
	// Workers partitions by-key sweeps and clique components.
	Workers int `mapstructure:"workers"`
	// ZeroThreshold is the largest weight difference dropped by hinge loss.
	ZeroThreshold float64 `mapstructure:"zero_threshold"`
	// WeightTolerance is the largest difference between equal weights.
	WeightTolerance float64 `mapstructure:"weight_tolerance"`
}

// CombineConfig names the combination functions of the weighted algebras.
// Empty names keep the defaults of each algebra.
type CombineConfig struct {
	Merge        string `mapstructure:"merge"`
	Union        string `mapstructure:"union"`
	Intersection string `mapstructure:"intersection"`
	Difference   string `mapstructure:"difference"`
	Superset     string `mapstructure:"superset"`
	Nonempty     string `mapstructure:"nonempty"`
	Cartesian    string `mapstructure:"cartesian"`
	Measure      string `mapstructure:"measure"`
}

// CliqueConfig holds clique enumeration settings.
type CliqueConfig struct {
	Direction string `mapstructure:"direction"`
	// Delta widens instantaneous links to windows of this length.
	Delta float64 `mapstructure:"delta"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	Prometheus   bool    `mapstructure:"prometheus"`
}

// LoadConfig loads configuration from file, environment and defaults.
// Without configPath, streamgraph.yaml is searched in the working directory
// and $HOME/.config/streamgraph. A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home + "/.config/streamgraph")
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &cfg, nil
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("engine.workers", DefaultWorkers)
	viperCfg.SetDefault("engine.zero_threshold", DefaultZeroThreshold)
	viperCfg.SetDefault("engine.weight_tolerance", DefaultWeightTolerance)

	for _, key := range []string{
		"merge", "union", "intersection", "difference", "superset", "nonempty", "cartesian", "measure",
	} {
		viperCfg.SetDefault("combine."+key, "")
	}

	viperCfg.SetDefault("cliques.direction", DefaultDirection)
	viperCfg.SetDefault("cliques.delta", 0.0)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", 0.0)
	viperCfg.SetDefault("telemetry.prometheus", false)
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if c.Engine.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Engine.Workers)
	}

	if c.Engine.ZeroThreshold < 0 || c.Engine.WeightTolerance < 0 {
		return fmt.Errorf("%w: zero_threshold=%v weight_tolerance=%v", ErrInvalidThreshold,
			c.Engine.ZeroThreshold, c.Engine.WeightTolerance)
	}

	err := c.Combine.validate()
	if err != nil {
		return err
	}

	_, err = clique.ParseDirection(c.Cliques.Direction)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDirection, err)
	}

	if c.Cliques.Delta < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidDelta, c.Cliques.Delta)
	}

	_, err = c.Logging.SlogLevel()
	if err != nil {
		return err
	}

	if f := c.Logging.Format; f != "text" && f != "json" {
		return fmt.Errorf("%w: %q (want text or json)", ErrInvalidLogFormat, f)
	}

	if r := c.Telemetry.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, r)
	}

	return nil
}

func (c CombineConfig) validate() error {
	check := func(field, name string, lookup func(string) error) error {
		if name == "" {
			return nil
		}

		err := lookup(name)
		if err != nil {
			return fmt.Errorf("%w: combine.%s: %w", ErrInvalidCombine, field, err)
		}

		return nil
	}

	return errors.Join(
		check("merge", c.Merge, known(combine.LookupReduce)),
		check("union", c.Union, knownBinary),
		check("intersection", c.Intersection, knownBinary),
		check("difference", c.Difference, knownBinary),
		check("superset", c.Superset, known(combine.LookupPredicate)),
		check("nonempty", c.Nonempty, known(combine.LookupPredicate)),
		check("cartesian", c.Cartesian, known(combine.LookupTernary)),
		check("measure", c.Measure, known(combine.LookupMeasure)),
	)
}

func known[F any](lookup func(string) (F, error)) func(string) error {
	return func(name string) error {
		_, err := lookup(name)

		return err
	}
}

func knownBinary(name string) error {
	_, err := combine.LookupBinary(name, 0)

	return err
}

// SlogLevel parses the configured level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(l.Level))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}

	return level, nil
}
