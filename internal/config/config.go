// Package config loads evaluator settings from a YAML file, SEDEVAL_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	sedeval "github.com/jamesainslie/go-sedeval"
	"github.com/jamesainslie/go-sedeval/internal/bench"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SEDEVAL"

// Keys shared by the config file, the environment and flag bindings.
const (
	KeyTimeResolution     = "time_resolution"
	KeyCollar             = "t_collar"
	KeyPercentageOfLength = "percentage_of_length"
	KeyEvaluateOnset      = "evaluate_onset"
	KeyEvaluateOffset     = "evaluate_offset"
	KeyMatching           = "event_matching_type"
	KeyBeta               = "beta"
	KeyBalanceFactor      = "balance_factor"
	KeyEmptySystemOutput  = "empty_system_output"
	KeyLabels             = "labels"
	KeyWorkers            = "workers"
	KeyLogLevel           = "log_level"
)

// Config is the decoded evaluator configuration.
type Config struct {
	TimeResolution     float64  `mapstructure:"time_resolution"`
	Collar             float64  `mapstructure:"t_collar"`
	PercentageOfLength float64  `mapstructure:"percentage_of_length"`
	EvaluateOnset      bool     `mapstructure:"evaluate_onset"`
	EvaluateOffset     bool     `mapstructure:"evaluate_offset"`
	Matching           string   `mapstructure:"event_matching_type"`
	Beta               float64  `mapstructure:"beta"`
	BalanceFactor      float64  `mapstructure:"balance_factor"`
	EmptySystemOutput  string   `mapstructure:"empty_system_output"`
	Labels             []string `mapstructure:"labels"`
	Workers            int      `mapstructure:"workers"`
	LogLevel           string   `mapstructure:"log_level"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	d := bench.DefaultConfig()
	v.SetDefault(KeyTimeResolution, d.TimeResolution)
	v.SetDefault(KeyCollar, d.Collar)
	v.SetDefault(KeyPercentageOfLength, d.PercentageOfLength)
	v.SetDefault(KeyEvaluateOnset, d.EvaluateOnset)
	v.SetDefault(KeyEvaluateOffset, d.EvaluateOffset)
	v.SetDefault(KeyMatching, d.Matching.String())
	v.SetDefault(KeyBeta, d.Beta)
	v.SetDefault(KeyBalanceFactor, d.BalanceFactor)
	v.SetDefault(KeyEmptySystemOutput, d.EmptyOutput.String())
	v.SetDefault(KeyLabels, []string{})
	v.SetDefault(KeyWorkers, d.Workers)
	v.SetDefault(KeyLogLevel, "info")
}

// Load reads path (if not empty) and the environment into v and decodes the
// result. Flags bound to v with BindPFlag take precedence over both.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	if c.TimeResolution <= 0 {
		errs = append(errs, fmt.Errorf("%s must be > 0, got %v", KeyTimeResolution, c.TimeResolution))
	}
	if c.Collar < 0 {
		errs = append(errs, fmt.Errorf("%s must be >= 0, got %v", KeyCollar, c.Collar))
	}
	if c.PercentageOfLength < 0 || c.PercentageOfLength > 1 {
		errs = append(errs, fmt.Errorf("%s must be in [0, 1], got %v", KeyPercentageOfLength, c.PercentageOfLength))
	}
	if !c.EvaluateOnset && !c.EvaluateOffset {
		errs = append(errs, fmt.Errorf("%s and %s cannot both be false", KeyEvaluateOnset, KeyEvaluateOffset))
	}
	if c.Beta <= 0 {
		errs = append(errs, fmt.Errorf("%s must be > 0, got %v", KeyBeta, c.Beta))
	}
	if c.BalanceFactor < 0 || c.BalanceFactor > 1 {
		errs = append(errs, fmt.Errorf("%s must be in [0, 1], got %v", KeyBalanceFactor, c.BalanceFactor))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("%s must be >= 0, got %d", KeyWorkers, c.Workers))
	}
	if _, err := sedeval.ParseMatching(c.Matching); err != nil {
		errs = append(errs, err)
	}
	if _, err := sedeval.ParseEmptyOutput(c.EmptySystemOutput); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", sedeval.ErrInvalidConfiguration, err)
	}
	return nil
}

// Bench converts the configuration into evaluation parameters.
func (c Config) Bench(logger *slog.Logger) (bench.Config, error) {
	matching, err := sedeval.ParseMatching(c.Matching)
	if err != nil {
		return bench.Config{}, err
	}
	empty, err := sedeval.ParseEmptyOutput(c.EmptySystemOutput)
	if err != nil {
		return bench.Config{}, err
	}

	var labels []string
	if len(c.Labels) > 0 {
		labels = c.Labels
	}
	return bench.Config{
		Labels:             labels,
		TimeResolution:     c.TimeResolution,
		Collar:             c.Collar,
		PercentageOfLength: c.PercentageOfLength,
		EvaluateOnset:      c.EvaluateOnset,
		EvaluateOffset:     c.EvaluateOffset,
		Matching:           matching,
		Beta:               c.Beta,
		BalanceFactor:      c.BalanceFactor,
		EmptyOutput:        empty,
		Workers:            c.Workers,
		Logger:             logger,
	}, nil
}

// Options converts the configuration into engine options.
func (c Config) Options(logger *slog.Logger) ([]sedeval.Option, error) {
	bc, err := c.Bench(logger)
	if err != nil {
		return nil, err
	}
	opts := []sedeval.Option{
		sedeval.WithTimeResolution(bc.TimeResolution),
		sedeval.WithCollar(bc.Collar),
		sedeval.WithPercentageOfLength(bc.PercentageOfLength),
		sedeval.WithEvaluateOnset(bc.EvaluateOnset),
		sedeval.WithEvaluateOffset(bc.EvaluateOffset),
		sedeval.WithMatching(bc.Matching),
		sedeval.WithBeta(bc.Beta),
		sedeval.WithBalanceFactor(bc.BalanceFactor),
		sedeval.WithEmptySystemOutput(bc.EmptyOutput),
	}
	if logger != nil {
		opts = append(opts, sedeval.WithLogger(logger))
	}
	return opts, nil
}

// ParseLevel converts debug, info, warn or error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown %s %q", KeyLogLevel, s)
	}
}

// NewLogger returns a text logger writing to w. verbose forces debug level.
func NewLogger(w io.Writer, level string, verbose bool) *slog.Logger {
	lvl, err := ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
