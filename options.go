package sedeval

import (
	"fmt"
	"log/slog"
)

// Matching selects how reference and estimated events of one class are paired.
type Matching int

const (
	// MatchGreedy pairs each reference event, in ascending onset order, with
	// the earliest unmatched estimated event that satisfies the tolerance.
	MatchGreedy Matching = iota

	// MatchOptimal finds a maximum-cardinality pairing per class.
	MatchOptimal
)

// String returns the matching name used in configuration files.
func (m Matching) String() string {
	switch m {
	case MatchGreedy:
		return "greedy"
	case MatchOptimal:
		return "optimal"
	default:
		return fmt.Sprintf("Matching(%d)", int(m))
	}
}

// ParseMatching converts "greedy" or "optimal" to a Matching.
func ParseMatching(s string) (Matching, error) {
	switch s {
	case "greedy", "":
		return MatchGreedy, nil
	case "optimal":
		return MatchOptimal, nil
	default:
		return 0, fmt.Errorf("%w: unknown matching %q", ErrInvalidConfiguration, s)
	}
}

// EmptyOutput selects how precision is reported when a class received no
// system output at all.
type EmptyOutput int

const (
	// EmptyOutputZeroScore reports precision 0.
	EmptyOutputZeroScore EmptyOutput = iota

	// EmptyOutputUndefined reports precision NaN, which drops the class from
	// the class-wise precision and F-measure averages.
	EmptyOutputUndefined
)

// String returns the policy name used in configuration files.
func (e EmptyOutput) String() string {
	switch e {
	case EmptyOutputZeroScore:
		return "zero_score"
	case EmptyOutputUndefined:
		return "undefined"
	default:
		return fmt.Sprintf("EmptyOutput(%d)", int(e))
	}
}

// ParseEmptyOutput converts "zero_score" or "undefined" to an EmptyOutput.
func ParseEmptyOutput(s string) (EmptyOutput, error) {
	switch s {
	case "zero_score", "":
		return EmptyOutputZeroScore, nil
	case "undefined":
		return EmptyOutputUndefined, nil
	default:
		return 0, fmt.Errorf("%w: unknown empty system output policy %q", ErrInvalidConfiguration, s)
	}
}

// Option configures a metrics engine.
type Option func(*config)

type config struct {
	timeResolution     float64
	tCollar            float64
	evaluateOnset      bool
	evaluateOffset     bool
	percentageOfLength float64
	matching           Matching
	beta               float64
	balanceFactor      float64
	emptyOutput        EmptyOutput
	logger             *slog.Logger
}

func defaultConfig() config {
	return config{
		timeResolution:     1.0,
		tCollar:            0.2,
		evaluateOnset:      true,
		evaluateOffset:     true,
		percentageOfLength: 0.5,
		matching:           MatchGreedy,
		beta:               1.0,
		balanceFactor:      0.5,
		emptyOutput:        EmptyOutputZeroScore,
		logger:             slog.Default(),
	}
}

func newConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// validate checks the parameters shared by every engine.
func (c config) validate() error {
	if c.beta <= 0 {
		return fmt.Errorf("%w: beta must be > 0, got %v", ErrInvalidConfiguration, c.beta)
	}
	if c.balanceFactor < 0 || c.balanceFactor > 1 {
		return fmt.Errorf("%w: balance factor must be in [0, 1], got %v", ErrInvalidConfiguration, c.balanceFactor)
	}
	return nil
}

// WithTimeResolution sets the segment length in seconds (default: 1.0).
func WithTimeResolution(seconds float64) Option {
	return func(c *config) {
		c.timeResolution = seconds
	}
}

// WithCollar sets the onset/offset tolerance in seconds (default: 0.2).
func WithCollar(seconds float64) Option {
	return func(c *config) {
		c.tCollar = seconds
	}
}

// WithEvaluateOnset toggles the onset condition (default: true).
func WithEvaluateOnset(on bool) Option {
	return func(c *config) {
		c.evaluateOnset = on
	}
}

// WithEvaluateOffset toggles the offset condition (default: true).
func WithEvaluateOffset(on bool) Option {
	return func(c *config) {
		c.evaluateOffset = on
	}
}

// WithPercentageOfLength sets the offset tolerance as a fraction of the
// reference event length (default: 0.5). The looser of this bound and the
// collar applies.
func WithPercentageOfLength(p float64) Option {
	return func(c *config) {
		c.percentageOfLength = p
	}
}

// WithMatching sets the event matching strategy (default: MatchGreedy).
func WithMatching(m Matching) Option {
	return func(c *config) {
		c.matching = m
	}
}

// WithBeta sets the F-measure weight (default: 1.0).
func WithBeta(beta float64) Option {
	return func(c *config) {
		c.beta = beta
	}
}

// WithBalanceFactor sets the specificity weight of balanced accuracy
// (default: 0.5).
func WithBalanceFactor(f float64) Option {
	return func(c *config) {
		c.balanceFactor = f
	}
}

// WithEmptySystemOutput sets precision handling for classes without system
// output (default: EmptyOutputZeroScore).
func WithEmptySystemOutput(h EmptyOutput) Option {
	return func(c *config) {
		c.emptyOutput = h
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
