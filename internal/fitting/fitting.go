// Package fitting scores memory-model parameters against free-recall data.
//
// It replays observed recall sequences through a model to compute a negative
// log-likelihood, or simulates recall and compares an organizational curve to
// a target by mean squared error, and wraps either score as an objective
// function for parameter search.
package fitting

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/rcliao/recall-fit/internal/cmr"
	"github.com/rcliao/recall-fit/internal/logging"
	"github.com/rcliao/recall-fit/internal/model"
	"github.com/rcliao/recall-fit/internal/organization"
)

// ErrLengthMismatch is returned by an Objective called with a vector whose
// length differs from its free names.
var ErrLengthMismatch = model.ErrLengthMismatch

// Model is a memory built from one studied list.
type Model interface {
	// Experience studies a presentation.
	Experience(p model.Presentation) error
	// BeginRecall enters the recall phase.
	BeginRecall() error
	// ForceRecall advances recall by a given choice. Stop returns the model
	// to its post-encoding state.
	ForceRecall(r model.Recall) error
	// Outcomes is the distribution over the next choice.
	Outcomes() model.Distribution
	// FreeRecall samples a full recall sequence of 0-based identities and
	// leaves the model in its post-encoding state.
	FreeRecall(rng *rand.Rand) ([]int, error)
}

// Builder constructs an unstudied model.
type Builder func(itemCount, listLength int, p model.Parameters) (Model, error)

// Summarizer reduces a simulated corpus to organizational curves. Only the
// last curve is compared with the target.
type Summarizer func(presentations []model.Presentation, corpus organization.Corpus, simulations int) ([][]float64, error)

// Recorder receives every objective evaluation.
type Recorder interface {
	Record(ctx context.Context, x []float64, p model.Parameters, score float64) error
}

// CMR builds the context maintenance and retrieval model.
func CMR(itemCount, listLength int, p model.Parameters) (Model, error) {
	m, err := cmr.New(itemCount, listLength, p)
	if err != nil {
		return nil, err
	}
	return m, nil
}

type config struct {
	build     Builder
	summarize Summarizer
	logger    *slog.Logger
	rng       *rand.Rand
	recorder  Recorder
}

// Option configures the engines and objective builders.
type Option func(*config)

// WithBuilder replaces the CMR builder.
func WithBuilder(b Builder) Option { return func(c *config) { c.build = b } }

// WithSummarizer replaces RecallByLag as the organizational statistic.
func WithSummarizer(s Summarizer) Option { return func(c *config) { c.summarize = s } }

// WithLogger sets the logger for per-corpus debug output.
func WithLogger(l *slog.Logger) Option { return func(c *config) { c.logger = l } }

// WithRand sets the random source used by free recall simulations.
func WithRand(r *rand.Rand) Option { return func(c *config) { c.rng = r } }

// WithRecorder persists every objective evaluation.
func WithRecorder(r Recorder) Option { return func(c *config) { c.recorder = r } }

func newConfig(opts []Option) *config {
	c := &config{
		build:     CMR,
		summarize: organization.RecallByLag,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.Default()
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c
}
