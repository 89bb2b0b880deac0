// Package batch resolves a strategy against many confound files concurrently
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethpandaops/confounds/pkg/loader"
	"github.com/ethpandaops/confounds/pkg/observability"
	"github.com/ethpandaops/confounds/pkg/regressors"
	"github.com/ethpandaops/confounds/pkg/strategy"
	"github.com/ethpandaops/confounds/pkg/table"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidConcurrency is returned when concurrency is not positive
var ErrInvalidConcurrency = errors.New("concurrency must be positive")

// Stages a file can fail in
const (
	StagePaths   = "paths"
	StageLoad    = "load"
	StageResolve = "resolve"
	StageSink    = "sink"
)

// Config configures batch processing
type Config struct {
	Concurrency int `yaml:"concurrency" default:"4"`
}

// Validate checks the batch configuration
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidConcurrency, c.Concurrency)
	}

	return nil
}

// Loader reads one run's confound table and metadata
type Loader interface {
	Load(paths loader.Paths) (*table.Table, *table.Metadata, error)
}

// Resolver turns a strategy and a table into regressors
type Resolver interface {
	Resolve(s strategy.Strategy, tbl *table.Table, meta *table.Metadata) (*regressors.RegressorSet, error)
}

// Sink receives every successfully resolved file. It is called from the
// goroutine that resolved the file.
type Sink func(ctx context.Context, result *Result) error

// Result is the outcome of one file. Err is set when the file failed; the
// other files of the batch are unaffected.
type Result struct {
	RunID    string
	Input    string
	Paths    loader.Paths
	Set      *regressors.RegressorSet
	Stage    string
	Err      error
	Duration time.Duration
}

// Failed reports whether the file failed
func (r *Result) Failed() bool {
	return r.Err != nil
}

// Summary is the outcome of a batch, with results in input order
type Summary struct {
	RunID   string
	Started time.Time
	Elapsed time.Duration
	Results []*Result
}

// Failed returns the number of failed files
func (s *Summary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if r.Failed() {
			n++
		}
	}

	return n
}

// Option configures a Processor
type Option func(*Processor)

// WithConcurrency sets the maximum number of files resolved at once
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithSink sets the callback that receives resolved files
func WithSink(sink Sink) Option {
	return func(p *Processor) {
		p.sink = sink
	}
}

// Processor resolves one strategy against many files
type Processor struct {
	log         logrus.FieldLogger
	loader      Loader
	resolver    Resolver
	strategy    strategy.Strategy
	concurrency int
	sink        Sink
}

// NewProcessor creates a processor
func NewProcessor(log logrus.FieldLogger, l Loader, r Resolver, s strategy.Strategy, opts ...Option) *Processor {
	p := &Processor{
		log:         log.WithField("component", "batch"),
		loader:      l,
		resolver:    r,
		strategy:    s,
		concurrency: 4,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run resolves every input. A failing file never stops its siblings; the
// returned error is only set when ctx is cancelled.
func (p *Processor) Run(ctx context.Context, inputs []string) (*Summary, error) {
	summary := &Summary{
		RunID:   uuid.NewString(),
		Started: time.Now(),
		Results: make([]*Result, len(inputs)),
	}

	log := p.log.WithField("run_id", summary.RunID)
	log.WithFields(logrus.Fields{
		"files":       len(inputs),
		"concurrency": p.concurrency,
	}).Info("Starting batch")

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, input := range inputs {
		i, input := i, input

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				summary.Results[i] = &Result{RunID: summary.RunID, Input: input, Err: err}
				return err
			}

			result := p.process(ctx, summary.RunID, input)
			summary.Results[i] = result

			if result.Failed() {
				log.WithError(result.Err).WithFields(logrus.Fields{
					"file":  input,
					"stage": result.Stage,
				}).Warn("File failed")

				return nil
			}

			log.WithFields(logrus.Fields{
				"file":       input,
				"regressors": len(result.Set.Names),
				"duration":   result.Duration,
			}).Debug("File resolved")

			return nil
		})
	}

	err := g.Wait()
	summary.Elapsed = time.Since(summary.Started)

	for i, r := range summary.Results {
		if r == nil {
			summary.Results[i] = &Result{RunID: summary.RunID, Input: inputs[i], Err: context.Canceled}
		}
	}

	log.WithFields(logrus.Fields{
		"files":   len(inputs),
		"failed":  summary.Failed(),
		"elapsed": summary.Elapsed,
	}).Info("Batch complete")

	return summary, err
}

func (p *Processor) process(ctx context.Context, runID, input string) *Result {
	start := time.Now()
	observability.RecordFileStart()

	result := &Result{RunID: runID, Input: input}
	result.Stage, result.Err = p.resolve(ctx, result)
	result.Duration = time.Since(start)

	status := observability.StatusSuccess
	if result.Failed() {
		status = observability.StatusFailed
		observability.RecordError("batch", result.Stage)
	} else {
		result.Stage = ""
	}
	observability.RecordFileComplete(status, result.Duration.Seconds())

	return result
}

// resolve fills result and returns the stage that failed
func (p *Processor) resolve(ctx context.Context, result *Result) (string, error) {
	paths, err := loader.ResolvePaths(result.Input)
	if err != nil {
		return StagePaths, err
	}
	result.Paths = paths

	tbl, meta, err := p.loader.Load(paths)
	if err != nil {
		return StageLoad, err
	}

	set, err := p.resolver.Resolve(p.strategy, tbl, meta)
	if err != nil {
		return StageResolve, err
	}
	result.Set = set

	for _, g := range set.Groups {
		observability.RecordCategory(string(g.Category), len(g.Names))
	}
	if set.Mask != nil {
		observability.RecordScrub(set.Mask.Excluded())
	}
	if set.Directive.UsePreDenoised {
		observability.RecordSubstitution(string(set.Directive.Category))
	}

	if p.sink != nil {
		if err := p.sink(ctx, result); err != nil {
			return StageSink, err
		}
	}

	return "", nil
}
