package pipeline

import (
	"time"

	"github.com/pfrederiksen/yeg-events/internal/event"
	"github.com/pfrederiksen/yeg-events/internal/logger"
)

// Step transforms a batch of events
type Step interface {
	// Name identifies the step in logs and metrics
	Name() string
	// Run returns the processed events, never more than it was given
	Run(events []*event.Event) ([]*event.Event, error)
}

// StepFunc adapts a plain function to the Step interface
type StepFunc struct {
	StepName string
	Fn       func(events []*event.Event) ([]*event.Event, error)
}

// Name returns the configured step name
func (s StepFunc) Name() string {
	return s.StepName
}

// Run calls the wrapped function
func (s StepFunc) Run(events []*event.Event) ([]*event.Event, error) {
	return s.Fn(events)
}

// StepObserver receives per-step cardinality and timing
type StepObserver interface {
	ObserveStep(step string, in, out int, duration time.Duration)
}

// Pipeline runs a fixed sequence of steps over a batch of events
type Pipeline struct {
	steps    []Step
	logger   *logger.Logger
	observer StepObserver
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger used for step progress
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithObserver reports every step run to o
func WithObserver(o StepObserver) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// New creates a pipeline. The steps slice is copied; later changes to it
// do not affect the pipeline.
func New(steps []Step, opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:  append([]Step(nil), steps...),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Steps returns the names of the configured steps in run order
func (p *Pipeline) Steps() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Run applies every step in order, feeding each step the previous output.
// A step error stops the run and is returned as is, with no partial result.
func (p *Pipeline) Run(events []*event.Event) ([]*event.Event, error) {
	processed := make([]*event.Event, len(events))
	copy(processed, events)

	for _, step := range p.steps {
		in := len(processed)
		started := time.Now()

		out, err := step.Run(processed)
		if err != nil {
			p.logger.Error("Pipeline step failed", logger.Fields{
				"step":   step.Name(),
				"events": in,
			}, err)
			return nil, err
		}

		elapsed := time.Since(started)
		if p.observer != nil {
			p.observer.ObserveStep(step.Name(), in, len(out), elapsed)
		}
		p.logger.Debug("Pipeline step finished", logger.Fields{
			"step":     step.Name(),
			"in":       in,
			"out":      len(out),
			"duration": elapsed.String(),
		})

		processed = out
	}

	return processed, nil
}
