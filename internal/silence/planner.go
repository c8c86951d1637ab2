package silence

import "io"

// Planner runs parse, rescale and segment building with one validated
// config. It holds no mutable state and is safe for concurrent use.
type Planner struct {
	cfg  RescaleConfig
	hook Hook
}

type Option func(*Planner)

// WithHook traces every pipeline step through h.
func WithHook(h Hook) Option {
	return func(p *Planner) {
		p.hook = h
	}
}

// NewPlanner fails with ErrInvalidConfig before any work is done.
func NewPlanner(cfg RescaleConfig, opts ...Option) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Planner{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Planner) Config() RescaleConfig {
	return p.cfg
}

// Plan parses a silencedetect report and plans the cut.
func (p *Planner) Plan(report io.Reader) (*Plan, error) {
	detected, err := ParseReport(report, p.hook)
	if err != nil {
		return nil, err
	}
	return p.PlanIntervals(detected)
}

// PlanIntervals plans the cut for already parsed silences.
func (p *Planner) PlanIntervals(detected []Interval) (*Plan, error) {
	rescaled, err := RescaleAll(detected, p.cfg, p.hook)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Detected: detected,
		Rescaled: rescaled,
		Segments: BuildSegments(rescaled, p.hook),
	}, nil
}
