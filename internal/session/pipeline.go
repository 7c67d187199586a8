package session

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/ironsheep/scan-highlights/internal/geometry"
	"github.com/ironsheep/scan-highlights/internal/highlight"
	"github.com/ironsheep/scan-highlights/internal/hittest"
)

// Frame is one detector delivery: the frame metadata, an optional layout
// override and the detections.
type Frame struct {
	Info       highlight.FrameInfo   `json:"frame"`
	Viewport   *geometry.Size        `json:"viewport,omitempty"`
	Detections []highlight.Detection `json:"barcodes"`
}

// Options configures a Pipeline.
type Options struct {
	// Builder performs the per-frame transform. Its Logger defaults to the
	// pipeline logger when unset.
	Builder highlight.Builder

	// FuzzyDistance is the near-miss tolerance for taps; 0 disables it.
	FuzzyDistance float64

	// FrameRateHint is the expected camera rate. It only sets the build time
	// above which a frame is reported as slow; 0 disables the report.
	FrameRateHint float64

	// OnScanned, if set, is called from the frame context after each publish.
	OnScanned func(*Snapshot)

	// OnTapped, if set, is called from the interactive context when a tap
	// selects a highlight.
	OnTapped func(hittest.Hit)

	Logger *zap.SugaredLogger
}

// Pipeline builds, publishes and hit-tests frames.
type Pipeline struct {
	builder   highlight.Builder
	store     Store
	viewport  atomic.Pointer[geometry.Size]
	fuzzy     atomic.Float64
	budget    time.Duration
	onScanned func(*Snapshot)
	onTapped  func(hittest.Hit)
	logger    *zap.SugaredLogger
}

// NewPipeline creates a pipeline. The layout starts unmeasured (0x0), so
// frames produce empty snapshots until SetViewport is called or a frame
// carries its own viewport.
func NewPipeline(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	p := &Pipeline{
		builder:   opts.Builder,
		onScanned: opts.OnScanned,
		onTapped:  opts.OnTapped,
		logger:    logger,
	}
	if p.builder.Logger == nil {
		p.builder.Logger = logger
	}
	if opts.FrameRateHint > 0 {
		p.budget = time.Duration(float64(time.Second) / opts.FrameRateHint)
	}
	p.fuzzy.Store(opts.FuzzyDistance)
	p.viewport.Store(&geometry.Size{})
	return p
}

// Store exposes the snapshot store for readers.
func (p *Pipeline) Store() *Store {
	return &p.store
}

// SetViewport records the current layout. Invalid sizes are rejected.
func (p *Pipeline) SetViewport(s geometry.Size) error {
	if err := s.Validate(); err != nil {
		return errors.Wrap(err, "viewport")
	}
	p.viewport.Store(&s)
	return nil
}

// Viewport returns the current layout.
func (p *Pipeline) Viewport() geometry.Size {
	return *p.viewport.Load()
}

// SetFuzzyDistance changes the tap tolerance. Negative values disable it.
func (p *Pipeline) SetFuzzyDistance(d float64) {
	if d < 0 {
		d = 0
	}
	p.fuzzy.Store(d)
}

// FuzzyDistance returns the tap tolerance.
func (p *Pipeline) FuzzyDistance() float64 {
	return p.fuzzy.Load()
}

// ProcessFrame builds and publishes one frame. On error nothing is published.
func (p *Pipeline) ProcessFrame(f Frame) (snap *Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			snap, err = nil, errors.Errorf("frame build panicked: %v", r)
		}
	}()

	viewport := p.Viewport()
	if f.Viewport != nil {
		viewport = *f.Viewport
	}

	start := time.Now()
	res, err := p.builder.Build(f.Detections, f.Info, viewport)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	snap = &Snapshot{
		Frame:      f.Info,
		Viewport:   viewport,
		Highlights: res.Highlights,
		Warnings:   res.Warnings,
		BuiltAt:    start,
		BuildTime:  elapsed,
	}
	p.store.Publish(snap)

	if p.budget > 0 && elapsed > p.budget {
		p.logger.Warnw("frame build exceeded frame interval",
			"seq", snap.Seq, "elapsed", elapsed, "budget", p.budget, "detections", len(f.Detections))
	}
	if p.onScanned != nil {
		p.onScanned(snap)
	}
	return snap, nil
}

// Run processes frames until ctx is done or frames is closed. Frames that
// fail are logged and skipped.
func (p *Pipeline) Run(ctx context.Context, frames <-chan Frame) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			if _, err := p.ProcessFrame(f); err != nil {
				p.logger.Warnw("dropping frame", "error", err)
			}
		}
	}
}

// Tap resolves a display-space tap against the current snapshot.
func (p *Pipeline) Tap(pt geometry.Point) (hittest.Hit, bool) {
	snap := p.store.Latest()
	if snap == nil {
		return hittest.Hit{}, false
	}

	hit, ok := hittest.Resolve(pt, snap.Highlights, p.FuzzyDistance())
	if !ok {
		p.logger.Debugw("tap missed", "tap", pt.String(), "seq", snap.Seq)
		return hit, false
	}

	verb := "near"
	if hit.Inside {
		verb = "on"
	}
	p.logger.Debugw(fmt.Sprintf("tapped %s barcode", verb), "value", hit.Highlight.DisplayValue(), "key", hit.Highlight.Key, "seq", snap.Seq)
	if p.onTapped != nil {
		p.onTapped(hit)
	}
	return hit, true
}
