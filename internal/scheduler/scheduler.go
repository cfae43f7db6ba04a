// Package scheduler drives per-frame recomputation of a shape session,
// recomputing only when the sampled animation parameters change.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"icos-renderer/internal/descriptor"
	"icos-renderer/internal/symmetry"
)

// State is the scheduler's position in its two-state cycle.
type State int

const (
	Idle State = iota
	Recomputing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recomputing:
		return "recomputing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Controls yields the current parameter vector once per tick.
type Controls interface {
	Sample() []float64
}

// ControlSurface is a Controls that can be rebuilt for a new shape.
type ControlSurface interface {
	Controls
	Rebuild(params []Param)
}

// Frame is one recomputed result handed to a Surface.
type Frame struct {
	Shape  string
	Seq    uint64
	Params []float64
	Meshes []Mesh
}

// Surface receives frames.
type Surface interface {
	Present(Frame) error
}

// SurfaceFunc adapts a function to a Surface.
type SurfaceFunc func(Frame) error

func (f SurfaceFunc) Present(fr Frame) error { return f(fr) }

// Scheduler ticks one session. It is not safe for concurrent use.
type Scheduler struct {
	sess     *Session
	controls Controls
	surface  Surface
	logger   *slog.Logger

	state  State
	last   []float64
	primed bool
	seq    uint64
}

// New returns a scheduler whose first Tick always recomputes.
func New(sess *Session, controls Controls, surface Surface, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{sess: sess, controls: controls, surface: surface, logger: logger}
}

func (s *Scheduler) Session() *Session { return s.sess }
func (s *Scheduler) State() State      { return s.state }

// Params returns the last recorded parameter vector.
func (s *Scheduler) Params() []float64 {
	return append([]float64(nil), s.last...)
}

// Invalidate forces the next Tick to recompute.
func (s *Scheduler) Invalidate() { s.primed = false }

func equal(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Tick samples the controls and, if they differ from the recorded
// vector, records them, recomputes every mesh and presents the frame.
// It reports whether a recompute ran.
func (s *Scheduler) Tick() (bool, error) {
	sample := s.controls.Sample()
	if s.primed && equal(sample, s.last) {
		return false, nil
	}

	s.state = Recomputing
	defer func() { s.state = Idle }()

	meshes, err := s.sess.Recompute(sample)
	if err != nil {
		return false, err
	}
	// Only a successful recompute primes the cache, so a failing vector
	// keeps failing on every tick.
	s.last = append(s.last[:0], sample...)
	s.primed = true

	s.seq++
	s.logger.Debug("recomputed", "shape", s.sess.Shape(), "seq", s.seq, "params", s.last)
	if err := s.surface.Present(Frame{Shape: s.sess.Shape(), Seq: s.seq, Params: s.Params(), Meshes: meshes}); err != nil {
		return true, fmt.Errorf("scheduler: present: %w", err)
	}
	return true, nil
}

// Viewer owns the current scheduler and replaces it wholesale on shape
// selection.
type Viewer struct {
	src      descriptor.Source
	axes     symmetry.Axes
	controls ControlSurface
	surface  Surface
	logger   *slog.Logger

	cur *Scheduler
}

func NewViewer(src descriptor.Source, axes symmetry.Axes, controls ControlSurface, surface Surface, logger *slog.Logger) *Viewer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Viewer{src: src, axes: axes, controls: controls, surface: surface, logger: logger}
}

// Select loads shape and, on success, discards the previous session and
// rebuilds the controls. On failure the previous session stays current.
func (v *Viewer) Select(ctx context.Context, shape string) (*Session, error) {
	sess, err := LoadSession(ctx, v.src, shape, v.axes)
	if err != nil {
		v.logger.Warn("shape load failed", "shape", shape, "err", err)
		return nil, err
	}

	v.controls.Rebuild(sess.Params())
	v.cur = New(sess, v.controls, v.surface, v.logger)
	v.logger.Info("shape loaded", "shape", shape, "meshes", len(sess.Sets()),
		"instances", sess.Instances(), "params", sess.Arity())
	return sess, nil
}

// Current returns the active scheduler, or nil before the first
// successful Select.
func (v *Viewer) Current() *Scheduler { return v.cur }

// Tick ticks the active scheduler, if any.
func (v *Viewer) Tick() (bool, error) {
	if v.cur == nil {
		return false, nil
	}
	return v.cur.Tick()
}
