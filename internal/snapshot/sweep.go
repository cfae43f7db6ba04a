package snapshot

import (
	"fmt"

	"icos-renderer/internal/raster"
	"icos-renderer/internal/scheduler"
)

// sweepControls moves one parameter from 0 to 1 and holds the rest at
// their defaults.
type sweepControls struct {
	base   []float64
	param  int
	frame  int
	frames int
}

func (c *sweepControls) Sample() []float64 {
	t := 0.0
	if c.frames > 1 {
		t = float64(c.frame) / float64(c.frames-1)
	}
	out := append([]float64(nil), c.base...)
	out[c.param] = scheduler.Quantize(t)
	return out
}

// Sweep drives a scheduler over frames ticks, moving parameter param from
// 0 to 1, and returns one job per recompute. Ticks whose quantized
// parameters repeat the previous tick yield no job. A shape without
// parameters yields a single job at its defaults. Every job shares the
// radius of the largest frame so the framing holds still.
func Sweep(sess *scheduler.Session, param, frames int) ([]Job, error) {
	var jobs []Job
	var controls scheduler.Controls
	if sess.Arity() == 0 || frames <= 1 {
		controls = scheduler.NewControlVector(sess.Defaults())
		frames = 1
	} else {
		if param < 0 || param >= sess.Arity() {
			return nil, fmt.Errorf("snapshot: %s has no parameter %d (%d params)", sess.Shape(), param, sess.Arity())
		}
		base := scheduler.NewControlVector(sess.Defaults()).Sample()
		controls = &sweepControls{base: base, param: param, frames: frames}
	}

	s := scheduler.New(sess, controls, scheduler.SurfaceFunc(func(f scheduler.Frame) error {
		jobs = append(jobs, Job{
			Shape:  f.Shape,
			Frame:  len(jobs),
			Params: f.Params,
			Meshes: f.Meshes,
		})
		return nil
	}), nil)

	for i := 0; i < frames; i++ {
		if sc, ok := controls.(*sweepControls); ok {
			sc.frame = i
		}
		if _, err := s.Tick(); err != nil {
			return nil, fmt.Errorf("snapshot: %s frame %d: %w", sess.Shape(), i, err)
		}
	}

	var radius float64
	for _, j := range jobs {
		if r := raster.Extent(j.Meshes); r > radius {
			radius = r
		}
	}
	for i := range jobs {
		jobs[i].Radius = radius
	}
	return jobs, nil
}
