package scheduler

import (
	"context"
	"errors"
	"fmt"

	"icos-renderer/internal/descriptor"
	"icos-renderer/internal/expr"
	"icos-renderer/internal/geometry"
	"icos-renderer/internal/patch"
	"icos-renderer/internal/symmetry"
)

// Param is one animation parameter of a shape.
type Param struct {
	Formula string
	Default float64
}

// Mesh is the recomputed output of one descriptor mesh entry.
type Mesh struct {
	Tag     symmetry.Tag
	Buffers []geometry.VertexBuffer
}

// Session is everything derived from one shape selection. It is built
// once and never modified; selecting another shape builds a new one.
type Session struct {
	shape  string
	params []Param
	sets   []*geometry.InstanceSet
}

// NewSession compiles every mesh of g and generates its instances. Any
// error aborts the whole session.
func NewSession(shape string, g descriptor.Geometry, axes symmetry.Axes) (*Session, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("scheduler: %s: %w", shape, err)
	}

	params := make([]Param, len(g.Params))
	for i, src := range g.Params {
		v, err := expr.Value(src)
		if err != nil {
			return nil, fmt.Errorf("scheduler: %s: param %d: %w", shape, i+1, err)
		}
		params[i] = Param{Formula: src, Default: v}
	}

	sets := make([]*geometry.InstanceSet, len(g.Meshes))
	for i, m := range g.Meshes {
		tag, err := symmetry.ParseTag(m.Symmetry)
		if err != nil {
			return nil, fmt.Errorf("scheduler: %s: mesh %d: %w", shape, i, err)
		}
		p, err := patch.Compile(m.Positions, m.Indices, len(params))
		if err != nil {
			return nil, fmt.Errorf("scheduler: %s: mesh %d: %w", shape, i, err)
		}
		set, err := geometry.New(tag, p, axes)
		if err != nil {
			return nil, fmt.Errorf("scheduler: %s: mesh %d: %w", shape, i, err)
		}
		sets[i] = set
	}

	return &Session{shape: shape, params: params, sets: sets}, nil
}

// LoadSession fetches the descriptor for shape from src and builds a
// session from it.
func LoadSession(ctx context.Context, src descriptor.Source, shape string, axes symmetry.Axes) (*Session, error) {
	g, err := src.Geometry(ctx, shape)
	if err != nil {
		return nil, fmt.Errorf("scheduler: load %s: %w", shape, err)
	}
	return NewSession(shape, g, axes)
}

func (s *Session) Shape() string                 { return s.shape }
func (s *Session) Params() []Param               { return s.params }
func (s *Session) Arity() int                    { return len(s.params) }
func (s *Session) Sets() []*geometry.InstanceSet { return s.sets }

// Defaults returns the default parameter vector.
func (s *Session) Defaults() []float64 {
	out := make([]float64, len(s.params))
	for i, p := range s.params {
		out[i] = p.Default
	}
	return out
}

// Instances returns the total number of placed instances over all meshes.
func (s *Session) Instances() int {
	n := 0
	for _, set := range s.sets {
		n += set.Len()
	}
	return n
}

// Recompute evaluates every mesh at params.
func (s *Session) Recompute(params []float64) ([]Mesh, error) {
	out := make([]Mesh, len(s.sets))
	for i, set := range s.sets {
		bufs, err := set.Recompute(params)
		if err != nil {
			return nil, fmt.Errorf("scheduler: %s: mesh %d: %w", s.shape, i, err)
		}
		out[i] = Mesh{Tag: set.Tag(), Buffers: bufs}
	}
	return out, nil
}

// LoadAxes evaluates the constants descriptor from src, falling back to
// the standard axes when no source has one.
func LoadAxes(ctx context.Context, src descriptor.Source) (symmetry.Axes, error) {
	k, err := src.Consts(ctx)
	if errors.Is(err, descriptor.ErrNotFound) {
		return symmetry.StandardAxes(), nil
	}
	if err != nil {
		return symmetry.Axes{}, fmt.Errorf("scheduler: constants: %w", err)
	}
	return symmetry.AxesFromConsts(k)
}
