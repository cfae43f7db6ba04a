// Package patch holds the compiled parametric surface fragment that a
// symmetry group replicates.
package patch

import (
	"errors"
	"fmt"

	"icos-renderer/internal/expr"
	"icos-renderer/internal/mathutil"
)

// ErrMalformed is returned for position or index lists that do not
// describe a triangle mesh.
var ErrMalformed = errors.New("patch: malformed")

// Patch is one vertex position per group of three functions (x, y, z)
// plus the triangle list over those vertices. It is immutable once
// built.
type Patch struct {
	Positions []expr.Func
	Indices   []uint32
	Arity     int
}

// Compile compiles every position formula with the given arity.
func Compile(positions []string, indices []uint32, arity int) (Patch, error) {
	if len(positions) == 0 || len(positions)%3 != 0 {
		return Patch{}, fmt.Errorf("%w: %d position formulas is not a positive multiple of 3", ErrMalformed, len(positions))
	}

	fns := make([]expr.Func, len(positions))
	for i, src := range positions {
		e, err := expr.Compile(src, arity)
		if err != nil {
			return Patch{}, fmt.Errorf("patch: position %d: %w", i, err)
		}
		fns[i] = e.Func()
	}

	p := Patch{Positions: fns, Indices: append([]uint32(nil), indices...), Arity: arity}
	if err := p.validate(); err != nil {
		return Patch{}, err
	}
	return p, nil
}

func (p Patch) validate() error {
	if len(p.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a multiple of 3", ErrMalformed, len(p.Indices))
	}
	n := uint32(p.VertexCount())
	for i, idx := range p.Indices {
		if idx >= n {
			return fmt.Errorf("%w: index %d at %d out of range for %d vertices", ErrMalformed, idx, i, n)
		}
	}
	return nil
}

// WithIndices returns a copy of p with its triangle list replaced.
func (p Patch) WithIndices(indices []uint32) (Patch, error) {
	q := p
	q.Positions = append([]expr.Func(nil), p.Positions...)
	q.Indices = append([]uint32(nil), indices...)
	if err := q.validate(); err != nil {
		return Patch{}, err
	}
	return q, nil
}

func (p Patch) VertexCount() int {
	return len(p.Positions) / 3
}

// Vertex evaluates vertex i at params.
func (p Patch) Vertex(i int, params []float64) (mathutil.Vec3, error) {
	if len(params) != p.Arity {
		return mathutil.Vec3{}, &expr.ArityError{Want: p.Arity, Got: len(params)}
	}
	var v mathutil.Vec3
	for k := 0; k < 3; k++ {
		x, err := p.Positions[i*3+k](params)
		if err != nil {
			return mathutil.Vec3{}, err
		}
		v[k] = x
	}
	return v, nil
}

// Eval evaluates every vertex at params.
func (p Patch) Eval(params []float64) ([]mathutil.Vec3, error) {
	if len(params) != p.Arity {
		return nil, &expr.ArityError{Want: p.Arity, Got: len(params)}
	}
	out := make([]mathutil.Vec3, p.VertexCount())
	for i := range out {
		v, err := p.Vertex(i, params)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
