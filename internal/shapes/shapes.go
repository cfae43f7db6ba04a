// Package shapes holds the built-in geometry descriptors and the
// standard constants descriptor.
package shapes

import (
	"context"
	"fmt"
	"sort"

	"icos-renderer/internal/descriptor"
)

var pentagonIndices = []uint32{0, 1, 2, 2, 3, 0, 0, 3, 4}

// pentagon returns five points, each a fifth of a turn east of the last.
func pentagon(first point) []point {
	pts := make([]point, 5)
	for i := range pts {
		pts[i] = first.east(times(fifth, i))
	}
	return pts
}

// Goldberg10 has one pentagon per icosahedron vertex, with corners at the
// surrounding face centres.
func Goldberg10() descriptor.Geometry {
	return descriptor.Geometry{
		Meshes: []descriptor.Mesh{{
			Positions: yUp(pentagon(top.south(beta).east(tenth))...),
			Indices:   pentagonIndices,
			Symmetry:  "icos.v.1",
		}},
	}
}

// Goldberg11 adds a hexagon per face; t_1 moves the pentagon corners from
// the vertex (0) to the edge midpoints (1).
func Goldberg11() descriptor.Geometry {
	by := div(mul(alpha, param(1)), 2)

	r00 := top.south(by)
	r01 := r00.east(fifth)
	r10 := top.south(alpha).north(by)

	return descriptor.Geometry{
		Meshes: []descriptor.Mesh{
			{
				Positions: yUp(pentagon(top.south(by))...),
				Indices:   pentagonIndices,
				Symmetry:  "icos.v.1",
			},
			{
				Positions: yUp(r00, r01, r10),
				Indices:   []uint32{0, 2, 1},
				Symmetry:  "icos.f.3",
			},
			{
				Positions: yUp(r01),
				Indices:   []uint32{},
				Symmetry:  "icos.f.c",
			},
		},
		Params: []string{"0.5"},
	}
}

// Goldberg20 shrinks the pentagons toward the vertices as t_1 goes to 0
// and fills the gaps with a quad per face edge.
func Goldberg20() descriptor.Geometry {
	by := mul(beta, param(1))

	o := top.south(beta).east(tenth)
	r0 := top.south(by).east(tenth)

	return descriptor.Geometry{
		Meshes: []descriptor.Mesh{
			{
				Positions: yUp(pentagon(r0)...),
				Indices:   pentagonIndices,
				Symmetry:  "icos.v.1",
			},
			{
				Positions: yUp(r0, r0.east(fifth), o, o.east(fifth)),
				Indices:   []uint32{1, 0, 2, 1, 2, 3},
				Symmetry:  "icos.f.3",
			},
		},
		Params: []string{"0.5"},
	}
}

// Icosahedron is the plain icosahedron, one triangle per face.
func Icosahedron() descriptor.Geometry {
	a := top.south(alpha)
	return descriptor.Geometry{
		Meshes: []descriptor.Mesh{{
			Positions: yUp(top, a, a.east(fifth)),
			Indices:   []uint32{0, 1, 2},
			Symmetry:  "face-1",
		}},
	}
}

// Consts is the standard constants descriptor: the coordinate axes, R
// through the vertex a fifth of a turn from the first belt vertex and O
// through the centre of the first face.
func Consts() descriptor.Consts {
	q := top.south(alpha)
	r := q.east(fifth)

	return descriptor.Consts{
		"x": {one, zero, zero},
		"y": {zero, one, zero},
		"z": {zero, zero, one},
		"r": yUp(r),
		"o": {
			q.x() + " + " + r.x(),
			q.z() + " + " + r.z() + " + " + top.z(),
			r.y(),
		},
	}
}

var builtins = map[string]func() descriptor.Geometry{
	"goldberg.1.0": Goldberg10,
	"goldberg.1.1": Goldberg11,
	"goldberg.2.0": Goldberg20,
	"icos":         Icosahedron,
}

// Builtin serves the built-in shapes as a descriptor.Source.
type Builtin struct{}

func (Builtin) Geometry(_ context.Context, shape string) (descriptor.Geometry, error) {
	f, ok := builtins[shape]
	if !ok {
		return descriptor.Geometry{}, fmt.Errorf("%w: shape %q", descriptor.ErrNotFound, shape)
	}
	return f(), nil
}

func (Builtin) Consts(context.Context) (descriptor.Consts, error) {
	return Consts(), nil
}

func (Builtin) Names(context.Context) ([]string, error) {
	return Names(), nil
}

// Names lists the built-in shapes, sorted.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
