// Package geometry places copies of a patch by the transforms of its
// symmetry group and evaluates their vertex buffers.
package geometry

import (
	"fmt"

	"icos-renderer/internal/mathutil"
	"icos-renderer/internal/patch"
	"icos-renderer/internal/symmetry"
)

// VertexBuffer is one placed copy of a patch. Positions holds x, y, z per
// vertex. Indices is shared by every buffer returned from the same
// Recompute call and must not be modified.
type VertexBuffer struct {
	Positions []float64
	Indices   []uint32

	// Marker buffers hold a single reference point and no triangles.
	Marker bool
}

// Vertex returns vertex i of the buffer.
func (b VertexBuffer) Vertex(i int) mathutil.Vec3 {
	return mathutil.Vec3{b.Positions[3*i], b.Positions[3*i+1], b.Positions[3*i+2]}
}

// VertexCount returns the number of vertices in the buffer.
func (b VertexBuffer) VertexCount() int {
	return len(b.Positions) / 3
}

// Instance is one placement of the patch.
type Instance struct {
	Transform mathutil.Transform
	Marker    bool
}

// InstanceSet owns the compiled patch of one mesh entry and the fixed
// list of its placements, indexed by instance number.
type InstanceSet struct {
	tag       symmetry.Tag
	patch     patch.Patch
	instances []Instance
}

// New generates the instances for tag. A Marker tag yields one marker
// instance at the patch's first vertex.
func New(tag symmetry.Tag, p patch.Patch, axes symmetry.Axes) (*InstanceSet, error) {
	if tag == symmetry.Marker {
		return &InstanceSet{
			tag:       tag,
			patch:     p,
			instances: []Instance{{Transform: mathutil.Identity(), Marker: true}},
		}, nil
	}

	trs, ext, err := symmetry.Generate(tag, p, axes)
	if err != nil {
		return nil, fmt.Errorf("geometry: %w", err)
	}
	instances := make([]Instance, len(trs))
	for i, tr := range trs {
		instances[i] = Instance{Transform: tr}
	}
	return &InstanceSet{tag: tag, patch: ext, instances: instances}, nil
}

func (s *InstanceSet) Tag() symmetry.Tag       { return s.tag }
func (s *InstanceSet) Patch() patch.Patch      { return s.patch }
func (s *InstanceSet) Len() int                { return len(s.instances) }
func (s *InstanceSet) Arity() int              { return s.patch.Arity }
func (s *InstanceSet) Instance(i int) Instance { return s.instances[i] }

// Recompute evaluates the patch at params and returns one buffer per
// instance, in instance order.
func (s *InstanceSet) Recompute(params []float64) ([]VertexBuffer, error) {
	verts, err := s.patch.Eval(params)
	if err != nil {
		return nil, fmt.Errorf("geometry: %w", err)
	}

	out := make([]VertexBuffer, len(s.instances))
	for i, inst := range s.instances {
		if inst.Marker {
			p := inst.Transform.Apply(verts[0])
			out[i] = VertexBuffer{Positions: []float64{p[0], p[1], p[2]}, Marker: true}
			continue
		}

		pos := make([]float64, 3*len(verts))
		for j, v := range verts {
			w := inst.Transform.Apply(v)
			copy(pos[3*j:3*j+3], w[:])
		}
		out[i] = VertexBuffer{Positions: pos, Indices: s.patch.Indices}
	}
	return out, nil
}
