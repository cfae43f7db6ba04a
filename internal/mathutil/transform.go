package mathutil

import "strings"

// Transform is an ordered chain of rotations about the world origin.
// Steps[0] is applied first; the composed rotation is cached at
// construction and the value is immutable afterwards.
type Transform struct {
	steps []Rotation
	q     Quat
	m     Mat3
}

// Compose builds the transform that applies steps in order.
func Compose(steps ...Rotation) Transform {
	q := QuatIdentity()
	for _, s := range steps {
		q = s.Quat().Mul(q)
	}
	q = q.Normalize()
	return Transform{
		steps: append([]Rotation(nil), steps...),
		q:     q,
		m:     QuatToMat3(q),
	}
}

// Identity is the empty chain.
func Identity() Transform {
	return Compose()
}

// Then returns a transform that applies t and afterwards steps.
func (t Transform) Then(steps ...Rotation) Transform {
	all := make([]Rotation, 0, len(t.steps)+len(steps))
	all = append(all, t.steps...)
	all = append(all, steps...)
	return Compose(all...)
}

// Apply returns v placed by the transform.
func (t Transform) Apply(v Vec3) Vec3 {
	return t.m.MulVec3(v)
}

// Steps returns a copy of the rotation chain, first applied first.
func (t Transform) Steps() []Rotation {
	return append([]Rotation(nil), t.steps...)
}

func (t Transform) Quat() Quat   { return t.q }
func (t Transform) Matrix() Mat3 { return t.m }

// String prints the chain in composition order, outermost first, e.g.
// "Y(0.4000π) ∘ R(-0.4000π)".
func (t Transform) String() string {
	if len(t.steps) == 0 {
		return "I"
	}
	parts := make([]string, len(t.steps))
	for i, s := range t.steps {
		parts[len(t.steps)-1-i] = s.String()
	}
	return strings.Join(parts, " ∘ ")
}
