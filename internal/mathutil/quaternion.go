package mathutil

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Quat represents a quaternion (x, y, z, w).
type Quat [4]float64

// QuatIdentity returns the rotation that leaves every vector unchanged.
func QuatIdentity() Quat {
	return Quat{0, 0, 0, 1}
}

// QuatFromAxisAngle returns the unit quaternion for a right-handed rotation
// of angle radians about axis. The axis does not need to be normalized.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	a := axis.Normalize()
	s, c := math.Sincos(angle / 2)
	return Quat{a[0] * s, a[1] * s, a[2] * s, c}
}

func (q Quat) number() quat.Number {
	return quat.Number{Real: q[3], Imag: q[0], Jmag: q[1], Kmag: q[2]}
}

func fromNumber(n quat.Number) Quat {
	return Quat{n.Imag, n.Jmag, n.Kmag, n.Real}
}

// Mul returns the Hamilton product q·r, i.e. r applied first, then q.
func (q Quat) Mul(r Quat) Quat {
	return fromNumber(quat.Mul(q.number(), r.number()))
}

func (q Quat) Conj() Quat {
	return fromNumber(quat.Conj(q.number()))
}

func (q Quat) Normalize() Quat {
	n := quat.Abs(q.number())
	if n < 1e-12 {
		return QuatIdentity()
	}
	return fromNumber(quat.Scale(1/n, q.number()))
}

// Rotate returns q·v·q* for a unit quaternion q. v is not modified.
func (q Quat) Rotate(v Vec3) Vec3 {
	p := quat.Number{Imag: v[0], Jmag: v[1], Kmag: v[2]}
	r := quat.Mul(quat.Mul(q.number(), p), quat.Conj(q.number()))
	return Vec3{r.Imag, r.Jmag, r.Kmag}
}

// AxisAngle converts q back to a unit axis and an angle in [0, 2π).
// A rotation by (close to) zero returns the x axis and 0.
func (q Quat) AxisAngle() (Vec3, float64) {
	q = q.Normalize()
	w := math.Max(-1, math.Min(1, q[3]))
	s := math.Sqrt(1 - w*w)
	if s < 1e-12 {
		return Vec3{1, 0, 0}, 0
	}
	return Vec3{q[0] / s, q[1] / s, q[2] / s}, 2 * math.Acos(w)
}

// QuatToMat3 converts a quaternion to a 3×3 rotation matrix.
func QuatToMat3(q Quat) Mat3 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return Mat3{
		1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy),
		2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx),
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy),
	}
}
