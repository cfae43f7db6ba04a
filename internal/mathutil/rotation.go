package mathutil

import (
	"fmt"
	"math"
)

// RotX returns a 3×3 rotation matrix around the X axis. Angle in radians.
func RotX(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	}
}

// RotY returns a 3×3 rotation matrix around the Y axis.
func RotY(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	}
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}

// Rotation is a right-handed rotation of Angle radians about Axis,
// through the origin. Name is only used for display.
type Rotation struct {
	Name  string
	Axis  Vec3
	Angle float64
}

func (r Rotation) Quat() Quat {
	return QuatFromAxisAngle(r.Axis, r.Angle)
}

// Apply returns v rotated by r.
func (r Rotation) Apply(v Vec3) Vec3 {
	return r.Quat().Rotate(v)
}

func (r Rotation) String() string {
	name := r.Name
	if name == "" {
		name = fmt.Sprintf("(%.4f, %.4f, %.4f)", r.Axis[0], r.Axis[1], r.Axis[2])
	}
	return fmt.Sprintf("%s(%.4fπ)", name, r.Angle/math.Pi)
}

// Rotate returns v rotated by angle radians about axis. It never modifies
// its inputs.
func Rotate(v, axis Vec3, angle float64) Vec3 {
	return QuatFromAxisAngle(axis, angle).Rotate(v)
}

// AxisAngleMat3 returns the rotation matrix for angle radians about axis.
func AxisAngleMat3(axis Vec3, angle float64) Mat3 {
	return QuatToMat3(QuatFromAxisAngle(axis, angle))
}
