package symmetry

import (
	"math"

	"icos-renderer/internal/expr"
	"icos-renderer/internal/mathutil"
	"icos-renderer/internal/patch"
)

// faceCenterIndices is the winding of the synthesized triangle. It keeps
// normals facing outwards; do not reorder.
var faceCenterIndices = []uint32{0, 2, 1}

// Generate returns the instance transforms for tag and the patch they
// apply to. Only FaceCenter changes the patch.
func Generate(tag Tag, p patch.Patch, axes Axes) ([]mathutil.Transform, patch.Patch, error) {
	switch tag {
	case Face1:
		return face1(axes), p, nil
	case Face3:
		return face3(axes), p, nil
	case FaceCenter:
		ext, err := extendFaceCenter(p, axes)
		if err != nil {
			return nil, patch.Patch{}, err
		}
		return face1(axes), ext, nil
	case Vertex1:
		return vertex1(axes), p, nil
	}
	return nil, patch.Patch{}, &UnsupportedError{Tag: string(tag)}
}

// face1Chain is the rotation chain of face instance k (0 ≤ k < 20),
// applied first to last. Faces come in four bands of five: the top cap,
// the upper and lower belts, and the bottom cap.
func face1Chain(a Axes, k int) []mathutil.Rotation {
	i := float64(k % 5)
	turn := a.y(mathutil.FifthTurn * i)
	odd := a.y(mathutil.TenthTurn * (2*i + 1))
	slant := a.r(-mathutil.FifthTurn)
	flip := a.x(math.Pi)

	switch k / 5 {
	case 0:
		return []mathutil.Rotation{turn}
	case 1:
		return []mathutil.Rotation{slant, turn}
	case 2:
		return []mathutil.Rotation{slant, flip, odd}
	default:
		return []mathutil.Rotation{flip, odd}
	}
}

func face1(a Axes) []mathutil.Transform {
	out := make([]mathutil.Transform, 20)
	for k := range out {
		out[k] = mathutil.Compose(face1Chain(a, k)...)
	}
	return out
}

// face3 repeats face1 three times; copy j is first turned by j thirds
// about the face centre axis.
func face3(a Axes) []mathutil.Transform {
	out := make([]mathutil.Transform, 60)
	for j := 0; j < 3; j++ {
		third := a.o(mathutil.ThirdTurn * float64(j))
		for k := 0; k < 20; k++ {
			chain := append([]mathutil.Rotation{third}, face1Chain(a, k)...)
			out[j*20+k] = mathutil.Compose(chain...)
		}
	}
	return out
}

func vertex1(a Axes) []mathutil.Transform {
	out := make([]mathutil.Transform, 12)
	half := a.y(mathutil.TenthTurn)
	flip := a.x(math.Pi)
	slant := a.r(-mathutil.FifthTurn)

	out[0] = mathutil.Identity()
	for i := 0; i < 5; i++ {
		turn := a.y(mathutil.FifthTurn * float64(i))
		out[i+1] = mathutil.Compose(slant, turn)
		out[i+6] = mathutil.Compose(half, flip, slant, turn)
	}
	out[11] = mathutil.Compose(half, flip)
	return out
}

// extendFaceCenter keeps the first vertex, appends two copies of it turned
// by one and two thirds about O, and replaces the triangle list with the
// single triangle through the three. Further vertices are dropped.
func extendFaceCenter(p patch.Patch, a Axes) (patch.Patch, error) {
	base := append([]expr.Func(nil), p.Positions[:3]...)
	positions := append([]expr.Func(nil), base...)

	for r := 1; r <= 2; r++ {
		q := mathutil.QuatFromAxisAngle(a.O, mathutil.ThirdTurn*float64(r))
		for axis := 0; axis < 3; axis++ {
			positions = append(positions, rotated(base, q, axis))
		}
	}

	ext := patch.Patch{Positions: positions, Indices: p.Indices, Arity: p.Arity}
	return ext.WithIndices(faceCenterIndices)
}

func rotated(base []expr.Func, q mathutil.Quat, axis int) expr.Func {
	return func(params []float64) (float64, error) {
		var v mathutil.Vec3
		for k, f := range base {
			x, err := f(params)
			if err != nil {
				return 0, err
			}
			v[k] = x
		}
		return q.Rotate(v)[axis], nil
	}
}
