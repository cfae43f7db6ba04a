package symmetry

import (
	"fmt"
	"math"
	"strings"

	"icos-renderer/internal/expr"
	"icos-renderer/internal/mathutil"
)

// Axes are the fixed rotation axes of the generators: X and Y are the
// coordinate axes, R links adjacent 5-fold vertices and O is the 3-fold
// axis through the centre of the first face. Axes need not be unit
// length.
type Axes struct {
	X, Y, Z, R, O mathutil.Vec3
}

// StandardAxes computes the axes directly (Y-up).
func StandardAxes() Axes {
	a := mathutil.Alpha
	sa, ca := math.Sin(a), math.Cos(a)
	sf, cf := math.Sin(mathutil.FifthTurn), math.Cos(mathutil.FifthTurn)

	return Axes{
		X: mathutil.Vec3{1, 0, 0},
		Y: mathutil.Vec3{0, 1, 0},
		Z: mathutil.Vec3{0, 0, 1},
		R: mathutil.Vec3{sa * cf, ca, sa * sf},
		O: mathutil.Vec3{sa + sa*cf, 2*ca + 1, sa * sf},
	}
}

// AxesFromConsts evaluates a constants descriptor: axis name (any case)
// to three zero-parameter formulas. X, Y, R and O are required.
func AxesFromConsts(consts map[string][]string) (Axes, error) {
	vecs := make(map[string]mathutil.Vec3, len(consts))
	for name, xyz := range consts {
		key := strings.ToUpper(name)
		if len(xyz) != 3 {
			return Axes{}, fmt.Errorf("symmetry: axis %s: want 3 formulas, got %d", key, len(xyz))
		}
		var v mathutil.Vec3
		for i, src := range xyz {
			x, err := expr.Value(src)
			if err != nil {
				return Axes{}, fmt.Errorf("symmetry: axis %s: %w", key, err)
			}
			v[i] = x
		}
		vecs[key] = v
	}

	for _, k := range []string{"X", "Y", "R", "O"} {
		v, ok := vecs[k]
		if !ok {
			return Axes{}, fmt.Errorf("symmetry: constants: missing axis %s", k)
		}
		if v.Len() < 1e-12 {
			return Axes{}, fmt.Errorf("symmetry: constants: axis %s has zero length", k)
		}
	}

	z, ok := vecs["Z"]
	if !ok {
		z = vecs["X"].Cross(vecs["Y"])
	}
	return Axes{X: vecs["X"], Y: vecs["Y"], Z: z, R: vecs["R"], O: vecs["O"]}, nil
}

func (a Axes) x(angle float64) mathutil.Rotation {
	return mathutil.Rotation{Name: "X", Axis: a.X, Angle: angle}
}

func (a Axes) y(angle float64) mathutil.Rotation {
	return mathutil.Rotation{Name: "Y", Axis: a.Y, Angle: angle}
}

func (a Axes) r(angle float64) mathutil.Rotation {
	return mathutil.Rotation{Name: "R", Axis: a.R, Angle: angle}
}

func (a Axes) o(angle float64) mathutil.Rotation {
	return mathutil.Rotation{Name: "O", Axis: a.O, Angle: angle}
}
