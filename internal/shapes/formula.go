package shapes

import "strconv"

// Formulas are built as strings in the grammar the expression compiler
// accepts. Every compound term is parenthesized, so terms compose
// without precedence concerns. Trivial zeros and ones are folded.

const (
	zero = "0"
	one  = "1"
)

func add(a, b string) string {
	switch {
	case a == zero:
		return b
	case b == zero:
		return a
	}
	return "(" + a + "+" + b + ")"
}

func mul(a, b string) string {
	switch {
	case a == zero || b == zero:
		return zero
	case a == one:
		return b
	case b == one:
		return a
	}
	return "(" + a + "*" + b + ")"
}

func div(a string, n int) string {
	if a == zero || n == 1 {
		return a
	}
	return "(" + a + "/" + strconv.Itoa(n) + ")"
}

func neg(a string) string {
	if a == zero {
		return zero
	}
	return "(-" + a + ")"
}

func sin(a string) string {
	if a == zero {
		return zero
	}
	return "sin(" + a + ")"
}

func cos(a string) string {
	if a == zero {
		return one
	}
	return "cos(" + a + ")"
}

// param is the formula for animation parameter k (1-based).
func param(k int) string {
	return "t_" + strconv.Itoa(k)
}

// turn divides a full turn into n parts.
func turn(n int) string {
	return "(2*PI/" + strconv.Itoa(n) + ")"
}

func times(a string, i int) string {
	return mul(a, strconv.Itoa(i))
}

var (
	// alpha is the central angle between adjacent icosahedron vertices.
	alpha = "acos((sqrt(5)/5))"

	// beta is the central angle between a vertex and the centre of an
	// adjacent face.
	beta = "asin(((sqrt(((sqrt(5)+5)*2/15))*2)/(sqrt(5)+1)))"

	fifth = turn(5)
	tenth = turn(10)
)

// point is a unit vector in spherical coordinates with the polar axis
// along z: theta from the pole and phi around it.
type point struct {
	theta, phi string
}

// top is the pole.
var top = point{theta: zero, phi: zero}

func (p point) south(a string) point { return point{theta: add(p.theta, a), phi: p.phi} }
func (p point) north(a string) point { return p.south(neg(a)) }
func (p point) east(a string) point  { return point{theta: p.theta, phi: add(p.phi, a)} }

func (p point) x() string { return mul(sin(p.theta), cos(p.phi)) }
func (p point) y() string { return mul(sin(p.theta), sin(p.phi)) }
func (p point) z() string { return cos(p.theta) }

// yUp flattens points into x, y, z formula triples with the pole along
// +y.
func yUp(pts ...point) []string {
	out := make([]string, 0, 3*len(pts))
	for _, p := range pts {
		out = append(out, p.x(), p.z(), p.y())
	}
	return out
}
