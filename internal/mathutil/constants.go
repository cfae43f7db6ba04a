package mathutil

import "math"

// Angles of the regular icosahedron.
var (
	// Alpha is the central angle between two adjacent vertices.
	Alpha = math.Acos(math.Sqrt(5) / 5)

	FifthTurn = 2 * math.Pi / 5
	TenthTurn = math.Pi / 5
	ThirdTurn = 2 * math.Pi / 3
)
