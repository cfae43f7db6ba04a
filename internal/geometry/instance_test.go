package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icos-renderer/internal/expr"
	"icos-renderer/internal/mathutil"
	"icos-renderer/internal/patch"
	"icos-renderer/internal/symmetry"
)

func mustPatch(t *testing.T, positions []string, indices []uint32, arity int) patch.Patch {
	t.Helper()
	p, err := patch.Compile(positions, indices, arity)
	require.NoError(t, err)
	return p
}

func TestRecomputeVertexScenario(t *testing.T) {
	s, err := New(symmetry.Vertex1, mustPatch(t, []string{"0", "0", "1"}, nil, 0), symmetry.StandardAxes())
	require.NoError(t, err)
	require.Equal(t, 12, s.Len())

	bufs, err := s.Recompute(nil)
	require.NoError(t, err)
	require.Len(t, bufs, 12)

	assert.Equal(t, mathutil.Vec3{0, 0, 1}, bufs[0].Vertex(0))
	want := mathutil.Vec3{math.Sin(math.Pi / 5), 0, -math.Cos(math.Pi / 5)}
	assert.True(t, bufs[11].Vertex(0).Near(want, 1e-12))
}

func TestRecomputeSharesIndices(t *testing.T) {
	p := mustPatch(t, []string{"0", "1", "0", "t_1", "0.5", "0", "0", "0.5", "t_1"}, []uint32{0, 1, 2}, 1)
	s, err := New(symmetry.Face3, p, symmetry.StandardAxes())
	require.NoError(t, err)

	bufs, err := s.Recompute([]float64{0.3})
	require.NoError(t, err)
	require.Len(t, bufs, 60)
	for _, b := range bufs {
		assert.Equal(t, 3, b.VertexCount())
		assert.False(t, b.Marker)
		assert.Same(t, &bufs[0].Indices[0], &b.Indices[0])
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	p := mustPatch(t, []string{"sin(t_1*PI)", "cos(t_2)", "t_1*t_2"}, nil, 2)
	s, err := New(symmetry.FaceCenter, p, symmetry.StandardAxes())
	require.NoError(t, err)

	params := []float64{0.42, 0.17}
	a, err := s.Recompute(params)
	require.NoError(t, err)
	b, err := s.Recompute(params)
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		require.Equal(t, len(a[i].Positions), len(b[i].Positions))
		for j := range a[i].Positions {
			assert.Equal(t, math.Float64bits(a[i].Positions[j]), math.Float64bits(b[i].Positions[j]))
		}
	}
	assert.Equal(t, []uint32{0, 2, 1}, a[0].Indices)
}

func TestRecomputeArityMismatch(t *testing.T) {
	s, err := New(symmetry.Face1, mustPatch(t, []string{"t_1", "0", "1"}, nil, 1), symmetry.StandardAxes())
	require.NoError(t, err)

	_, err = s.Recompute([]float64{})
	assert.True(t, errors.Is(err, expr.ErrArityMismatch))
	_, err = s.Recompute([]float64{0, 1})
	assert.True(t, errors.Is(err, expr.ErrArityMismatch))
}

func TestMarkerInstance(t *testing.T) {
	s, err := New(symmetry.Marker, mustPatch(t, []string{"t_1", "2", "3", "9", "9", "9"}, nil, 1), symmetry.StandardAxes())
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())
	assert.True(t, s.Instance(0).Marker)

	bufs, err := s.Recompute([]float64{0.5})
	require.NoError(t, err)
	require.Len(t, bufs, 1)
	assert.True(t, bufs[0].Marker)
	assert.Equal(t, []float64{0.5, 2, 3}, bufs[0].Positions)
	assert.Nil(t, bufs[0].Indices)
}

func TestNewUnsupported(t *testing.T) {
	_, err := New("icos.20", mustPatch(t, []string{"0", "0", "1"}, nil, 0), symmetry.StandardAxes())
	assert.True(t, errors.Is(err, symmetry.ErrUnsupported))
}
