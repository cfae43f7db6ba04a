package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icos-renderer/internal/config"
	"icos-renderer/internal/descriptor"
	"icos-renderer/internal/scheduler"
	"icos-renderer/internal/shapes"
	"icos-renderer/internal/symmetry"
)

func session(t *testing.T, shape string) *scheduler.Session {
	t.Helper()
	g, err := shapes.Builtin{}.Geometry(context.Background(), shape)
	require.NoError(t, err)
	sess, err := scheduler.NewSession(shape, g, symmetry.StandardAxes())
	require.NoError(t, err)
	return sess
}

func TestSweepSteps(t *testing.T) {
	jobs, err := Sweep(session(t, "goldberg.2.0"), 0, 5)
	require.NoError(t, err)
	require.Len(t, jobs, 5)

	for i, want := range []float64{0, 0.25, 0.5, 0.75, 1} {
		assert.Equal(t, i, jobs[i].Frame)
		assert.Equal(t, []float64{want}, jobs[i].Params)
		assert.Equal(t, jobs[0].Radius, jobs[i].Radius)
	}
	assert.InDelta(t, 1, jobs[0].Radius, 1e-9)
}

func TestSweepSkipsRepeatedParams(t *testing.T) {
	jobs, err := Sweep(session(t, "goldberg.1.1"), 0, 301)
	require.NoError(t, err)
	assert.Len(t, jobs, scheduler.ControlSteps+1)
	assert.Equal(t, []float64{1}, jobs[len(jobs)-1].Params)
}

func TestSweepMovesOneParameter(t *testing.T) {
	g := descriptor.Geometry{
		Params: []string{"0.3", "0.6"},
		Meshes: []descriptor.Mesh{{Positions: []string{"t_1", "t_2", "1"}, Symmetry: "vertex-1"}},
	}
	sess, err := scheduler.NewSession("pair", g, symmetry.StandardAxes())
	require.NoError(t, err)

	jobs, err := Sweep(sess, 1, 3)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	for i, want := range []float64{0, 0.5, 1} {
		assert.Equal(t, []float64{0.3, want}, jobs[i].Params)
	}

	_, err = Sweep(sess, 2, 3)
	assert.Error(t, err)
	_, err = Sweep(sess, -1, 3)
	assert.Error(t, err)
}

func TestSweepStaticShape(t *testing.T) {
	jobs, err := Sweep(session(t, "icos"), 0, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Empty(t, jobs[0].Params)
	assert.Len(t, jobs[0].Meshes[0].Buffers, 20)
}

func TestRunWritesImagesAndManifest(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{OutputDir: dir, Format: config.FormatTGA, RenderSize: 32, Supersample: 2, Workers: 2, Yaw: 20, Pitch: 10}

	jobs, err := Sweep(session(t, "goldberg.2.0"), 0, 3)
	require.NoError(t, err)

	var progress bytes.Buffer
	cfg.Progress = &progress
	results := Run(context.Background(), cfg, jobs)
	require.Len(t, results, 3)
	for _, r := range results {
		require.True(t, r.Success, r.Error)

		f, err := os.Open(filepath.Join(dir, filepath.FromSlash(r.Image)))
		require.NoError(t, err)
		img, err := tga.Decode(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, 32, img.Bounds().Dx())
	}
	assert.Equal(t, "goldberg.2.0/0001.tga", results[1].Image)
	assert.NotEmpty(t, progress.String())

	manifest := filepath.Join(dir, "manifest.json")
	require.NoError(t, WriteManifest(manifest, results))
	data, err := os.ReadFile(manifest)
	require.NoError(t, err)
	var entries []ManifestEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, []float64{0.5}, entries[1].Params)
}

func TestRunCancelled(t *testing.T) {
	jobs, err := Sweep(session(t, "icos"), 0, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := Run(ctx, Config{OutputDir: t.TempDir(), Format: config.FormatWebP, RenderSize: 16, Workers: 1}, jobs)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "context canceled")
}

func TestEncodeWebP(t *testing.T) {
	jobs, err := Sweep(session(t, "icos"), 0, 1)
	require.NoError(t, err)
	img := RenderImage(Config{RenderSize: 24, Supersample: 1}, jobs[0])

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, config.FormatWebP))
	assert.Equal(t, "RIFF", buf.String()[:4])

	assert.Error(t, Encode(&buf, img, "bmp"))
}
