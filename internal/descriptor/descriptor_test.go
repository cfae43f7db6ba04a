package descriptor

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangleJSON = `{
  "meshes": [{"positions": ["0","1","0","t_1","0","0","0","0","1"], "indices": [0,1,2], "symmetry": "face-1"}],
  "params": ["0.5"]
}`

const triangleYAML = `
meshes:
  - positions: ["0", "1", "0", "t_1", "0", "0", "0", "0", "1"]
    indices: [0, 1, 2]
    symmetry: icos.f.3
params: ["0.25"]
`

const constsJSON = `{"x": ["1","0","0"], "y": ["0","1","0"], "r": ["0","1","0"], "o": ["0","1","0"]}`

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestDecodeGeometry(t *testing.T) {
	g, err := DecodeGeometry("a.json", []byte(triangleJSON))
	require.NoError(t, err)
	require.Len(t, g.Meshes, 1)
	assert.Equal(t, "face-1", g.Meshes[0].Symmetry)
	assert.Equal(t, []uint32{0, 1, 2}, g.Meshes[0].Indices)
	assert.Equal(t, []string{"0.5"}, g.Params)

	g, err = DecodeGeometry("a.yaml", []byte(triangleYAML))
	require.NoError(t, err)
	assert.Equal(t, "icos.f.3", g.Meshes[0].Symmetry)
	assert.Len(t, g.Meshes[0].Positions, 9)
}

func TestDecodeGeometryInvalid(t *testing.T) {
	for name, body := range map[string]string{
		"syntax.json":      `{"meshes": [`,
		"empty.json":       `{"meshes": []}`,
		"nosym.json":       `{"meshes": [{"positions": ["0","0","0"]}]}`,
		"nopositions.json": `{"meshes": [{"symmetry": "face-1"}]}`,
	} {
		_, err := DecodeGeometry(name, []byte(body))
		assert.True(t, errors.Is(err, ErrInvalid), name)
	}

	_, err := DecodeConsts("consts.json", []byte(`{}`))
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestValidName(t *testing.T) {
	for _, ok := range []string{"goldberg.1.0", "icos", "a_b-c"} {
		assert.True(t, ValidName(ok), ok)
	}
	for _, bad := range []string{"", ".hidden", "../etc", "a/b", "a b"} {
		assert.False(t, ValidName(bad), bad)
	}
}

func TestCatalog(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tri.json", triangleJSON)
	writeFile(t, dir, "tri3.yml", triangleYAML)
	writeFile(t, dir, "consts.json", constsJSON)
	writeFile(t, dir, "notes.txt", "ignored")

	c := NewCatalog(dir, nil)
	ctx := context.Background()

	names, err := c.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tri", "tri3"}, names)

	g, err := c.Geometry(ctx, "tri3")
	require.NoError(t, err)
	assert.Equal(t, []string{"0.25"}, g.Params)

	k, err := c.Consts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "0", "0"}, k["x"])

	for _, shape := range []string{"missing", "../tri", "consts"} {
		_, err = c.Geometry(ctx, shape)
		assert.True(t, errors.Is(err, ErrNotFound), shape)
	}
}

func TestCatalogWatch(t *testing.T) {
	dir := t.TempDir()
	c := NewCatalog(dir, nil)

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan string, 16)
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx, func(shape string) { changed <- shape }) }()

	// The watcher is registered asynchronously; keep writing until it
	// reports.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
loop:
	for {
		select {
		case shape := <-changed:
			assert.Equal(t, "tri", shape)
			break loop
		case <-tick.C:
			writeFile(t, dir, "tri.json", triangleJSON)
		case <-deadline:
			t.Fatal("no change reported")
		}
	}

	cancel()
	require.NoError(t, <-done)
}

func TestHTTPSource(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/geometry/tri.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(triangleJSON))
	})
	mux.HandleFunc("/geometry/consts.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(constsJSON))
	})
	mux.HandleFunc("/geometry/broken.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/geometry/huge.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte(" "), maxDescriptorSize+1))
	})
	mux.HandleFunc("/geometry/{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["tri"]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	src := NewHTTPSource(srv.URL + "/geometry/")
	ctx := context.Background()

	g, err := src.Geometry(ctx, "tri")
	require.NoError(t, err)
	assert.Equal(t, []string{"0.5"}, g.Params)

	k, err := src.Consts(ctx)
	require.NoError(t, err)
	assert.Len(t, k, 4)

	names, err := src.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tri"}, names)

	_, err = src.Geometry(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = src.Geometry(ctx, "broken")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))

	_, err = src.Geometry(ctx, "huge")
	assert.True(t, errors.Is(err, ErrTooLarge), "got %v", err)
}

type mapSource map[string]Geometry

func (m mapSource) Geometry(_ context.Context, shape string) (Geometry, error) {
	g, ok := m[shape]
	if !ok {
		return Geometry{}, ErrNotFound
	}
	return g, nil
}

func (m mapSource) Consts(context.Context) (Consts, error) { return nil, ErrNotFound }

func (m mapSource) Names(context.Context) ([]string, error) {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out, nil
}

func TestChain(t *testing.T) {
	a := mapSource{"one": {Params: []string{"1"}}}
	b := mapSource{"one": {Params: []string{"2"}}, "two": {Params: []string{"3"}}}
	c := Chain{a, b}
	ctx := context.Background()

	g, err := c.Geometry(ctx, "one")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, g.Params)

	g, err = c.Geometry(ctx, "two")
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, g.Params)

	_, err = c.Geometry(ctx, "three")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = c.Consts(ctx)
	assert.True(t, errors.Is(err, ErrNotFound))

	names, err := c.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, names)
}
