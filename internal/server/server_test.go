package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icos-renderer/internal/descriptor"
	"icos-renderer/internal/shapes"
	"icos-renderer/internal/symmetry"
)

func newTestServer(t *testing.T, src descriptor.Source) (*Server, *httptest.Server) {
	t.Helper()
	s := New("", src, symmetry.StandardAxes(), 100, nil)
	ts := httptest.NewServer(s.Handler)
	t.Cleanup(ts.Close)
	return s, ts
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestGeometryEndpoints(t *testing.T) {
	_, ts := newTestServer(t, shapes.Builtin{})

	var names []string
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/geometry/", &names))
	assert.Equal(t, shapes.Names(), names)

	var g descriptor.Geometry
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/geometry/goldberg.1.1.json", &g))
	assert.Len(t, g.Meshes, 3)
	assert.Equal(t, []string{"0.5"}, g.Params)

	var k descriptor.Consts
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/geometry/consts.json", &k))
	assert.Len(t, k, 5)

	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/geometry/missing.json", nil))
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/geometry/icos", nil))
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/geometry/.icos.json", nil))
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/healthz", nil))
}

// The server's own endpoints are a valid descriptor source.
func TestServesHTTPSource(t *testing.T) {
	_, ts := newTestServer(t, shapes.Builtin{})
	src := descriptor.NewHTTPSource(ts.URL + "/geometry")
	ctx := context.Background()

	for _, name := range shapes.Names() {
		got, err := src.Geometry(ctx, name)
		require.NoError(t, err, name)
		want, _ := shapes.Builtin{}.Geometry(ctx, name)
		assert.Equal(t, want.Params, got.Params, name)
		assert.Equal(t, len(want.Meshes), len(got.Meshes), name)
	}

	names, err := src.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, shapes.Names(), names)
}

type envelope struct {
	Type   string          `json:"type"`
	Shape  string          `json:"shape"`
	Seq    uint64          `json:"seq"`
	Params json.RawMessage `json:"params"`
	Meshes json.RawMessage `json:"meshes"`
	Error  string          `json:"error"`
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/session"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var e envelope
	require.NoError(t, conn.ReadJSON(&e))
	return e
}

func send(t *testing.T, conn *websocket.Conn, m clientMessage) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(m))
}

func TestSessionStreamsFramesOnChange(t *testing.T) {
	_, ts := newTestServer(t, shapes.Builtin{})
	conn := dial(t, ts)

	send(t, conn, clientMessage{Type: "select", Shape: "goldberg.1.1"})
	shape := read(t, conn)
	require.Equal(t, "shape", shape.Type)
	var meshes []meshInfo
	require.NoError(t, json.Unmarshal(shape.Meshes, &meshes))
	require.Len(t, meshes, 3)
	assert.Equal(t, 12, meshes[0].Instances)
	assert.Equal(t, []uint32{0, 2, 1}, meshes[2].Indices)

	frame := read(t, conn)
	require.Equal(t, "frame", frame.Type)
	assert.Equal(t, uint64(1), frame.Seq)
	assert.JSONEq(t, `[0.5]`, string(frame.Params))
	var pos [][]float64
	require.NoError(t, json.Unmarshal(frame.Meshes, &pos))
	assert.Len(t, pos[0], 12*5*3)

	send(t, conn, clientMessage{Type: "param", Index: 0, Value: 0.7})
	frame = read(t, conn)
	assert.Equal(t, uint64(2), frame.Seq)
	assert.JSONEq(t, `[0.7]`, string(frame.Params))

	// A failed selection reports and keeps the running shape.
	send(t, conn, clientMessage{Type: "select", Shape: "missing"})
	e := read(t, conn)
	assert.Equal(t, "error", e.Type)
	assert.Contains(t, e.Error, "not found")

	send(t, conn, clientMessage{Type: "params", Values: []float64{0.2}})
	frame = read(t, conn)
	assert.Equal(t, "goldberg.1.1", frame.Shape)
	assert.Equal(t, uint64(3), frame.Seq)
}

func TestSessionReload(t *testing.T) {
	dir := t.TempDir()
	body := `{"meshes": [{"positions": ["0","1","0"], "symmetry": "vertex-1"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dot.json"), []byte(body), 0o644))

	src := descriptor.Chain{descriptor.NewCatalog(dir, nil), shapes.Builtin{}}
	s, ts := newTestServer(t, src)
	conn := dial(t, ts)

	send(t, conn, clientMessage{Type: "select", Shape: "dot"})
	require.Equal(t, "shape", read(t, conn).Type)
	require.Equal(t, "frame", read(t, conn).Type)

	body = `{"meshes": [{"positions": ["0","1","0"], "symmetry": "face-1"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dot.json"), []byte(body), 0o644))

	// The session registered before answering the select.
	s.Reload(context.Background(), "dot")
	e := read(t, conn)
	require.Equal(t, "shape", e.Type)
	var meshes []meshInfo
	require.NoError(t, json.Unmarshal(e.Meshes, &meshes))
	assert.Equal(t, 20, meshes[0].Instances)
	require.Equal(t, "frame", read(t, conn).Type)

	// Other shapes are left alone.
	s.Reload(context.Background(), "icos")
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var none envelope
	assert.Error(t, conn.ReadJSON(&none))
}

func TestSessionReportsTickErrorOnce(t *testing.T) {
	_, ts := newTestServer(t, shapes.Builtin{})
	conn := dial(t, ts)

	send(t, conn, clientMessage{Type: "select", Shape: "goldberg.2.0"})
	require.Equal(t, "shape", read(t, conn).Type)
	require.Equal(t, "frame", read(t, conn).Type)

	send(t, conn, clientMessage{Type: "params", Values: []float64{0.1, 0.2}})
	e := read(t, conn)
	require.Equal(t, "error", e.Type)
	assert.Contains(t, e.Error, "arity mismatch")

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var none envelope
	assert.Error(t, conn.ReadJSON(&none), "error must not repeat every tick")
}

func TestSessionUnknownMessage(t *testing.T) {
	_, ts := newTestServer(t, shapes.Builtin{})
	conn := dial(t, ts)
	send(t, conn, clientMessage{Type: "dance"})
	e := read(t, conn)
	assert.Equal(t, "error", e.Type)
}
