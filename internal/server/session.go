package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"icos-renderer/internal/scheduler"
)

const writeWait = 10 * time.Second

// Client to server.
type clientMessage struct {
	Type   string    `json:"type"` // "select", "params" or "param"
	Shape  string    `json:"shape,omitempty"`
	Index  int       `json:"index,omitempty"`
	Value  float64   `json:"value,omitempty"`
	Values []float64 `json:"values,omitempty"`
}

// Server to client.
type shapeMessage struct {
	Type   string      `json:"type"` // "shape"
	Shape  string      `json:"shape"`
	Params []paramInfo `json:"params"`
	Meshes []meshInfo  `json:"meshes"`
}

type paramInfo struct {
	Formula string  `json:"formula"`
	Default float64 `json:"default"`
}

type meshInfo struct {
	Symmetry  string   `json:"symmetry"`
	Instances int      `json:"instances"`
	Indices   []uint32 `json:"indices"`
}

type frameMessage struct {
	Type   string      `json:"type"` // "frame"
	Shape  string      `json:"shape"`
	Seq    uint64      `json:"seq"`
	Params []float64   `json:"params"`
	Meshes [][]float64 `json:"meshes"`
}

type errorMessage struct {
	Type  string `json:"type"` // "error"
	Error string `json:"error"`
}

func newShapeMessage(sess *scheduler.Session) shapeMessage {
	m := shapeMessage{Type: "shape", Shape: sess.Shape(), Params: []paramInfo{}}
	for _, p := range sess.Params() {
		m.Params = append(m.Params, paramInfo{Formula: p.Formula, Default: p.Default})
	}
	for _, set := range sess.Sets() {
		idx := set.Patch().Indices
		if idx == nil {
			idx = []uint32{}
		}
		m.Meshes = append(m.Meshes, meshInfo{Symmetry: string(set.Tag()), Instances: set.Len(), Indices: idx})
	}
	return m
}

// wsSurface writes each frame as one message. Buffers of a mesh are
// concatenated in instance order.
type wsSurface struct {
	conn *websocket.Conn
}

func (ws wsSurface) Present(f scheduler.Frame) error {
	m := frameMessage{Type: "frame", Shape: f.Shape, Seq: f.Seq, Params: f.Params}
	if m.Params == nil {
		m.Params = []float64{}
	}
	for _, mesh := range f.Meshes {
		var pos []float64
		for _, b := range mesh.Buffers {
			pos = append(pos, b.Positions...)
		}
		m.Meshes = append(m.Meshes, pos)
	}
	return ws.write(m)
}

func (ws wsSurface) write(v any) error {
	ws.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.conn.WriteJSON(v)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	logger := s.logger.With("remote", r.RemoteAddr)
	logger.Info("session opened")
	defer logger.Info("session closed")

	if err := s.runSession(r.Context(), conn, logger); err != nil {
		logger.Warn("session ended", "err", err)
	}
}

// runSession owns the connection's writes. A reader goroutine feeds
// client messages; everything else happens on this goroutine, one tick
// at a time.
func (s *Server) runSession(ctx context.Context, conn *websocket.Conn, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	msgs := make(chan clientMessage)
	go func() {
		defer close(msgs)
		for {
			var m clientMessage
			if err := conn.ReadJSON(&m); err != nil {
				return
			}
			select {
			case msgs <- m:
			case <-ctx.Done():
				return
			}
		}
	}()

	reload := s.register()
	defer s.unregister(reload)

	surface := wsSurface{conn: conn}
	controls := scheduler.NewControlVector(nil)
	viewer := scheduler.NewViewer(s.src, s.currentAxes(), controls, surface, logger)

	// selectShape loads shape into v and makes v current. On failure the
	// current viewer and session stay as they were.
	selectShape := func(v *scheduler.Viewer, shape string) error {
		sess, err := v.Select(ctx, shape)
		if err != nil {
			return surface.write(errorMessage{Type: "error", Error: err.Error()})
		}
		viewer = v
		return surface.write(newShapeMessage(sess))
	}

	ticker := time.NewTicker(time.Second / time.Duration(s.frameRate))
	defer ticker.Stop()

	// A broken parameter vector fails every tick; report it once until it clears.
	var tickErr string

	for {
		select {
		case <-ctx.Done():
			return nil

		case m, ok := <-msgs:
			if !ok {
				return nil
			}
			var err error
			switch m.Type {
			case "select":
				err = selectShape(viewer, m.Shape)
			case "params":
				controls.SetAll(m.Values)
			case "param":
				if !controls.Set(m.Index, m.Value) {
					err = surface.write(errorMessage{Type: "error", Error: fmt.Sprintf("no parameter %d", m.Index)})
				}
			default:
				err = surface.write(errorMessage{Type: "error", Error: fmt.Sprintf("unknown message type %q", m.Type)})
			}
			if err != nil {
				return err
			}

		case shape := <-reload:
			cur := viewer.Current()
			if cur == nil {
				continue
			}
			name := cur.Session().Shape()
			if shape != "" && shape != name {
				continue
			}
			logger.Info("reloading shape", "shape", name)
			v := viewer
			if shape == "" {
				v = scheduler.NewViewer(s.src, s.currentAxes(), controls, surface, logger)
			}
			if err := selectShape(v, name); err != nil {
				return err
			}

		case <-ticker.C:
			_, err := viewer.Tick()
			if err == nil {
				tickErr = ""
				continue
			}
			if err.Error() == tickErr {
				continue
			}
			tickErr = err.Error()
			if werr := surface.write(errorMessage{Type: "error", Error: tickErr}); werr != nil {
				return werr
			}
		}
	}
}
