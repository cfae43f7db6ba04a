// Package descriptor reads geometry and constants descriptors from
// directories, HTTP endpoints or built-in tables.
package descriptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalid is returned for descriptors that are structurally wrong.
	ErrInvalid = errors.New("descriptor: invalid")

	// ErrNotFound is returned by a Source that does not know a shape.
	ErrNotFound = errors.New("descriptor: not found")
)

// Mesh is one patch entry of a geometry descriptor.
type Mesh struct {
	Positions []string `json:"positions" yaml:"positions"`
	Indices   []uint32 `json:"indices" yaml:"indices"`
	Symmetry  string   `json:"symmetry" yaml:"symmetry"`
}

// Geometry is the descriptor of one shape. Params holds one formula per
// animation parameter; evaluated without parameters it gives the
// parameter's default value.
type Geometry struct {
	Meshes []Mesh   `json:"meshes" yaml:"meshes"`
	Params []string `json:"params" yaml:"params"`
}

// Consts maps an axis name to three zero-parameter formulas.
type Consts map[string][]string

// Validate checks the parts of g that do not need formula compilation.
func (g Geometry) Validate() error {
	if len(g.Meshes) == 0 {
		return fmt.Errorf("%w: no meshes", ErrInvalid)
	}
	for i, m := range g.Meshes {
		if m.Symmetry == "" {
			return fmt.Errorf("%w: mesh %d: missing symmetry", ErrInvalid, i)
		}
		if len(m.Positions) == 0 {
			return fmt.Errorf("%w: mesh %d: no positions", ErrInvalid, i)
		}
	}
	return nil
}

// decode picks YAML for .yaml/.yml names and JSON otherwise.
func decode(name string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	default:
		return json.Unmarshal(data, v)
	}
}

// DecodeGeometry parses and validates a geometry descriptor.
func DecodeGeometry(name string, data []byte) (Geometry, error) {
	var g Geometry
	if err := decode(name, data, &g); err != nil {
		return Geometry{}, fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
	}
	if err := g.Validate(); err != nil {
		return Geometry{}, fmt.Errorf("%s: %w", name, err)
	}
	return g, nil
}

// DecodeConsts parses a constants descriptor.
func DecodeConsts(name string, data []byte) (Consts, error) {
	var c Consts
	if err := decode(name, data, &c); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
	}
	if len(c) == 0 {
		return nil, fmt.Errorf("%w: %s: no axes", ErrInvalid, name)
	}
	return c, nil
}

// ValidName reports whether shape is usable as a file or URL path
// element.
func ValidName(shape string) bool {
	if shape == "" || shape[0] == '.' || len(shape) > 128 {
		return false
	}
	for _, r := range shape {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
