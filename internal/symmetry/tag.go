// Package symmetry derives the icosahedral rotation groups used to
// replicate a patch into a full shape.
package symmetry

import (
	"errors"
	"fmt"
)

// ErrUnsupported matches every *UnsupportedError.
var ErrUnsupported = errors.New("symmetry: unsupported")

// UnsupportedError reports a tag outside the closed set of groups.
type UnsupportedError struct {
	Tag string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("symmetry: not supported: %q", e.Tag)
}

func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }

// Tag selects a rotation group and its replication count.
type Tag string

const (
	Face1      Tag = "face-1"      // 20 undivided faces
	Face3      Tag = "face-3"      // 20 faces, each split into 3
	FaceCenter Tag = "face-center" // one third of a face, completed about the face centre
	Vertex1    Tag = "vertex-1"    // 12 vertex-centred copies

	// Marker is not a group. Meshes tagged with it are shown as a single
	// reference point.
	Marker Tag = "dbg"
)

// Wire names used by older geometry descriptors.
var aliases = map[string]Tag{
	"icos.f.1": Face1,
	"icos.f.3": Face3,
	"icos.f.c": FaceCenter,
	"icos.v.1": Vertex1,
}

// ParseTag accepts the canonical names, their aliases and the marker tag.
func ParseTag(s string) (Tag, error) {
	switch t := Tag(s); t {
	case Face1, Face3, FaceCenter, Vertex1, Marker:
		return t, nil
	}
	if t, ok := aliases[s]; ok {
		return t, nil
	}
	return "", &UnsupportedError{Tag: s}
}

// Count is the number of instances the group produces, 0 for tags that
// are not groups.
func (t Tag) Count() int {
	switch t {
	case Face1, FaceCenter:
		return 20
	case Face3:
		return 60
	case Vertex1:
		return 12
	}
	return 0
}
