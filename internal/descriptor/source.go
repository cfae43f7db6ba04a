package descriptor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
)

// Source looks up descriptors by shape name.
type Source interface {
	Geometry(ctx context.Context, shape string) (Geometry, error)
	Consts(ctx context.Context) (Consts, error)
}

// Lister is implemented by sources that can enumerate their shapes.
type Lister interface {
	Names(ctx context.Context) ([]string, error)
}

// Chain asks each source in turn, moving on only when a source reports
// ErrNotFound.
type Chain []Source

func (c Chain) Geometry(ctx context.Context, shape string) (Geometry, error) {
	for _, s := range c {
		g, err := s.Geometry(ctx, shape)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return g, err
	}
	return Geometry{}, fmt.Errorf("%w: shape %q", ErrNotFound, shape)
}

func (c Chain) Consts(ctx context.Context) (Consts, error) {
	for _, s := range c {
		k, err := s.Consts(ctx)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return k, err
	}
	return nil, fmt.Errorf("%w: constants", ErrNotFound)
}

// Names merges the names of every source that is a Lister.
func (c Chain) Names(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, s := range c {
		l, ok := s.(Lister)
		if !ok {
			continue
		}
		names, err := l.Names(ctx)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// ConstsFile serves only a constants descriptor read from a file.
type ConstsFile string

func (f ConstsFile) Geometry(_ context.Context, shape string) (Geometry, error) {
	return Geometry{}, fmt.Errorf("%w: shape %q", ErrNotFound, shape)
}

func (f ConstsFile) Consts(context.Context) (Consts, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, fmt.Errorf("descriptor: read %s: %w", string(f), err)
	}
	return DecodeConsts(string(f), data)
}
