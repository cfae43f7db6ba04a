package descriptor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// constsName is the base name of the constants file in a catalog
// directory.
const constsName = "consts"

var extensions = []string{".json", ".yaml", ".yml"}

// Catalog serves descriptors from a directory holding {shape}.json,
// {shape}.yaml or {shape}.yml files next to a consts file.
type Catalog struct {
	dir    string
	logger *slog.Logger
}

// NewCatalog returns a catalog over dir. A nil logger discards output.
func NewCatalog(dir string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Catalog{dir: dir, logger: logger}
}

// Dir returns the catalog directory.
func (c *Catalog) Dir() string { return c.dir }

func (c *Catalog) read(base string) (string, []byte, error) {
	for _, ext := range extensions {
		name := base + ext
		data, err := os.ReadFile(filepath.Join(c.dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", nil, fmt.Errorf("descriptor: read %s: %w", name, err)
		}
		return name, data, nil
	}
	return "", nil, fmt.Errorf("%w: %s in %s", ErrNotFound, base, c.dir)
}

func (c *Catalog) Geometry(ctx context.Context, shape string) (Geometry, error) {
	if !ValidName(shape) || shape == constsName {
		return Geometry{}, fmt.Errorf("%w: shape %q", ErrNotFound, shape)
	}
	name, data, err := c.read(shape)
	if err != nil {
		return Geometry{}, err
	}
	return DecodeGeometry(name, data)
}

func (c *Catalog) Consts(ctx context.Context) (Consts, error) {
	name, data, err := c.read(constsName)
	if err != nil {
		return nil, err
	}
	return DecodeConsts(name, data)
}

// Names lists the shapes in the directory, sorted.
func (c *Catalog) Names(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("descriptor: list %s: %w", c.dir, err)
	}
	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		shape, ok := shapeOf(e.Name())
		if !ok || seen[shape] {
			continue
		}
		seen[shape] = true
		names = append(names, shape)
	}
	sort.Strings(names)
	return names, nil
}

// shapeOf maps a file name to its shape name. The consts file maps to
// itself.
func shapeOf(file string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(file))
	for _, e := range extensions {
		if ext == e {
			base := strings.TrimSuffix(file, filepath.Ext(file))
			if !ValidName(base) {
				return "", false
			}
			if base == constsName {
				return "", false
			}
			return base, true
		}
	}
	return "", false
}

// Watch calls onChange with the shape name whenever a descriptor file in
// the directory is written, created, removed or renamed. A change to the
// consts file is reported with an empty shape. Watch blocks until ctx is
// done.
func (c *Catalog) Watch(ctx context.Context, onChange func(shape string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("descriptor: watch: %w", err)
	}
	defer w.Close()

	if err := w.Add(c.dir); err != nil {
		return fmt.Errorf("descriptor: watch %s: %w", c.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			file := filepath.Base(ev.Name)
			if shape, ok := shapeOf(file); ok {
				c.logger.Debug("descriptor changed", "shape", shape, "op", ev.Op.String())
				onChange(shape)
			} else if strings.TrimSuffix(file, filepath.Ext(file)) == constsName {
				c.logger.Debug("constants changed", "op", ev.Op.String())
				onChange("")
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("descriptor watch error", "err", err)
		}
	}
}
