package data

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Catalog holds named combat definitions and field items.
// Not safe for concurrent mutation; build it at startup.
type Catalog struct {
	defs   map[string]*Definition
	fields map[uint16]*FieldDef
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		defs:   make(map[string]*Definition),
		fields: make(map[uint16]*FieldDef),
	}
}

// Add validates def and stores it. Names are unique.
func (c *Catalog) Add(def *Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if _, ok := c.defs[def.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, def.Name)
	}
	c.defs[def.Name] = def
	return nil
}

// AddField validates f and stores it, replacing an earlier field with the
// same item id.
func (c *Catalog) AddField(f *FieldDef) error {
	if err := f.Validate(); err != nil {
		return err
	}
	c.fields[f.ItemID] = f
	return nil
}

// Get returns the definition named name.
func (c *Catalog) Get(name string) (*Definition, bool) {
	def, ok := c.defs[name]
	return def, ok
}

// Names returns all definition names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.defs))
	for name := range c.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fields returns all field items ordered by item id.
func (c *Catalog) Fields() []*FieldDef {
	out := make([]*FieldDef, 0, len(c.fields))
	for _, f := range c.fields {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b *FieldDef) int { return int(a.ItemID) - int(b.ItemID) })
	return out
}

// Len returns the number of definitions.
func (c *Catalog) Len() int { return len(c.defs) }

// LoadDir parses every *.yaml and *.yml file in dir concurrently and merges
// them in file name order.
func LoadDir(ctx context.Context, dir string) (*Catalog, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("listing definitions in %s: %w", dir, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	files := make([]*File, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading definitions %s: %w", path, err)
			}
			f, err := ParseFile(raw)
			if err != nil {
				return fmt.Errorf("parsing definitions %s: %w", path, err)
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cat := NewCatalog()
	for i, f := range files {
		for _, def := range f.Combats {
			if err := cat.Add(def); err != nil {
				return nil, fmt.Errorf("loading %s: %w", paths[i], err)
			}
		}
		for _, fd := range f.Fields {
			if err := cat.AddField(fd); err != nil {
				return nil, fmt.Errorf("loading %s: %w", paths[i], err)
			}
		}
	}

	slog.Info("loaded combat definitions", "dir", dir, "files", len(paths), "combats", cat.Len(), "fields", len(cat.fields))
	return cat, nil
}
