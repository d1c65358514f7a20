// Package manifest reads the dependency tables of a Cargo.toml.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"crate2bib/internal/common/fsutil"
)

// Kind is the dependency table a dependency was declared in.
type Kind string

const (
	KindNormal Kind = "normal"
	KindDev    Kind = "dev"
	KindBuild  Kind = "build"
)

// Dependency is one registry dependency of a manifest.
type Dependency struct {
	// Name is the key used in the manifest; Crate differs when renamed
	// through `package = "..."`.
	Name    string
	Crate   string
	Version string
	Kind    Kind
}

type depTables struct {
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
}

type cargoToml struct {
	Dependencies      map[string]any       `toml:"dependencies"`
	DevDependencies   map[string]any       `toml:"dev-dependencies"`
	BuildDependencies map[string]any       `toml:"build-dependencies"`
	Workspace         workspaceTable       `toml:"workspace"`
	Target            map[string]depTables `toml:"target"`
}

type workspaceTable struct {
	Dependencies map[string]any `toml:"dependencies"`
}

// LoadCargoToml reads the manifest at path (a Cargo.toml or a directory
// containing one) and returns its registry dependencies sorted by name.
// Dependencies without a version requirement (path or git only) are skipped.
// A crate declared in several tables is reported once, for the first of
// normal, dev, build.
func LoadCargoToml(path string) ([]Dependency, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	if st, err := os.Stat(p); err == nil && st.IsDir() {
		p = filepath.Join(p, "Cargo.toml")
	}
	if !fsutil.PathExists(p) {
		return nil, fmt.Errorf("no Cargo.toml at %s", p)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes manifest bytes. See LoadCargoToml.
func Parse(data []byte) ([]Dependency, error) {
	var doc cargoToml
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode Cargo.toml: %w", err)
	}

	seen := map[string]bool{}
	var out []Dependency
	add := func(table map[string]any, kind Kind) error {
		names := make([]string, 0, len(table))
		for name := range table {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			d, ok, err := parseDependency(name, table[name], doc.Workspace.Dependencies)
			if err != nil {
				return err
			}
			if !ok || seen[d.Crate] {
				continue
			}
			seen[d.Crate] = true
			d.Kind = kind
			out = append(out, d)
		}
		return nil
	}

	tables := []depTables{{
		Dependencies:      doc.Dependencies,
		DevDependencies:   doc.DevDependencies,
		BuildDependencies: doc.BuildDependencies,
	}}
	targets := make([]string, 0, len(doc.Target))
	for t := range doc.Target {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	for _, t := range targets {
		tables = append(tables, doc.Target[t])
	}
	for _, kind := range []Kind{KindNormal, KindDev, KindBuild} {
		for _, t := range tables {
			var table map[string]any
			switch kind {
			case KindNormal:
				table = t.Dependencies
			case KindDev:
				table = t.DevDependencies
			case KindBuild:
				table = t.BuildDependencies
			}
			if err := add(table, kind); err != nil {
				return nil, err
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func parseDependency(name string, raw any, workspace map[string]any) (Dependency, bool, error) {
	d := Dependency{Name: name, Crate: name}
	switch v := raw.(type) {
	case string:
		d.Version = strings.TrimSpace(v)
	case map[string]any:
		if inherit, _ := v["workspace"].(bool); inherit {
			ws, ok := workspace[name]
			if !ok {
				return d, false, fmt.Errorf("dependency %q inherits from workspace but the workspace does not declare it", name)
			}
			wd, ok, err := parseDependency(name, ws, nil)
			if err != nil || !ok {
				return d, ok, err
			}
			d.Crate, d.Version = wd.Crate, wd.Version
		}
		if pkg, ok := v["package"].(string); ok && pkg != "" {
			d.Crate = pkg
		}
		if ver, ok := v["version"].(string); ok {
			d.Version = strings.TrimSpace(ver)
		}
	default:
		return d, false, fmt.Errorf("dependency %q: unsupported value of type %T", name, raw)
	}
	return d, d.Version != "", nil
}

// Query renders the dependency as "crate requirement".
func (d Dependency) Query() string {
	return d.Crate + " " + d.Version
}
