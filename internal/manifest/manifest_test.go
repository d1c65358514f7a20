package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

const cargoTomlFixture = `
[package]
name = "demo"
version = "0.1.0"

[dependencies]
serde = { version = "1.0", features = ["derive"] }
rand = "0.8"
local = { path = "../local" }
git_only = { git = "https://github.com/o/r" }
tokio-rt = { package = "tokio", version = "1.40" }
anyhow = { workspace = true }

[dev-dependencies]
approx = "0.5"
serde = "1.0"

[build-dependencies]
cc = "1"

[target.'cfg(unix)'.dependencies]
libc = "0.2"

[workspace.dependencies]
anyhow = "1.0.86"
`

func TestParse(t *testing.T) {
	deps, err := Parse([]byte(cargoTomlFixture))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []Dependency{
		{Name: "anyhow", Crate: "anyhow", Version: "1.0.86", Kind: KindNormal},
		{Name: "approx", Crate: "approx", Version: "0.5", Kind: KindDev},
		{Name: "cc", Crate: "cc", Version: "1", Kind: KindBuild},
		{Name: "libc", Crate: "libc", Version: "0.2", Kind: KindNormal},
		{Name: "rand", Crate: "rand", Version: "0.8", Kind: KindNormal},
		{Name: "serde", Crate: "serde", Version: "1.0", Kind: KindNormal},
		{Name: "tokio-rt", Crate: "tokio", Version: "1.40", Kind: KindNormal},
	}
	if len(deps) != len(want) {
		t.Fatalf("expected %d deps, got %d: %+v", len(want), len(deps), deps)
	}
	for i := range want {
		if deps[i] != want[i] {
			t.Fatalf("dep %d = %+v, want %+v", i, deps[i], want[i])
		}
	}
	if q := deps[6].Query(); q != "tokio 1.40" {
		t.Fatalf("query = %q", q)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte("[dependencies\n")); err == nil {
		t.Fatalf("expected toml error")
	}
	if _, err := Parse([]byte("[dependencies]\nx = 1\n")); err == nil {
		t.Fatalf("expected error for numeric dependency")
	}
	if _, err := Parse([]byte("[dependencies]\nx = { workspace = true }\n")); err == nil {
		t.Fatalf("expected error for missing workspace dependency")
	}
}

func TestLoadCargoTomlFromDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(cargoTomlFixture), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, p := range []string{dir, filepath.Join(dir, "Cargo.toml")} {
		deps, err := LoadCargoToml(p)
		if err != nil || len(deps) != 7 {
			t.Fatalf("load %s: %d deps, err=%v", p, len(deps), err)
		}
	}
	if _, err := LoadCargoToml(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
