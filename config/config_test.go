package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	d := Default()
	if d.ListenAddr != ":8000" {
		t.Errorf("default listen addr %q; expected :8000", d.ListenAddr)
	}
	if d.PerMeshCap != 100 || d.AggregateCap != 1000 {
		t.Errorf("default sampling caps %d/%d; expected 100/1000", d.PerMeshCap, d.AggregateCap)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tool.yaml")
	src := "listen_addr: \":9000\"\nper_mesh_cap: 250\ncylinder_segments: 48\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	defer Set(Default())
	if err := LoadFile(path); err != nil {
		t.Fatal(err)
	}

	got := Get()
	if got.ListenAddr != ":9000" {
		t.Errorf("listen addr %q; expected :9000", got.ListenAddr)
	}
	if got.PerMeshCap != 250 {
		t.Errorf("per mesh cap %d; expected 250", got.PerMeshCap)
	}
	if got.CylinderSegments != 48 {
		t.Errorf("cylinder segments %d; expected 48", got.CylinderSegments)
	}
	// unset keys keep their defaults
	if got.AggregateCap != 1000 {
		t.Errorf("aggregate cap %d; expected default 1000", got.AggregateCap)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if err := LoadFile("/does/not/exist.yaml"); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: [oops\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := LoadFile(path); err == nil {
		t.Errorf("expected error for malformed yaml")
	}
}
