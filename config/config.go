// Package config holds tool-level defaults for the CLI and the web
// server. The collision core never reads this package; it takes explicit
// parameters so requests stay self-contained.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Tool struct {
	ListenAddr string `yaml:"listen_addr"`

	// Hull sampling caps, see collision.Sampler.
	PerMeshCap   int `yaml:"per_mesh_cap"`
	AggregateCap int `yaml:"aggregate_cap"`

	// Primitive tessellation.
	CylinderSegments int `yaml:"cylinder_segments"`
	SphereSegments   int `yaml:"sphere_segments"`
	SphereRings      int `yaml:"sphere_rings"`
}

func Default() Tool {
	return Tool{
		ListenAddr:       ":8000",
		PerMeshCap:       100,
		AggregateCap:     1000,
		CylinderSegments: 32,
		SphereSegments:   32,
		SphereRings:      16,
	}
}

var current = Default()

func Get() Tool { return current }

func Set(t Tool) { current = t }

// LoadFile merges a YAML config file over the defaults.
func LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to read config %q", path)
	}
	t := Default()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return errors.Wrapf(err, "Failed to parse config %q", path)
	}
	current = t
	return nil
}
