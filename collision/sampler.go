package collision

import (
	"github.com/steffenbk/reforger-asset-kit/geom"
)

// Sampling caps carried over from the source tooling. They bound hull
// construction cost; the optimal values are an open question there too,
// so they stay configurable.
const (
	DefaultPerMeshCap   = 100
	DefaultAggregateCap = 1000
)

// Sampler reduces dense vertex sets to a bounded working set for hull
// construction. Stride sampling, never random: the same input always
// yields the same cloud. Stride sampling can drop extreme points on fine
// protrusions, producing a hull that under-covers thin features; that is
// an accepted approximation.
type Sampler struct {
	PerMeshCap   int
	AggregateCap int
}

func DefaultSampler() Sampler {
	return Sampler{PerMeshCap: DefaultPerMeshCap, AggregateCap: DefaultAggregateCap}
}

// Sample strides over each mesh whose vertex count exceeds PerMeshCap,
// then strides again over the concatenated result if it exceeds
// AggregateCap.
func (s Sampler) Sample(meshes []*geom.Mesh) geom.PointCloud {
	cloud := make(geom.PointCloud, 0)
	for _, m := range meshes {
		stride := 1
		if s.PerMeshCap > 0 && len(m.Vertices) > s.PerMeshCap {
			stride = (len(m.Vertices) + s.PerMeshCap - 1) / s.PerMeshCap
		}
		for i := 0; i < len(m.Vertices); i += stride {
			cloud = append(cloud, m.Vertices[i])
		}
	}

	if s.AggregateCap > 0 && len(cloud) > s.AggregateCap {
		stride := (len(cloud) + s.AggregateCap - 1) / s.AggregateCap
		reduced := make(geom.PointCloud, 0, s.AggregateCap)
		for i := 0; i < len(cloud); i += stride {
			reduced = append(reduced, cloud[i])
		}
		cloud = reduced
	}
	return cloud
}
