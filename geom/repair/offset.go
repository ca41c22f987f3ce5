package repair

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/steffenbk/reforger-asset-kit/geom"
)

// Offset expands a closed mesh outward by thickness along averaged
// per-vertex normals. This is a shell/solidify operation, not a Minkowski
// offset: self-intersections on concave regions are possible and are not
// repaired. Zero thickness is the identity.
func Offset(m *geom.Mesh, thickness float64) *geom.Mesh {
	if thickness <= 0 {
		return m.Clone()
	}

	// Unnormalized newell normals are area-weighted, so big faces
	// dominate the vertex average.
	normals := make([]mgl64.Vec3, len(m.Vertices))
	for fi, f := range m.Faces {
		n := m.FaceNormal(fi)
		for _, vi := range f {
			normals[vi] = normals[vi].Add(n)
		}
	}

	out := m.Clone()
	for i := range out.Vertices {
		if l := normals[i].Len(); l > 0 {
			out.Vertices[i] = out.Vertices[i].Add(normals[i].Mul(thickness / l))
		}
	}
	return out
}
