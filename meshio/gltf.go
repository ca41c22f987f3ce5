package meshio

import (
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/steffenbk/reforger-asset-kit/collision"
	"github.com/steffenbk/reforger-asset-kit/geom"
)

// WriteGLTF writes the proxy set as binary glTF, one node per proxy.
// Usage and layer preset ride in node extras, where engine import
// scripts pick them up.
func WriteGLTF(w io.Writer, set collision.ProxySet) error {
	doc := gltf.NewDocument()

	for _, proxy := range set {
		m := proxy.Mesh
		if !m.IsTriangulated() {
			return errors.Errorf("proxy %q is not triangulated", proxy.Name)
		}

		positions := make([][3]float32, len(m.Vertices))
		for i, v := range m.Vertices {
			positions[i] = [3]float32{float32(v.X()), float32(v.Y()), float32(v.Z())}
		}
		normals := vertexNormals(m)

		indices := make([]uint32, 0, len(m.Faces)*3)
		for _, f := range m.Faces {
			indices = append(indices, uint32(f[0]), uint32(f[1]), uint32(f[2]))
		}

		attributes := map[string]uint32{
			"POSITION": modeler.WritePosition(doc, positions),
			"NORMAL":   modeler.WriteNormal(doc, normals),
		}

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: proxy.Name,
			Primitives: []*gltf.Primitive{{
				Attributes: attributes,
				Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
			}},
		})
		meshIndex := uint32(len(doc.Meshes) - 1)

		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: proxy.Name,
			Mesh: gltf.Index(meshIndex),
			Extras: map[string]interface{}{
				"usage":        proxy.Usage,
				"layer_preset": proxy.LayerPreset,
			},
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
	}

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}

// vertexNormals averages incident face normals per vertex. Area
// weighting comes for free from the unnormalized cross products.
func vertexNormals(m *geom.Mesh) [][3]float32 {
	sums := make([][3]float64, len(m.Vertices))
	for fi, f := range m.Faces {
		n := m.FaceNormal(fi)
		for _, vi := range f {
			sums[vi][0] += n.X()
			sums[vi][1] += n.Y()
			sums[vi][2] += n.Z()
		}
	}

	out := make([][3]float32, len(sums))
	for i, n := range sums {
		l := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
		if l > 0 {
			out[i] = [3]float32{float32(n[0] / l), float32(n[1] / l), float32(n[2] / l)}
		} else {
			out[i] = [3]float32{0, 0, 1}
		}
	}
	return out
}
