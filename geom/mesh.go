package geom

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is a polygonal mesh in world space. Faces index into Vertices and
// may have any arity >= 3 until a repair pass triangulates them.
// Pipeline steps never mutate their input; they return a new mesh.
type Mesh struct {
	Name     string       `json:"name,omitempty"`
	Vertices []mgl64.Vec3 `json:"vertices"`
	Faces    [][]int      `json:"faces"`
}

type PointCloud []mgl64.Vec3

func (m *Mesh) VertexCount() int { return len(m.Vertices) }
func (m *Mesh) FaceCount() int   { return len(m.Faces) }

func (m *Mesh) IsEmpty() bool { return len(m.Vertices) == 0 }

// IsTriangulated reports whether every face is a triangle.
func (m *Mesh) IsTriangulated() bool {
	for _, f := range m.Faces {
		if len(f) != 3 {
			return false
		}
	}
	return true
}

func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Name:     m.Name,
		Vertices: make([]mgl64.Vec3, len(m.Vertices)),
		Faces:    make([][]int, len(m.Faces)),
	}
	copy(c.Vertices, m.Vertices)
	for i, f := range m.Faces {
		c.Faces[i] = make([]int, len(f))
		copy(c.Faces[i], f)
	}
	return c
}

// Centroid returns the mean of all vertex positions.
func (m *Mesh) Centroid() mgl64.Vec3 {
	var sum mgl64.Vec3
	if len(m.Vertices) == 0 {
		return sum
	}
	for _, v := range m.Vertices {
		sum = sum.Add(v)
	}
	return sum.Mul(1.0 / float64(len(m.Vertices)))
}

func (m *Mesh) Translate(d mgl64.Vec3) *Mesh {
	c := m.Clone()
	for i := range c.Vertices {
		c.Vertices[i] = c.Vertices[i].Add(d)
	}
	return c
}

func (m *Mesh) Scale(s float64) *Mesh {
	c := m.Clone()
	for i := range c.Vertices {
		c.Vertices[i] = c.Vertices[i].Mul(s)
	}
	return c
}

// Transform applies a 4x4 matrix to every vertex.
func (m *Mesh) Transform(mat mgl64.Mat4) *Mesh {
	c := m.Clone()
	for i := range c.Vertices {
		c.Vertices[i] = mgl64.TransformCoordinate(c.Vertices[i], mat)
	}
	return c
}

// FaceNormal returns the (unnormalized) newell normal of face i.
// Works for non-planar polygons too, which is why newell is used
// instead of a single cross product.
func (m *Mesh) FaceNormal(i int) mgl64.Vec3 {
	var n mgl64.Vec3
	face := m.Faces[i]
	for j := range face {
		a := m.Vertices[face[j]]
		b := m.Vertices[face[(j+1)%len(face)]]
		n[0] += (a.Y() - b.Y()) * (a.Z() + b.Z())
		n[1] += (a.Z() - b.Z()) * (a.X() + b.X())
		n[2] += (a.X() - b.X()) * (a.Y() + b.Y())
	}
	return n
}

// SignedVolume computes the signed volume of a closed triangulated mesh
// via the divergence theorem. Positive means outward-facing normals.
func (m *Mesh) SignedVolume() float64 {
	var vol float64
	for _, f := range m.Faces {
		if len(f) != 3 {
			continue
		}
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		vol += a.Dot(b.Cross(c)) / 6.0
	}
	return vol
}

// Merge concatenates meshes into a single mesh, rebasing face indices.
func Merge(meshes []*Mesh) *Mesh {
	out := &Mesh{}
	for _, m := range meshes {
		base := len(out.Vertices)
		out.Vertices = append(out.Vertices, m.Vertices...)
		for _, f := range m.Faces {
			nf := make([]int, len(f))
			for i, vi := range f {
				nf[i] = vi + base
			}
			out.Faces = append(out.Faces, nf)
		}
	}
	return out
}

// CenterAndScale translates the combined centroid of meshes to the origin
// and uniformly scales them so the largest bounding extent equals
// maxDimension. Asset-prep helper for imported geometry.
func CenterAndScale(meshes []*Mesh, maxDimension float64) ([]*Mesh, error) {
	b, err := BoundsOf(meshes)
	if err != nil {
		return nil, err
	}
	ext := b.Extents()
	largest := ext[0]
	for i := 1; i < 3; i++ {
		if ext[i] > largest {
			largest = ext[i]
		}
	}
	scale := 1.0
	if largest > 0 && maxDimension > 0 {
		scale = maxDimension / largest
	}
	center := b.Center()
	out := make([]*Mesh, len(meshes))
	for i, m := range meshes {
		c := m.Translate(center.Mul(-1))
		out[i] = c.Scale(scale)
	}
	return out, nil
}
