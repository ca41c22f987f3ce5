package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func testCube(half float64) *Mesh {
	return &Mesh{
		Name: "cube",
		Vertices: []mgl64.Vec3{
			{-half, -half, -half}, {half, -half, -half},
			{half, half, -half}, {-half, half, -half},
			{-half, -half, half}, {half, -half, half},
			{half, half, half}, {-half, half, half},
		},
		Faces: [][]int{
			{0, 3, 2, 1}, {4, 5, 6, 7},
			{0, 1, 5, 4}, {2, 3, 7, 6},
			{1, 2, 6, 5}, {0, 4, 7, 3},
		},
	}
}

func TestSignedVolumeOfCube(t *testing.T) {
	m := testCube(1)
	tri := &Mesh{Vertices: m.Vertices}
	for _, f := range m.Faces {
		tri.Faces = append(tri.Faces, []int{f[0], f[1], f[2]}, []int{f[0], f[2], f[3]})
	}
	vol := tri.SignedVolume()
	if math.Abs(vol-8.0) > 1e-9 {
		t.Errorf("SignedVolume=%v; expected 8", vol)
	}
}

func TestFaceNormalDirection(t *testing.T) {
	m := testCube(1)
	// face 1 is the +Z quad with ccw winding seen from outside
	n := m.FaceNormal(1)
	if n.Z() <= 0 || math.Abs(n.X()) > 1e-12 || math.Abs(n.Y()) > 1e-12 {
		t.Errorf("FaceNormal(+Z quad)=%v; expected +Z direction", n)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := testCube(1)
	c := m.Clone()
	c.Vertices[0][0] = 100
	c.Faces[0][0] = 5
	if m.Vertices[0][0] == 100 || m.Faces[0][0] == 5 {
		t.Errorf("Clone shares storage with original")
	}
}

func TestMergeRebasesIndices(t *testing.T) {
	a := testCube(1)
	b := testCube(1).Translate(mgl64.Vec3{10, 0, 0})
	m := Merge([]*Mesh{a, b})

	if m.VertexCount() != 16 || m.FaceCount() != 12 {
		t.Fatalf("Merge got %d verts %d faces; expected 16/12", m.VertexCount(), m.FaceCount())
	}
	for _, f := range m.Faces[6:] {
		for _, vi := range f {
			if vi < 8 {
				t.Fatalf("second mesh face %v references first mesh vertices", f)
			}
		}
	}
}

func TestCenterAndScale(t *testing.T) {
	m := testCube(1).Translate(mgl64.Vec3{5, 5, 5})
	out, err := CenterAndScale([]*Mesh{m}, 10)
	if err != nil {
		t.Fatal(err)
	}

	b, err := BoundsOf(out)
	if err != nil {
		t.Fatal(err)
	}
	if c := b.Center(); c.Len() > 1e-9 {
		t.Errorf("center after CenterAndScale = %v; expected origin", c)
	}
	if ext := b.Extents(); math.Abs(ext.X()-10) > 1e-9 {
		t.Errorf("largest extent = %v; expected 10", ext.X())
	}
}

func TestCenterAndScaleEmpty(t *testing.T) {
	if _, err := CenterAndScale(nil, 10); err == nil {
		t.Errorf("expected error on empty input")
	}
}

func TestTransformTranslates(t *testing.T) {
	m := testCube(1)
	moved := m.Transform(mgl64.Translate3D(1, 2, 3))
	want := mgl64.Vec3{0, 1, 2}
	if got := moved.Vertices[0]; !got.ApproxEqual(want) {
		t.Errorf("Transform vertex 0 = %v; expected %v", got, want)
	}
}
