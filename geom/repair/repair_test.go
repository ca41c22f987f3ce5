package repair

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/steffenbk/reforger-asset-kit/geom"
)

// triCube is a closed unit-ish cube with outward triangle windings.
func triCube(half float64) *geom.Mesh {
	quads := [][]int{
		{0, 3, 2, 1}, {4, 5, 6, 7},
		{0, 1, 5, 4}, {2, 3, 7, 6},
		{1, 2, 6, 5}, {0, 4, 7, 3},
	}
	m := &geom.Mesh{
		Name: "cube",
		Vertices: []mgl64.Vec3{
			{-half, -half, -half}, {half, -half, -half},
			{half, half, -half}, {-half, half, -half},
			{-half, -half, half}, {half, -half, half},
			{half, half, half}, {-half, half, half},
		},
	}
	for _, q := range quads {
		m.Faces = append(m.Faces, []int{q[0], q[1], q[2]}, []int{q[0], q[2], q[3]})
	}
	return m
}

func TestWeldMergesNearDuplicates(t *testing.T) {
	m := &geom.Mesh{
		Vertices: []mgl64.Vec3{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
			{1e-5, 0, 0}, // duplicate of vertex 0 within epsilon
			{0, 0, 1},
		},
		Faces: [][]int{{0, 1, 2}, {3, 1, 4}},
	}

	out := Weld(m, WeldEpsilonDefault)
	if out.VertexCount() != 4 {
		t.Errorf("Weld kept %d vertices; expected 4", out.VertexCount())
	}
	if out.Faces[1][0] != 0 {
		t.Errorf("second face vertex = %d; expected remap to 0", out.Faces[1][0])
	}
}

func TestWeldDropsCollapsedFaces(t *testing.T) {
	m := &geom.Mesh{
		Vertices: []mgl64.Vec3{{0, 0, 0}, {1e-5, 0, 0}, {0, 1e-5, 0}},
		Faces:    [][]int{{0, 1, 2}},
	}
	out := Weld(m, WeldEpsilonDefault)
	if out.FaceCount() != 0 {
		t.Errorf("fully collapsed face survived the weld")
	}
}

func TestWeldEpsilonFor(t *testing.T) {
	flat := &geom.Mesh{Vertices: []mgl64.Vec3{{0, 0, 0}, {10, 0, 0}, {10, 10, 0.1}}}
	if eps := WeldEpsilonFor(flat); eps != WeldEpsilonFlat {
		t.Errorf("flat mesh epsilon=%v; expected %v", eps, WeldEpsilonFlat)
	}
	solid := triCube(1)
	if eps := WeldEpsilonFor(solid); eps != WeldEpsilonDefault {
		t.Errorf("solid mesh epsilon=%v; expected %v", eps, WeldEpsilonDefault)
	}
}

func TestRemoveLoose(t *testing.T) {
	m := &geom.Mesh{
		Vertices: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {5, 5, 5}},
		Faces:    [][]int{{0, 1, 2}, {0, 1, 1}, {0, 1, 9}},
	}
	out := RemoveLoose(m)
	if out.FaceCount() != 1 {
		t.Errorf("RemoveLoose kept %d faces; expected 1", out.FaceCount())
	}
	if out.VertexCount() != 3 {
		t.Errorf("RemoveLoose kept %d vertices; expected 3 (unreferenced dropped)", out.VertexCount())
	}
}

func TestTriangulate(t *testing.T) {
	m := &geom.Mesh{
		Vertices: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}, {-1, 0.5, 0}},
		Faces:    [][]int{{0, 1, 2, 3, 4}},
	}
	out := Triangulate(m)
	if out.FaceCount() != 3 || !out.IsTriangulated() {
		t.Errorf("pentagon became %d faces; expected 3 triangles", out.FaceCount())
	}
}

func TestMakeNormalsConsistentFlipsInvertedFace(t *testing.T) {
	m := triCube(1)
	reverse(m.Faces[4]) // invert one triangle

	out := MakeNormalsConsistent(m)
	if vol := out.SignedVolume(); math.Abs(vol-8.0) > 1e-9 {
		t.Errorf("volume after repair = %v; expected 8", vol)
	}
}

func TestMakeNormalsConsistentFlipsInwardMesh(t *testing.T) {
	m := triCube(1)
	for _, f := range m.Faces {
		reverse(f)
	}

	out := MakeNormalsConsistent(m)
	if vol := out.SignedVolume(); vol <= 0 {
		t.Errorf("volume after repair = %v; expected positive (outward)", vol)
	}
}

func TestOffsetZeroIsIdentity(t *testing.T) {
	m := triCube(1)
	out := Offset(m, 0)
	for i := range m.Vertices {
		if !out.Vertices[i].ApproxEqual(m.Vertices[i]) {
			t.Fatalf("zero offset moved vertex %d", i)
		}
	}
}

func TestOffsetExpandsCube(t *testing.T) {
	m := triCube(1)
	out := Offset(m, 0.1)

	b, err := geom.BoundsOf([]*geom.Mesh{out})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if b.Max[i] <= 1 || b.Min[i] >= -1 {
			t.Errorf("offset did not expand axis %d: %v..%v", i, b.Min[i], b.Max[i])
		}
	}
	if vol := out.SignedVolume(); vol <= 8 {
		t.Errorf("offset volume %v; expected > 8", vol)
	}
}

func TestRepairIsIdempotent(t *testing.T) {
	m := triCube(1)
	// sprinkle defects: near-duplicate vertex and an inverted face
	m.Vertices = append(m.Vertices, mgl64.Vec3{1 + 1e-5, 1, 1})
	m.Faces = append(m.Faces, []int{0, 1, 1})
	reverse(m.Faces[3])

	once := Repair(m)
	twice := Repair(once)

	if once.VertexCount() != twice.VertexCount() || once.FaceCount() != twice.FaceCount() {
		t.Fatalf("Repair not idempotent: %d/%d verts, %d/%d faces",
			once.VertexCount(), twice.VertexCount(), once.FaceCount(), twice.FaceCount())
	}
	for i := range once.Vertices {
		if !once.Vertices[i].ApproxEqual(twice.Vertices[i]) {
			t.Fatalf("Repair moved vertex %d on second run", i)
		}
	}
	if vol := once.SignedVolume(); vol <= 0 {
		t.Errorf("repaired volume %v; expected positive", vol)
	}
}
