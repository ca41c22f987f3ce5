package hull

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/steffenbk/reforger-asset-kit/geom"
)

func cubeCloud(half float64) geom.PointCloud {
	return geom.PointCloud{
		{-half, -half, -half}, {half, -half, -half},
		{half, half, -half}, {-half, half, -half},
		{-half, -half, half}, {half, -half, half},
		{half, half, half}, {-half, half, half},
	}
}

// isClosed verifies every directed edge has exactly one opposite twin.
func isClosed(m *geom.Mesh) bool {
	edges := make(map[[2]int]int)
	for _, f := range m.Faces {
		for i := range f {
			a, b := f[i], f[(i+1)%len(f)]
			edges[[2]int{a, b}]++
		}
	}
	for e, n := range edges {
		if n != 1 || edges[[2]int{e[1], e[0]}] != 1 {
			return false
		}
	}
	return true
}

func TestBuildCube(t *testing.T) {
	cloud := append(cubeCloud(1), mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.5, 0.2, -0.3})

	m, err := Build(cloud)
	if err != nil {
		t.Fatal(err)
	}

	if m.VertexCount() != 8 {
		t.Errorf("hull has %d vertices; expected the 8 cube corners", m.VertexCount())
	}
	if m.FaceCount() != 12 {
		t.Errorf("hull has %d faces; expected 12", m.FaceCount())
	}
	if !m.IsTriangulated() {
		t.Errorf("hull is not triangulated")
	}
	if !isClosed(m) {
		t.Errorf("hull is not a closed manifold")
	}
	if vol := m.SignedVolume(); math.Abs(vol-8.0) > 1e-9 {
		t.Errorf("hull volume %v; expected 8 (outward windings)", vol)
	}
}

func TestBuildExcludesInteriorPoints(t *testing.T) {
	cloud := cubeCloud(1)
	for x := -0.5; x <= 0.5; x += 0.25 {
		cloud = append(cloud, mgl64.Vec3{x, x / 2, -x})
	}

	m, err := Build(cloud)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range m.Vertices {
		for i := 0; i < 3; i++ {
			if math.Abs(math.Abs(v[i])-1) > 1e-9 {
				t.Fatalf("hull kept interior vertex %v", v)
			}
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	cloud := append(cubeCloud(1), mgl64.Vec3{0.1, 0.9, 0.3})

	a, err := Build(cloud)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(cloud)
	if err != nil {
		t.Fatal(err)
	}

	if a.VertexCount() != b.VertexCount() || a.FaceCount() != b.FaceCount() {
		t.Fatalf("hull sizes differ between runs")
	}
	for i := range a.Faces {
		for j := range a.Faces[i] {
			if a.Faces[i][j] != b.Faces[i][j] {
				t.Fatalf("face %d differs between runs: %v vs %v", i, a.Faces[i], b.Faces[i])
			}
		}
	}
}

var degenerateTests = []struct {
	name  string
	cloud geom.PointCloud
}{
	{"empty", geom.PointCloud{}},
	{"single", geom.PointCloud{{1, 2, 3}}},
	{"duplicates", geom.PointCloud{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}, {1, 1, 1}, {1, 1, 1}}},
	{"collinear", geom.PointCloud{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}}},
	{"coplanar", geom.PointCloud{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}, {0.5, 0.5, 0}}},
}

func TestBuildDegenerateInput(t *testing.T) {
	for _, test := range degenerateTests {
		_, err := Build(test.cloud)
		if _, ok := err.(*geom.DegenerateInputError); !ok {
			t.Errorf("Build(%s)=%v; expected DegenerateInputError", test.name, err)
		}
	}
}
