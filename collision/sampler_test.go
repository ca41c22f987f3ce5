package collision

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/steffenbk/reforger-asset-kit/geom"
)

func pointsMesh(n int) *geom.Mesh {
	m := &geom.Mesh{}
	for i := 0; i < n; i++ {
		m.Vertices = append(m.Vertices, mgl64.Vec3{float64(i), 0, 0})
	}
	return m
}

func TestSamplePerMeshCap(t *testing.T) {
	s := DefaultSampler()
	cloud := s.Sample([]*geom.Mesh{pointsMesh(1000)})
	if len(cloud) > DefaultPerMeshCap {
		t.Errorf("sampled %d points; expected <= %d", len(cloud), DefaultPerMeshCap)
	}
	if cloud[0] != (mgl64.Vec3{0, 0, 0}) {
		t.Errorf("first sample %v; expected the first vertex", cloud[0])
	}
}

func TestSampleAggregateCap(t *testing.T) {
	s := DefaultSampler()
	meshes := make([]*geom.Mesh, 20)
	for i := range meshes {
		meshes[i] = pointsMesh(100) // at cap, no per-mesh stride
	}
	cloud := s.Sample(meshes)
	if len(cloud) > DefaultAggregateCap {
		t.Errorf("sampled %d points; expected <= %d", len(cloud), DefaultAggregateCap)
	}
}

func TestSampleSmallInputUntouched(t *testing.T) {
	s := DefaultSampler()
	cloud := s.Sample([]*geom.Mesh{pointsMesh(50)})
	if len(cloud) != 50 {
		t.Errorf("sampled %d points; expected all 50", len(cloud))
	}
}

func TestSampleDeterministic(t *testing.T) {
	s := DefaultSampler()
	meshes := []*geom.Mesh{pointsMesh(777), pointsMesh(333)}

	a := s.Sample(meshes)
	b := s.Sample(meshes)
	if len(a) != len(b) {
		t.Fatalf("sample sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs between runs", i)
		}
	}
}

func TestSampleUncapped(t *testing.T) {
	s := Sampler{} // zero caps disable sampling
	cloud := s.Sample([]*geom.Mesh{pointsMesh(5000)})
	if len(cloud) != 5000 {
		t.Errorf("uncapped sampler returned %d points; expected 5000", len(cloud))
	}
}
