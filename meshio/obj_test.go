package meshio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/steffenbk/reforger-asset-kit/collision"
	"github.com/steffenbk/reforger-asset-kit/geom"
)

func testProxySet() collision.ProxySet {
	tri := func(name string, base mgl64.Vec3) *geom.Mesh {
		return &geom.Mesh{
			Name: name,
			Vertices: []mgl64.Vec3{
				base, base.Add(mgl64.Vec3{1, 0, 0}), base.Add(mgl64.Vec3{0, 1, 0}),
			},
			Faces: [][]int{{0, 1, 2}},
		}
	}
	return collision.ProxySet{
		{Name: "UCX_body_part_00", Mesh: tri("UCX_body_part_00", mgl64.Vec3{0, 0, 0}),
			Usage: "Vehicle", LayerPreset: "Vehicle"},
		{Name: "UCX_body_part_01", Mesh: tri("UCX_body_part_01", mgl64.Vec3{5, 0, 0}),
			Usage: "Vehicle", LayerPreset: "Vehicle"},
	}
}

func TestWriteOBJ(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, testProxySet()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"o UCX_body_part_00",
		"o UCX_body_part_01",
		"# usage=Vehicle layer_preset=Vehicle",
		"f 1 2 3",
		"f 4 5 6", // indices are global and 1-based
	} {
		if !strings.Contains(out, want) {
			t.Errorf("obj output missing %q", want)
		}
	}
}

func TestObjRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	set := testProxySet()
	if err := WriteOBJ(&buf, set); err != nil {
		t.Fatal(err)
	}

	meshes, err := ReadOBJ(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(meshes) != len(set) {
		t.Fatalf("read %d meshes; expected %d", len(meshes), len(set))
	}
	for i, m := range meshes {
		want := set[i].Mesh
		if m.Name != want.Name {
			t.Errorf("mesh %d name %q; expected %q", i, m.Name, want.Name)
		}
		if m.VertexCount() != want.VertexCount() || m.FaceCount() != want.FaceCount() {
			t.Fatalf("mesh %d is %d/%d; expected %d/%d", i,
				m.VertexCount(), m.FaceCount(), want.VertexCount(), want.FaceCount())
		}
		for j := range m.Vertices {
			if !m.Vertices[j].ApproxEqualThreshold(want.Vertices[j], 1e-5) {
				t.Fatalf("mesh %d vertex %d = %v; expected %v", i, j, m.Vertices[j], want.Vertices[j])
			}
		}
	}
}

func TestReadOBJNegativeIndices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"
	meshes, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(meshes) != 1 || meshes[0].FaceCount() != 1 {
		t.Fatalf("parsed %d meshes; expected 1 with 1 face", len(meshes))
	}
	if f := meshes[0].Faces[0]; f[0] != 0 || f[1] != 1 || f[2] != 2 {
		t.Errorf("face %v; expected [0 1 2]", f)
	}
}

func TestReadOBJIgnoresTextureNormalIndices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1/1 2/2/2 3/3/3\n"
	meshes, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if meshes[0].FaceCount() != 1 {
		t.Fatalf("face with /vt/vn indices not parsed")
	}
}

func TestReadOBJEmpty(t *testing.T) {
	if _, err := ReadOBJ(strings.NewReader("# nothing here\n")); err == nil {
		t.Errorf("expected error for geometry-free input")
	}
}

func TestReadOBJBadVertex(t *testing.T) {
	if _, err := ReadOBJ(strings.NewReader("v 1 2\n")); err == nil {
		t.Errorf("expected error for short vertex line")
	}
}
