package meshio

import (
	"bytes"
	"testing"

	"github.com/qmuntal/gltf"
)

func TestWriteGLTF(t *testing.T) {
	var buf bytes.Buffer
	set := testProxySet()
	if err := WriteGLTF(&buf, set); err != nil {
		t.Fatal(err)
	}

	doc := new(gltf.Document)
	if err := gltf.NewDecoder(&buf).Decode(doc); err != nil {
		t.Fatal(err)
	}

	if len(doc.Meshes) != len(set) || len(doc.Nodes) != len(set) {
		t.Fatalf("document has %d meshes / %d nodes; expected %d each",
			len(doc.Meshes), len(doc.Nodes), len(set))
	}
	if len(doc.Scenes) == 0 || len(doc.Scenes[0].Nodes) != len(set) {
		t.Fatalf("scene does not reference all proxy nodes")
	}

	for i, node := range doc.Nodes {
		if node.Name != set[i].Name {
			t.Errorf("node %d name %q; expected %q", i, node.Name, set[i].Name)
		}
		extras, ok := node.Extras.(map[string]interface{})
		if !ok {
			t.Fatalf("node %d extras missing: %v", i, node.Extras)
		}
		if extras["usage"] != set[i].Usage {
			t.Errorf("node %d usage %v; expected %q", i, extras["usage"], set[i].Usage)
		}
		if extras["layer_preset"] != set[i].LayerPreset {
			t.Errorf("node %d layer_preset %v; expected %q", i, extras["layer_preset"], set[i].LayerPreset)
		}
	}

	for i, mesh := range doc.Meshes {
		if len(mesh.Primitives) != 1 {
			t.Fatalf("mesh %d has %d primitives; expected 1", i, len(mesh.Primitives))
		}
		attrs := mesh.Primitives[0].Attributes
		if _, ok := attrs["POSITION"]; !ok {
			t.Errorf("mesh %d has no POSITION accessor", i)
		}
		if _, ok := attrs["NORMAL"]; !ok {
			t.Errorf("mesh %d has no NORMAL accessor", i)
		}
	}
}

func TestWriteGLTFRejectsUntriangulated(t *testing.T) {
	set := testProxySet()
	set[0].Mesh.Faces = [][]int{{0, 1, 2, 0}}

	var buf bytes.Buffer
	if err := WriteGLTF(&buf, set); err == nil {
		t.Errorf("expected error for non-triangle faces")
	}
}
