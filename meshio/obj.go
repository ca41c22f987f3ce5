// Package meshio reads source geometry and writes tagged proxy sets for
// the downstream asset pipeline: Wavefront OBJ, binary glTF and FBX.
package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/steffenbk/reforger-asset-kit/collision"
	"github.com/steffenbk/reforger-asset-kit/geom"
)

// WriteOBJ writes every proxy as its own object. Usage and layer preset
// travel as comments since OBJ has no metadata channel.
func WriteOBJ(_w io.Writer, set collision.ProxySet) error {
	w := func(format string, args ...interface{}) {
		_w.Write(([]byte)(fmt.Sprintf(format+"\n", args...)))
	}

	base := 1 // obj indices are 1-based and global
	for _, proxy := range set {
		w("o %s", proxy.Name)
		w("# usage=%s layer_preset=%s", proxy.Usage, proxy.LayerPreset)

		for _, v := range proxy.Mesh.Vertices {
			w("v %f %f %f", v.X(), v.Y(), v.Z())
		}
		for _, f := range proxy.Mesh.Faces {
			line := "f"
			for _, vi := range f {
				line += " " + strconv.Itoa(base+vi)
			}
			w("%s", line)
		}
		base += len(proxy.Mesh.Vertices)
	}
	return nil
}

// ReadOBJ parses vertex positions and faces; one mesh per "o" object,
// everything before the first "o" becomes an unnamed mesh. Texture and
// normal indices on faces are ignored, only positions feed the collision
// pipelines.
func ReadOBJ(r io.Reader) ([]*geom.Mesh, error) {
	var meshes []*geom.Mesh
	current := &geom.Mesh{}
	// obj face indices are global, vertices land in the current mesh
	var globalVerts []mgl64.Vec3
	vertOwner := make([]*geom.Mesh, 0)
	localIndex := make([]int, 0)

	flush := func() {
		if !current.IsEmpty() || len(current.Faces) > 0 {
			meshes = append(meshes, current)
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "o", "g":
			flush()
			current = &geom.Mesh{}
			if len(fields) > 1 {
				current.Name = fields[1]
			}
		case "v":
			if len(fields) < 4 {
				return nil, errors.Errorf("line %d: vertex needs 3 coordinates", lineNo)
			}
			var v mgl64.Vec3
			for i := 0; i < 3; i++ {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, errors.Wrapf(err, "line %d: bad vertex coordinate", lineNo)
				}
				v[i] = f
			}
			globalVerts = append(globalVerts, v)
			vertOwner = append(vertOwner, current)
			localIndex = append(localIndex, len(current.Vertices))
			current.Vertices = append(current.Vertices, v)
		case "f":
			if len(fields) < 4 {
				return nil, errors.Errorf("line %d: face needs at least 3 vertices", lineNo)
			}
			face := make([]int, 0, len(fields)-1)
			for _, field := range fields[1:] {
				idxStr := strings.SplitN(field, "/", 2)[0]
				idx, err := strconv.Atoi(idxStr)
				if err != nil {
					return nil, errors.Wrapf(err, "line %d: bad face index", lineNo)
				}
				if idx < 0 {
					idx = len(globalVerts) + idx
				} else {
					idx--
				}
				if idx < 0 || idx >= len(globalVerts) {
					return nil, errors.Errorf("line %d: face index out of range", lineNo)
				}
				// Faces crossing objects get their vertices pulled into
				// the current mesh.
				if vertOwner[idx] != current {
					localIndex[idx] = len(current.Vertices)
					vertOwner[idx] = current
					current.Vertices = append(current.Vertices, globalVerts[idx])
				}
				face = append(face, localIndex[idx])
			}
			current.Faces = append(current.Faces, face)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "obj read failed")
	}
	flush()
	if len(meshes) == 0 {
		return nil, errors.Errorf("no geometry found")
	}
	return meshes, nil
}
