// Package repair cleans up geometry produced by hull construction,
// decimation and shell offsetting: near-duplicate vertices are merged,
// loose geometry is dropped, every polygon is triangulated (a triangle is
// trivially planar, which is the actual fix for non-planar face
// artifacts) and normals are made consistent and outward-facing.
package repair

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/steffenbk/reforger-asset-kit/geom"
)

const (
	// Weld epsilons carried over from the source tooling: flat meshes
	// get the tighter threshold so thin sheets do not collapse.
	WeldEpsilonFlat    = 1e-4
	WeldEpsilonDefault = 1e-3

	// FlatRatio classifies a mesh as flat when its smallest extent is
	// below this fraction of the largest.
	FlatRatio = 0.1
)

// WeldEpsilonFor picks the merge threshold for a mesh by flatness.
func WeldEpsilonFor(m *geom.Mesh) float64 {
	b, err := geom.BoundsOf([]*geom.Mesh{m})
	if err != nil {
		return WeldEpsilonDefault
	}
	if b.IsFlat(FlatRatio) {
		return WeldEpsilonFlat
	}
	return WeldEpsilonDefault
}

// Repair runs the full pipeline: weld, drop loose geometry, triangulate,
// make normals consistent and outward. Mandatory after hull + decimate +
// offset since each of those can introduce degenerate or inverted faces.
// Applying Repair twice changes nothing.
func Repair(m *geom.Mesh) *geom.Mesh {
	out := Weld(m, WeldEpsilonFor(m))
	out = RemoveLoose(out)
	out = Triangulate(out)
	out = MakeNormalsConsistent(out)
	return out
}

// Weld merges vertices closer than epsilon using a spatial grid, keeping
// the first vertex of each merged group. Deterministic for identical
// input.
func Weld(m *geom.Mesh, epsilon float64) *geom.Mesh {
	if epsilon <= 0 || m.IsEmpty() {
		return m.Clone()
	}

	type cell [3]int
	cellOf := func(v mgl64.Vec3) cell {
		return cell{
			int(math.Floor(v.X() / epsilon)),
			int(math.Floor(v.Y() / epsilon)),
			int(math.Floor(v.Z() / epsilon)),
		}
	}

	grid := make(map[cell][]int) // kept-vertex indices per cell
	kept := make([]mgl64.Vec3, 0, len(m.Vertices))
	remap := make([]int, len(m.Vertices))

	epsSq := epsilon * epsilon
	for i, v := range m.Vertices {
		c := cellOf(v)
		found := -1
	search:
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					for _, ki := range grid[cell{c[0] + dx, c[1] + dy, c[2] + dz}] {
						if kept[ki].Sub(v).LenSqr() <= epsSq {
							found = ki
							break search
						}
					}
				}
			}
		}
		if found < 0 {
			found = len(kept)
			kept = append(kept, v)
			grid[c] = append(grid[c], found)
		}
		remap[i] = found
	}

	out := &geom.Mesh{Name: m.Name, Vertices: kept}
	for _, f := range m.Faces {
		nf := make([]int, 0, len(f))
		for _, vi := range f {
			nv := remap[vi]
			// drop consecutive duplicates created by the merge
			if len(nf) == 0 || nf[len(nf)-1] != nv {
				nf = append(nf, nv)
			}
		}
		if len(nf) > 1 && nf[0] == nf[len(nf)-1] {
			nf = nf[:len(nf)-1]
		}
		if len(nf) >= 3 {
			out.Faces = append(out.Faces, nf)
		}
	}
	return out
}

// RemoveLoose drops faces with repeated or invalid indices and vertices
// not referenced by any face.
func RemoveLoose(m *geom.Mesh) *geom.Mesh {
	out := &geom.Mesh{Name: m.Name}
	remap := make(map[int]int)
	for _, f := range m.Faces {
		if len(f) < 3 || hasDuplicateIndex(f) {
			continue
		}
		valid := true
		for _, vi := range f {
			if vi < 0 || vi >= len(m.Vertices) {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}
		nf := make([]int, len(f))
		for i, vi := range f {
			ni, ok := remap[vi]
			if !ok {
				ni = len(out.Vertices)
				remap[vi] = ni
				out.Vertices = append(out.Vertices, m.Vertices[vi])
			}
			nf[i] = ni
		}
		out.Faces = append(out.Faces, nf)
	}
	return out
}

func hasDuplicateIndex(f []int) bool {
	for i := range f {
		for j := i + 1; j < len(f); j++ {
			if f[i] == f[j] {
				return true
			}
		}
	}
	return false
}

// Triangulate converts every polygon to triangles: quads split on the
// 0-2 diagonal, larger polygons fan from their first vertex.
func Triangulate(m *geom.Mesh) *geom.Mesh {
	out := &geom.Mesh{Name: m.Name, Vertices: make([]mgl64.Vec3, len(m.Vertices))}
	copy(out.Vertices, m.Vertices)
	for _, f := range m.Faces {
		switch {
		case len(f) < 3:
			continue
		case len(f) == 3:
			out.Faces = append(out.Faces, []int{f[0], f[1], f[2]})
		default:
			for i := 2; i < len(f); i++ {
				out.Faces = append(out.Faces, []int{f[0], f[i-1], f[i]})
			}
		}
	}
	return out
}

// MakeNormalsConsistent orients all triangles coherently by propagating
// winding across shared edges from a seed face, then flips whole
// components whose signed volume is negative so normals face outward.
// Requires a triangulated mesh.
func MakeNormalsConsistent(m *geom.Mesh) *geom.Mesh {
	out := m.Clone()
	if len(out.Faces) == 0 {
		return out
	}

	type edge struct{ a, b int }
	undirected := func(a, b int) edge {
		if a > b {
			a, b = b, a
		}
		return edge{a, b}
	}

	edgeFaces := make(map[edge][]int)
	for fi, f := range out.Faces {
		for i := range f {
			e := undirected(f[i], f[(i+1)%len(f)])
			edgeFaces[e] = append(edgeFaces[e], fi)
		}
	}

	visited := make([]bool, len(out.Faces))
	for seed := range out.Faces {
		if visited[seed] {
			continue
		}

		component := []int{seed}
		visited[seed] = true
		queue := []int{seed}
		for len(queue) > 0 {
			fi := queue[0]
			queue = queue[1:]
			f := out.Faces[fi]
			for i := range f {
				a, b := f[i], f[(i+1)%len(f)]
				for _, ni := range edgeFaces[undirected(a, b)] {
					if ni == fi || visited[ni] {
						continue
					}
					// Coherent neighbors traverse the shared edge in
					// the opposite direction.
					if hasDirectedEdge(out.Faces[ni], a, b) {
						reverse(out.Faces[ni])
					}
					visited[ni] = true
					component = append(component, ni)
					queue = append(queue, ni)
				}
			}
		}

		if componentSignedVolume(out, component) < 0 {
			for _, fi := range component {
				reverse(out.Faces[fi])
			}
		}
	}
	return out
}

func hasDirectedEdge(f []int, a, b int) bool {
	for i := range f {
		if f[i] == a && f[(i+1)%len(f)] == b {
			return true
		}
	}
	return false
}

func reverse(f []int) {
	for i, j := 0, len(f)-1; i < j; i, j = i+1, j-1 {
		f[i], f[j] = f[j], f[i]
	}
}

func componentSignedVolume(m *geom.Mesh, faces []int) float64 {
	var vol float64
	for _, fi := range faces {
		f := m.Faces[fi]
		if len(f) != 3 {
			continue
		}
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		vol += a.Dot(b.Cross(c)) / 6.0
	}
	return vol
}
