// Package hull builds 3D convex hulls with an incremental algorithm.
//
// Points are inserted in input order. A point within planeEpsilon of a
// face plane is treated as not visible from that face, so coplanar
// duplicates are absorbed into the hull instead of producing slivers.
// This is the canonical tie-break of this implementation.
package hull

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/steffenbk/reforger-asset-kit/geom"
)

const relativePlaneEpsilon = 1e-10

type face struct {
	a, b, c int
	normal  mgl64.Vec3 // unit outward
	dist    float64    // plane offset, normal.Dot(p) == dist on plane
	alive   bool
}

func newFace(points []mgl64.Vec3, a, b, c int) face {
	n := points[b].Sub(points[a]).Cross(points[c].Sub(points[a]))
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	return face{a: a, b: b, c: c, normal: n, dist: n.Dot(points[a]), alive: true}
}

func (f *face) distanceTo(p mgl64.Vec3) float64 {
	return f.normal.Dot(p) - f.dist
}

// Build computes the convex hull of cloud and returns it as a closed
// triangulated mesh with outward normals. Fails with
// geom.DegenerateInputError when fewer than 4 unique points exist or all
// points are coplanar.
func Build(cloud geom.PointCloud) (*geom.Mesh, error) {
	points := dedup(cloud)
	if len(points) < 4 {
		return nil, &geom.DegenerateInputError{Reason: "fewer than 4 unique points"}
	}

	eps := relativePlaneEpsilon * boundsDiagonal(points)
	if eps == 0 {
		eps = relativePlaneEpsilon
	}

	i0, i1, i2, i3, err := initialSimplex(points, eps)
	if err != nil {
		return nil, err
	}

	faces := makeSimplex(points, i0, i1, i2, i3)

	used := map[int]bool{i0: true, i1: true, i2: true, i3: true}
	for i := range points {
		if used[i] {
			continue
		}
		faces = insertPoint(points, faces, i, eps)
	}

	return compact(points, faces), nil
}

// dedup removes exact duplicate points, keeping first occurrences in
// input order.
func dedup(cloud geom.PointCloud) []mgl64.Vec3 {
	seen := make(map[mgl64.Vec3]bool, len(cloud))
	out := make([]mgl64.Vec3, 0, len(cloud))
	for _, p := range cloud {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func boundsDiagonal(points []mgl64.Vec3) float64 {
	min, max := points[0], points[0]
	for _, p := range points {
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}
	return max.Sub(min).Len()
}

// initialSimplex picks four non-coplanar points: the two most distant
// axis-extreme points, the point furthest from their line, and the point
// furthest from the resulting plane.
func initialSimplex(points []mgl64.Vec3, eps float64) (int, int, int, int, error) {
	// Extreme points along each axis.
	extremes := make([]int, 6)
	for _, i := range []int{0, 1, 2} {
		lo, hi := 0, 0
		for j, p := range points {
			if p[i] < points[lo][i] {
				lo = j
			}
			if p[i] > points[hi][i] {
				hi = j
			}
		}
		extremes[i*2] = lo
		extremes[i*2+1] = hi
	}

	i0, i1 := extremes[0], extremes[1]
	best := -1.0
	for _, a := range extremes {
		for _, b := range extremes {
			if d := points[a].Sub(points[b]).LenSqr(); d > best {
				best = d
				i0, i1 = a, b
			}
		}
	}
	if best <= eps*eps {
		return 0, 0, 0, 0, &geom.DegenerateInputError{Reason: "all points coincident"}
	}

	dir := points[i1].Sub(points[i0])
	i2, best := -1, eps
	for j, p := range points {
		d := dir.Cross(p.Sub(points[i0])).Len() / dir.Len()
		if d > best {
			best = d
			i2 = j
		}
	}
	if i2 < 0 {
		return 0, 0, 0, 0, &geom.DegenerateInputError{Reason: "all points collinear"}
	}

	f := newFace(points, i0, i1, i2)
	i3, best := -1, eps
	for j, p := range points {
		if d := math.Abs(f.distanceTo(p)); d > best {
			best = d
			i3 = j
		}
	}
	if i3 < 0 {
		return 0, 0, 0, 0, &geom.DegenerateInputError{Reason: "all points coplanar"}
	}
	return i0, i1, i2, i3, nil
}

// makeSimplex builds the four outward-facing faces of the initial
// tetrahedron.
func makeSimplex(points []mgl64.Vec3, i0, i1, i2, i3 int) []face {
	f := newFace(points, i0, i1, i2)
	if f.distanceTo(points[i3]) > 0 {
		// apex above base plane, flip base winding
		i1, i2 = i2, i1
	}
	return []face{
		newFace(points, i0, i1, i2),
		newFace(points, i0, i3, i1),
		newFace(points, i1, i3, i2),
		newFace(points, i2, i3, i0),
	}
}

type edge struct{ a, b int }

// insertPoint extends the hull with points[idx]. Faces the point can see
// are removed and the horizon is re-triangulated toward the point.
func insertPoint(points []mgl64.Vec3, faces []face, idx int, eps float64) []face {
	p := points[idx]

	visible := false
	for i := range faces {
		if faces[i].alive && faces[i].distanceTo(p) > eps {
			visible = true
			break
		}
	}
	if !visible {
		return faces // interior or on-surface point, absorbed
	}

	// Horizon edges occur exactly once among visible faces (directed).
	edgeCount := make(map[edge]int)
	for i := range faces {
		f := &faces[i]
		if !f.alive || f.distanceTo(p) <= eps {
			continue
		}
		f.alive = false
		for _, e := range [3]edge{{f.a, f.b}, {f.b, f.c}, {f.c, f.a}} {
			if _, ok := edgeCount[edge{e.b, e.a}]; ok {
				delete(edgeCount, edge{e.b, e.a})
			} else {
				edgeCount[e] = 1
			}
		}
	}

	// Emit horizon edges in face order so hull topology is deterministic.
	horizon := make([]edge, 0, len(edgeCount))
	for i := range faces {
		f := faces[i]
		for _, e := range [3]edge{{f.a, f.b}, {f.b, f.c}, {f.c, f.a}} {
			if edgeCount[e] == 1 {
				horizon = append(horizon, e)
				edgeCount[e] = 2 // emit once
			}
		}
	}

	for _, e := range horizon {
		faces = append(faces, newFace(points, e.a, e.b, idx))
	}
	return faces
}

// compact drops dead faces and unreferenced points.
func compact(points []mgl64.Vec3, faces []face) *geom.Mesh {
	remap := make(map[int]int)
	m := &geom.Mesh{}
	for _, f := range faces {
		if !f.alive {
			continue
		}
		tri := make([]int, 3)
		for j, old := range [3]int{f.a, f.b, f.c} {
			ni, ok := remap[old]
			if !ok {
				ni = len(m.Vertices)
				remap[old] = ni
				m.Vertices = append(m.Vertices, points[old])
			}
			tri[j] = ni
		}
		m.Faces = append(m.Faces, tri)
	}
	return m
}
