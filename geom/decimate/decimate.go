// Package decimate reduces triangle counts with quadric edge collapse
// (Garland-Heckbert style) plus a grid vertex-clustering pre-pass for
// very dense inputs.
package decimate

import (
	"container/heap"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/steffenbk/reforger-asset-kit/geom"
)

// MinRatio is the safety floor for decimation ratios. Collapsing below
// a tenth of the input produces garbage on adversarial meshes, so the
// ratio is clamped here. A pragmatic bound, not a correctness guarantee.
const MinRatio = 0.1

// RatioFor computes the decimation ratio that lands current faces on
// target, clamped to [MinRatio, 1].
func RatioFor(target, current int) float64 {
	if current < 1 {
		current = 1
	}
	ratio := float64(target) / float64(current)
	if ratio > 1 {
		ratio = 1
	}
	if ratio < MinRatio {
		ratio = MinRatio
	}
	return ratio
}

// quadric is a symmetric 4x4 error matrix stored as its upper triangle.
type quadric [10]float64

func planeQuadric(n mgl64.Vec3, d float64) quadric {
	a, b, c := n.X(), n.Y(), n.Z()
	return quadric{
		a * a, a * b, a * c, a * d,
		b * b, b * c, b * d,
		c * c, c * d,
		d * d,
	}
}

func (q *quadric) add(o *quadric) {
	for i := range q {
		q[i] += o[i]
	}
}

// evaluate returns v^T Q v.
func (q *quadric) evaluate(v mgl64.Vec3) float64 {
	x, y, z := v.X(), v.Y(), v.Z()
	return q[0]*x*x + 2*q[1]*x*y + 2*q[2]*x*z + 2*q[3]*x +
		q[4]*y*y + 2*q[5]*y*z + 2*q[6]*y +
		q[7]*z*z + 2*q[8]*z +
		q[9]
}

type candidate struct {
	cost   float64
	seq    int // insertion order, breaks cost ties deterministically
	u, v   int
	target mgl64.Vec3
	uVer   int
	vVer   int
}

type candidateHeap []candidate

func (h candidateHeap) Len() int { return len(h) }
func (h candidateHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return h[i].seq < h[j].seq
}
func (h candidateHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x interface{}) { *h = append(*h, x.(candidate)) }
func (h *candidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

type simplifier struct {
	verts    []mgl64.Vec3
	faces    [][3]int
	faceDead []bool
	quadrics []quadric
	version  []int   // bumped on every vertex move/merge
	incident [][]int // vertex -> face indices, grows during collapses
	heap     candidateHeap
	seq      int
	alive    int
}

// Simplify reduces the face count of m to ratio*FaceCount within one
// collapse granularity. Ratios >= 1 return an unchanged clone. Non-triangle
// faces are fan-triangulated first.
func Simplify(m *geom.Mesh, ratio float64) *geom.Mesh {
	if ratio >= 1 {
		return m.Clone()
	}
	if ratio < MinRatio {
		ratio = MinRatio
	}

	s := newSimplifier(m)
	target := int(float64(s.alive) * ratio)
	if target < 4 {
		target = 4
	}
	s.run(target)
	return s.mesh(m.Name)
}

func newSimplifier(m *geom.Mesh) *simplifier {
	s := &simplifier{
		verts:    make([]mgl64.Vec3, len(m.Vertices)),
		quadrics: make([]quadric, len(m.Vertices)),
		version:  make([]int, len(m.Vertices)),
		incident: make([][]int, len(m.Vertices)),
	}
	copy(s.verts, m.Vertices)

	for _, f := range m.Faces {
		if len(f) < 3 {
			continue
		}
		for i := 2; i < len(f); i++ {
			s.faces = append(s.faces, [3]int{f[0], f[i-1], f[i]})
		}
	}
	s.faceDead = make([]bool, len(s.faces))
	s.alive = len(s.faces)

	for fi, f := range s.faces {
		for _, vi := range f {
			s.incident[vi] = append(s.incident[vi], fi)
		}
		n := s.faceNormal(fi)
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		q := planeQuadric(n, -n.Dot(s.verts[f[0]]))
		for _, vi := range f {
			s.quadrics[vi].add(&q)
		}
	}

	seen := make(map[[2]int]bool)
	for _, f := range s.faces {
		for i := 0; i < 3; i++ {
			u, v := f[i], f[(i+1)%3]
			if u > v {
				u, v = v, u
			}
			if !seen[[2]int{u, v}] {
				seen[[2]int{u, v}] = true
				s.pushCandidate(u, v)
			}
		}
	}
	heap.Init(&s.heap)
	return s
}

func (s *simplifier) faceNormal(fi int) mgl64.Vec3 {
	f := s.faces[fi]
	a, b, c := s.verts[f[0]], s.verts[f[1]], s.verts[f[2]]
	return b.Sub(a).Cross(c.Sub(a))
}

// pushCandidate scores collapsing (u,v) at the cheapest of u, v and the
// midpoint. Solving the full quadric system is not worth the instability
// on near-singular matrices.
func (s *simplifier) pushCandidate(u, v int) {
	var combined quadric
	combined = s.quadrics[u]
	combined.add(&s.quadrics[v])

	best := s.verts[u]
	bestCost := combined.evaluate(best)
	for _, p := range []mgl64.Vec3{s.verts[v], s.verts[u].Add(s.verts[v]).Mul(0.5)} {
		if c := combined.evaluate(p); c < bestCost {
			bestCost = c
			best = p
		}
	}

	s.heap = append(s.heap, candidate{
		cost: bestCost, seq: s.seq, u: u, v: v, target: best,
		uVer: s.version[u], vVer: s.version[v],
	})
	s.seq++
}

func (s *simplifier) run(targetFaces int) {
	for s.alive > targetFaces && s.heap.Len() > 0 {
		c := heap.Pop(&s.heap).(candidate)
		if c.uVer != s.version[c.u] || c.vVer != s.version[c.v] {
			continue // stale entry
		}
		if !s.collapse(c.u, c.v, c.target) {
			continue
		}
	}
}

// collapse merges v into u at position target. Rejected when it would
// flip any surviving face normal.
func (s *simplifier) collapse(u, v int, target mgl64.Vec3) bool {
	oldU, oldV := s.verts[u], s.verts[v]

	for _, vi := range [2]int{u, v} {
		for _, fi := range s.incident[vi] {
			if s.faceDead[fi] {
				continue
			}
			f := s.faces[fi]
			if hasVertex(f, u) && hasVertex(f, v) {
				continue // face dies with the collapse
			}
			before := s.faceNormal(fi)
			s.verts[u], s.verts[v] = target, target
			after := s.faceNormal(fi)
			s.verts[u], s.verts[v] = oldU, oldV
			if before.Dot(after) < 0 {
				return false
			}
		}
	}

	s.verts[u] = target
	s.quadrics[u].add(&s.quadrics[v])
	s.version[u]++
	s.version[v] = -1 // retires v permanently

	for _, fi := range s.incident[v] {
		if s.faceDead[fi] {
			continue
		}
		f := &s.faces[fi]
		if hasVertex(*f, u) {
			s.faceDead[fi] = true
			s.alive--
			continue
		}
		for i := range f {
			if f[i] == v {
				f[i] = u
			}
		}
		s.incident[u] = append(s.incident[u], fi)
	}

	// Refresh candidates around the merged vertex.
	neighbor := make(map[int]bool)
	for _, fi := range s.incident[u] {
		if s.faceDead[fi] {
			continue
		}
		for _, vi := range s.faces[fi] {
			if vi != u && !neighbor[vi] && s.version[vi] >= 0 {
				neighbor[vi] = true
			}
		}
	}
	for _, fi := range s.incident[u] {
		if s.faceDead[fi] {
			continue
		}
		for _, vi := range s.faces[fi] {
			if vi != u && neighbor[vi] {
				neighbor[vi] = false
				a, b := u, vi
				if a > b {
					a, b = b, a
				}
				s.pushCandidate(a, b)
				heap.Fix(&s.heap, s.heap.Len()-1)
			}
		}
	}
	return true
}

func hasVertex(f [3]int, v int) bool {
	return f[0] == v || f[1] == v || f[2] == v
}

// mesh compacts surviving geometry into a new value.
func (s *simplifier) mesh(name string) *geom.Mesh {
	out := &geom.Mesh{Name: name}
	remap := make(map[int]int)
	for fi, f := range s.faces {
		if s.faceDead[fi] {
			continue
		}
		tri := make([]int, 3)
		for i, old := range f {
			ni, ok := remap[old]
			if !ok {
				ni = len(out.Vertices)
				remap[old] = ni
				out.Vertices = append(out.Vertices, s.verts[old])
			}
			tri[i] = ni
		}
		out.Faces = append(out.Faces, tri)
	}
	return out
}
