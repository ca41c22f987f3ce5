// Package primitive generates box, cylinder and sphere proxies fitted to
// bounding extents. All primitives come out pre-triangulated with the
// fitting rotation baked into the vertices, so no repair pass is needed.
package primitive

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/steffenbk/reforger-asset-kit/geom"
)

const (
	// Segment counts match the host defaults the source tooling used.
	DefaultCylinderSegments = 32
	DefaultSphereSegments   = 32
	DefaultSphereRings      = 16
)

// Box fits an axis-aligned box to the bounds.
func Box(b geom.Bounds) *geom.Mesh {
	c := b.Center()
	h := b.Extents().Mul(0.5)
	m := &geom.Mesh{
		Vertices: []mgl64.Vec3{
			{c.X() - h.X(), c.Y() - h.Y(), c.Z() - h.Z()},
			{c.X() + h.X(), c.Y() - h.Y(), c.Z() - h.Z()},
			{c.X() + h.X(), c.Y() + h.Y(), c.Z() - h.Z()},
			{c.X() - h.X(), c.Y() + h.Y(), c.Z() - h.Z()},
			{c.X() - h.X(), c.Y() - h.Y(), c.Z() + h.Z()},
			{c.X() + h.X(), c.Y() - h.Y(), c.Z() + h.Z()},
			{c.X() + h.X(), c.Y() + h.Y(), c.Z() + h.Z()},
			{c.X() - h.X(), c.Y() + h.Y(), c.Z() + h.Z()},
		},
	}
	quads := [][4]int{
		{0, 3, 2, 1}, // bottom
		{4, 5, 6, 7}, // top
		{0, 1, 5, 4},
		{1, 2, 6, 5},
		{2, 3, 7, 6},
		{3, 0, 4, 7},
	}
	for _, q := range quads {
		m.Faces = append(m.Faces,
			[]int{q[0], q[1], q[2]},
			[]int{q[0], q[2], q[3]})
	}
	return m
}

// Cylinder fits an oriented cylinder: axis = largest extent, radius =
// half of the larger of the two remaining extents, depth = the chosen
// extent. The alignment rotation is baked into the geometry and the
// result is centered at the bounds center.
func Cylinder(b geom.Bounds, segments int) *geom.Mesh {
	if segments < 3 {
		segments = DefaultCylinderSegments
	}
	ext := b.Extents()
	axis := b.MaxExtentAxis()

	radius := 0.0
	for i := 0; i < 3; i++ {
		if i != axis && ext[i]/2 > radius {
			radius = ext[i] / 2
		}
	}
	depth := ext[axis]

	m := cylinderAlongZ(radius, depth, segments)

	switch axis {
	case 0:
		m = m.Transform(mgl64.HomogRotate3DY(math.Pi / 2))
	case 1:
		m = m.Transform(mgl64.HomogRotate3DX(math.Pi / 2))
	}
	return m.Translate(b.Center())
}

// CylinderAlongX builds a cylinder with its axis on world X regardless of
// extents. Wheel colliders always use axle orientation.
func CylinderAlongX(center mgl64.Vec3, radius, depth float64, segments int) *geom.Mesh {
	if segments < 3 {
		segments = DefaultCylinderSegments
	}
	m := cylinderAlongZ(radius, depth, segments)
	m = m.Transform(mgl64.HomogRotate3DY(math.Pi / 2))
	return m.Translate(center)
}

func cylinderAlongZ(radius, depth float64, segments int) *geom.Mesh {
	m := &geom.Mesh{}
	hz := depth / 2

	for _, z := range []float64{-hz, hz} {
		for s := 0; s < segments; s++ {
			a := 2 * math.Pi * float64(s) / float64(segments)
			m.Vertices = append(m.Vertices, mgl64.Vec3{radius * math.Cos(a), radius * math.Sin(a), z})
		}
	}
	bottomCenter := len(m.Vertices)
	m.Vertices = append(m.Vertices, mgl64.Vec3{0, 0, -hz})
	topCenter := len(m.Vertices)
	m.Vertices = append(m.Vertices, mgl64.Vec3{0, 0, hz})

	for s := 0; s < segments; s++ {
		n := (s + 1) % segments
		b0, b1 := s, n
		t0, t1 := segments+s, segments+n
		m.Faces = append(m.Faces,
			[]int{b0, b1, t1},
			[]int{b0, t1, t0},
			[]int{bottomCenter, b1, b0},
			[]int{topCenter, t0, t1})
	}
	return m
}

// Sphere fits a UV sphere with radius = half of the largest extent,
// centered at the bounds center.
func Sphere(b geom.Bounds, segments, rings int) *geom.Mesh {
	if segments < 3 {
		segments = DefaultSphereSegments
	}
	if rings < 2 {
		rings = DefaultSphereRings
	}
	ext := b.Extents()
	radius := ext[b.MaxExtentAxis()] / 2

	m := &geom.Mesh{}
	top := len(m.Vertices)
	m.Vertices = append(m.Vertices, mgl64.Vec3{0, 0, radius})

	// interior rings, pole to pole
	for r := 1; r < rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		for s := 0; s < segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			m.Vertices = append(m.Vertices, mgl64.Vec3{
				radius * math.Sin(phi) * math.Cos(theta),
				radius * math.Sin(phi) * math.Sin(theta),
				radius * math.Cos(phi),
			})
		}
	}
	bottom := len(m.Vertices)
	m.Vertices = append(m.Vertices, mgl64.Vec3{0, 0, -radius})

	ring := func(r, s int) int { return 1 + (r-1)*segments + s%segments }

	for s := 0; s < segments; s++ {
		m.Faces = append(m.Faces, []int{top, ring(1, s), ring(1, s+1)})
	}
	for r := 1; r < rings-1; r++ {
		for s := 0; s < segments; s++ {
			m.Faces = append(m.Faces,
				[]int{ring(r, s), ring(r+1, s), ring(r+1, s+1)},
				[]int{ring(r, s), ring(r+1, s+1), ring(r, s+1)})
		}
	}
	for s := 0; s < segments; s++ {
		m.Faces = append(m.Faces, []int{bottom, ring(rings-1, s+1), ring(rings-1, s)})
	}

	return m.Translate(b.Center())
}
