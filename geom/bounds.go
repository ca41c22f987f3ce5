package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Bounds is a world-space axis-aligned bounding box.
type Bounds struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

func (b Bounds) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b Bounds) Extents() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

// MaxExtentAxis returns the index of the axis with the largest extent.
func (b Bounds) MaxExtentAxis() int {
	ext := b.Extents()
	axis := 0
	for i := 1; i < 3; i++ {
		if ext[i] > ext[axis] {
			axis = i
		}
	}
	return axis
}

// IsFlat reports whether the box is thin: smallest extent below
// flatRatio of the largest. Flat geometry gets a tighter weld epsilon
// and conservative decimation.
func (b Bounds) IsFlat(flatRatio float64) bool {
	ext := b.Extents()
	min, max := ext[0], ext[0]
	for i := 1; i < 3; i++ {
		if ext[i] < min {
			min = ext[i]
		}
		if ext[i] > max {
			max = ext[i]
		}
	}
	return min < max*flatRatio
}

// BoundsOf computes the combined bounding box of every vertex of every
// mesh in a single pass. Zero vertices total is an EmptyInputError.
func BoundsOf(meshes []*Mesh) (Bounds, error) {
	b := Bounds{
		Min: mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
	total := 0
	for _, m := range meshes {
		total += len(m.Vertices)
		for _, v := range m.Vertices {
			for i := 0; i < 3; i++ {
				if v[i] < b.Min[i] {
					b.Min[i] = v[i]
				}
				if v[i] > b.Max[i] {
					b.Max[i] = v[i]
				}
			}
		}
	}
	if total == 0 {
		return Bounds{}, &EmptyInputError{}
	}
	return b, nil
}
