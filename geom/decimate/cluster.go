package decimate

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/steffenbk/reforger-asset-kit/geom"
)

// DefaultClusterCellFraction sizes clustering cells relative to the
// largest bounding extent. Matches the coarse remesh step the detailed
// pipeline uses before edge collapse.
const DefaultClusterCellFraction = 0.05

// ClusterOnGrid is a voxel-remesh-style reduction: vertices are snapped
// to the average of their grid cell, faces collapsing inside one cell are
// dropped. Much cheaper than edge collapse on very dense meshes and keeps
// large-scale topology, at the price of surface detail.
func ClusterOnGrid(m *geom.Mesh, cellSize float64) *geom.Mesh {
	if cellSize <= 0 || m.IsEmpty() {
		return m.Clone()
	}

	b, err := geom.BoundsOf([]*geom.Mesh{m})
	if err != nil {
		return m.Clone()
	}

	type cell [3]int
	cellOf := func(v mgl64.Vec3) cell {
		return cell{
			int(math.Floor((v.X() - b.Min.X()) / cellSize)),
			int(math.Floor((v.Y() - b.Min.Y()) / cellSize)),
			int(math.Floor((v.Z() - b.Min.Z()) / cellSize)),
		}
	}

	// First occurrence order keeps output deterministic.
	cellIndex := make(map[cell]int)
	var sums []mgl64.Vec3
	var counts []int
	remap := make([]int, len(m.Vertices))
	for i, v := range m.Vertices {
		c := cellOf(v)
		idx, ok := cellIndex[c]
		if !ok {
			idx = len(sums)
			cellIndex[c] = idx
			sums = append(sums, mgl64.Vec3{})
			counts = append(counts, 0)
		}
		sums[idx] = sums[idx].Add(v)
		counts[idx]++
		remap[i] = idx
	}

	out := &geom.Mesh{Name: m.Name, Vertices: make([]mgl64.Vec3, len(sums))}
	for i := range sums {
		out.Vertices[i] = sums[i].Mul(1 / float64(counts[i]))
	}

	for _, f := range m.Faces {
		mapped := make([]int, 0, len(f))
		for _, vi := range f {
			nv := remap[vi]
			dup := false
			for _, seen := range mapped {
				if seen == nv {
					dup = true
					break
				}
			}
			if !dup {
				mapped = append(mapped, nv)
			}
		}
		if len(mapped) >= 3 {
			out.Faces = append(out.Faces, mapped)
		}
	}
	return out
}

// ClusterCellSize derives the grid cell size from mesh bounds.
func ClusterCellSize(m *geom.Mesh, fraction float64) float64 {
	b, err := geom.BoundsOf([]*geom.Mesh{m})
	if err != nil {
		return 0
	}
	ext := b.Extents()
	max := ext[0]
	for i := 1; i < 3; i++ {
		if ext[i] > max {
			max = ext[i]
		}
	}
	return max * fraction
}
