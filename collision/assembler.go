package collision

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/steffenbk/reforger-asset-kit/geom"
	"github.com/steffenbk/reforger-asset-kit/geom/decimate"
	"github.com/steffenbk/reforger-asset-kit/geom/hull"
	"github.com/steffenbk/reforger-asset-kit/geom/primitive"
	"github.com/steffenbk/reforger-asset-kit/geom/repair"
)

// State tracks where a generation run is in its pipeline. Exposed for
// progress reporting; a run is synchronous and owns its assembler.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateHullPath
	StatePrimitivePath
	StateDetailedPath
	StateTagging
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:          "Idle",
	StateValidating:    "Validating",
	StateHullPath:      "HullPath",
	StatePrimitivePath: "PrimitivePath",
	StateDetailedPath:  "DetailedPath",
	StateTagging:       "Tagging",
	StateDone:          "Done",
	StateFailed:        "Failed",
}

func (s State) String() string { return stateNames[s] }

// flatDecimateFloor keeps thin sheets from being decimated into
// nothing; carried over from the source tooling.
const flatDecimateFloor = 0.8

// Assembler composes sampling, hull construction, decimation, offsetting
// and repair into the three proxy pipelines. One assembler serves one
// request at a time; independent requests may run concurrently on
// separate assemblers since nothing is shared.
type Assembler struct {
	Sampler          Sampler
	CylinderSegments int
	SphereSegments   int
	SphereRings      int

	// OnState, when set, observes every pipeline state transition.
	OnState func(State)

	state State
}

func NewAssembler() *Assembler {
	return &Assembler{
		Sampler:          DefaultSampler(),
		CylinderSegments: primitive.DefaultCylinderSegments,
		SphereSegments:   primitive.DefaultSphereSegments,
		SphereRings:      primitive.DefaultSphereRings,
	}
}

func (a *Assembler) State() State { return a.state }

func (a *Assembler) setState(s State) {
	a.state = s
	if a.OnState != nil {
		a.OnState(s)
	}
}

// Generate runs one request to completion. The result is all-or-nothing:
// a validation or hull failure produces no partial proxies. ctx is
// checked between pipeline stages only; passing context.Background()
// reproduces the uncancellable host behavior exactly.
func (a *Assembler) Generate(ctx context.Context, sources []*geom.Mesh, req Request) (ProxySet, error) {
	a.setState(StateValidating)
	if err := req.validate(); err != nil {
		a.setState(StateFailed)
		return nil, err
	}

	total := 0
	for _, m := range sources {
		total += len(m.Vertices)
	}
	if len(sources) == 0 || total == 0 {
		a.setState(StateFailed)
		return nil, &geom.EmptyInputError{}
	}
	if err := ctx.Err(); err != nil {
		a.setState(StateFailed)
		return nil, errors.Wrap(err, "cancelled during validation")
	}

	var meshes []*geom.Mesh
	var err error
	switch req.Method {
	case MethodConvex:
		a.setState(StateHullPath)
		meshes, err = a.runHullPath(ctx, sources, req)
	case MethodDetailed:
		a.setState(StateDetailedPath)
		meshes, err = a.runDetailedPath(ctx, sources, req)
	default:
		a.setState(StatePrimitivePath)
		meshes, err = a.runPrimitivePath(ctx, sources, req)
	}
	if err != nil {
		a.setState(StateFailed)
		return nil, err
	}

	a.setState(StateTagging)
	layer := req.layerPreset()
	usage := usageFor(layer)
	set := make(ProxySet, len(meshes))
	for i, m := range meshes {
		m.Name = proxyName(req.Method, i, len(meshes))
		set[i] = Proxy{Name: m.Name, Mesh: m, Usage: usage, LayerPreset: layer}
	}

	a.setState(StateDone)
	return set, nil
}

// proxyName follows the host convention: single source gets
// "{prefix}_body", multiple sources get "{prefix}_body_part_{NN}" in
// input order.
func proxyName(m Method, idx, total int) string {
	if total == 1 {
		return m.Prefix() + "_body"
	}
	return fmt.Sprintf("%s_body_part_%02d", m.Prefix(), idx)
}

func (a *Assembler) runHullPath(ctx context.Context, sources []*geom.Mesh, req Request) ([]*geom.Mesh, error) {
	groups := groupSources(sources, req.MergeSources)
	out := make([]*geom.Mesh, 0, len(groups))
	for _, group := range groups {
		m, err := a.buildHull(ctx, group, int(req.TargetFaceCount), req.OffsetThickness)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// buildHull is the convex pipeline: optional cost-bounding pre-decimate,
// stride sampling, hull, post-decimate onto the target, outward offset,
// repair.
func (a *Assembler) buildHull(ctx context.Context, group []*geom.Mesh, target int, offset float64) (*geom.Mesh, error) {
	work := group
	totalFaces := 0
	for _, m := range work {
		totalFaces += m.FaceCount()
	}

	// Pre-pass only bounds hull cost, the real reduction happens after
	// hull construction.
	if totalFaces > 2*target {
		ratio := decimate.RatioFor(2*target, totalFaces)
		reduced := make([]*geom.Mesh, len(work))
		for i, m := range work {
			reduced[i] = decimate.Simplify(m, ratio)
		}
		work = reduced
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "cancelled before hull construction")
	}

	cloud := a.Sampler.Sample(work)
	hullMesh, err := hull.Build(cloud)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "cancelled after hull construction")
	}

	if hullMesh.FaceCount() > target {
		hullMesh = decimate.Simplify(hullMesh, decimate.RatioFor(target, hullMesh.FaceCount()))
	}
	hullMesh = repair.Offset(hullMesh, offset)
	return repair.Repair(hullMesh), nil
}

func (a *Assembler) runDetailedPath(ctx context.Context, sources []*geom.Mesh, req Request) ([]*geom.Mesh, error) {
	groups := groupSources(sources, req.MergeSources)

	// The face budget is shared across parts.
	partTarget := int(req.TargetFaceCount) / len(groups)
	if partTarget < MinTargetFaceCount {
		partTarget = MinTargetFaceCount
	}

	out := make([]*geom.Mesh, 0, len(groups))
	for _, group := range groups {
		m, err := a.buildDetailed(ctx, geom.Merge(group), partTarget, req)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// buildDetailed simplifies the source directly, preserving concavities
// the hull would swallow. When PreserveDetails is set and one decimation
// cannot reach the target (the ratio clamp bites on very dense meshes),
// a grid-clustering pre-pass takes over the coarse reduction.
func (a *Assembler) buildDetailed(ctx context.Context, m *geom.Mesh, target int, req Request) (*geom.Mesh, error) {
	work := m
	if work.FaceCount() > target {
		flat := isFlat(work)

		work = decimate.Simplify(work, detailRatio(target, work.FaceCount(), flat))
		if req.PreserveDetails && work.FaceCount() > 2*target {
			cell := decimate.ClusterCellSize(work, decimate.DefaultClusterCellFraction)
			work = decimate.ClusterOnGrid(work, cell)
			work = repair.Triangulate(work)
			if work.FaceCount() > target {
				work = decimate.Simplify(work, detailRatio(target, work.FaceCount(), flat))
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "cancelled during simplification")
	}

	work = repair.Offset(work, req.OffsetThickness)
	return repair.Repair(work), nil
}

// detailRatio applies the flat-mesh guard on top of the standard clamp.
func detailRatio(target, current int, flat bool) float64 {
	ratio := decimate.RatioFor(target, current)
	if flat && ratio < flatDecimateFloor {
		ratio = flatDecimateFloor
	}
	return ratio
}

func isFlat(m *geom.Mesh) bool {
	b, err := geom.BoundsOf([]*geom.Mesh{m})
	if err != nil {
		return false
	}
	return b.IsFlat(repair.FlatRatio)
}

func (a *Assembler) runPrimitivePath(ctx context.Context, sources []*geom.Mesh, req Request) ([]*geom.Mesh, error) {
	groups := groupSources(sources, req.MergeSources)
	out := make([]*geom.Mesh, 0, len(groups))
	for _, group := range groups {
		b, err := geom.BoundsOf(group)
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "cancelled during primitive fitting")
		}
		switch req.Method {
		case MethodCylinder:
			out = append(out, primitive.Cylinder(b, a.CylinderSegments))
		case MethodBox:
			out = append(out, primitive.Box(b))
		case MethodSphere:
			out = append(out, primitive.Sphere(b, a.SphereSegments, a.SphereRings))
		}
	}
	return out, nil
}

// groupSources yields one group per proxy: all sources together when
// merging, one group per source otherwise.
func groupSources(sources []*geom.Mesh, merge bool) [][]*geom.Mesh {
	if merge {
		return [][]*geom.Mesh{sources}
	}
	groups := make([][]*geom.Mesh, len(sources))
	for i, m := range sources {
		groups[i] = []*geom.Mesh{m}
	}
	return groups
}
