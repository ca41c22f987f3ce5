// Package collision turns source meshes into simplified collision
// proxies: convex hulls, fitted primitives or detail-preserving
// simplified shells, tagged with the usage and layer_preset metadata the
// asset exporter reads.
package collision

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/steffenbk/reforger-asset-kit/geom"
)

// Method selects the proxy generation pipeline. The string form doubles
// as the engine naming prefix of the generated objects.
type Method int

const (
	MethodConvex Method = iota
	MethodCylinder
	MethodBox
	MethodSphere
	MethodDetailed
)

var methodPrefixes = map[Method]string{
	MethodConvex:   "UCX",
	MethodCylinder: "UCL",
	MethodBox:      "UBX",
	MethodSphere:   "USP",
	MethodDetailed: "UTM",
}

var methodNames = map[Method]string{
	MethodConvex:   "Convex",
	MethodCylinder: "Cylinder",
	MethodBox:      "Box",
	MethodSphere:   "Sphere",
	MethodDetailed: "Detailed",
}

// Prefix returns the engine object-name prefix (UCX, UCL, UBX, USP, UTM).
func (m Method) Prefix() string { return methodPrefixes[m] }

func (m Method) String() string { return methodNames[m] }

func (m Method) valid() bool {
	_, ok := methodNames[m]
	return ok
}

// ParseMethod accepts both the descriptive name and the engine prefix.
func ParseMethod(s string) (Method, error) {
	for m, name := range methodNames {
		if name == s || methodPrefixes[m] == s {
			return m, nil
		}
	}
	return 0, errors.Errorf("unknown collision method %q", s)
}

func (m Method) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Method) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMethod(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Layer presets understood by the exporter.
const (
	LayerVehicle          = "Vehicle"
	LayerCollisionVehicle = "Collision_Vehicle"
	LayerMineTrigger      = "MineTrigger"
	LayerFireGeo          = "FireGeo"
)

// Usage markers the exporter writes as custom properties.
const (
	UsageVehicle      = "Vehicle"
	UsagePhyCol       = "PhyCol"
	UsageMineTrigger  = "MineTrigger"
	UsageFireGeo      = "FireGeo"
	UsageCenterOfMass = "CenterOfMass"
)

// MinTargetFaceCount is the smallest face count a non-degenerate hull
// can have.
const MinTargetFaceCount = 4

// Request is the entire configuration surface of one generation run.
type Request struct {
	Method          Method  `json:"method"`
	TargetFaceCount uint    `json:"target_face_count"`
	OffsetThickness float64 `json:"offset_thickness"`
	PreserveDetails bool    `json:"preserve_details"`
	MergeSources    bool    `json:"merge_sources"`

	// LayerPreset overrides the per-method default export layer.
	// Any non-empty string is accepted, matching the host's custom
	// preset field.
	LayerPreset string `json:"layer_preset,omitempty"`
}

// InvalidRequestError reports a request that fails validation before any
// geometry is produced.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Reason
}

func (r *Request) validate() error {
	if !r.Method.valid() {
		return &InvalidRequestError{Reason: "unknown method"}
	}
	if r.OffsetThickness < 0 {
		return &InvalidRequestError{Reason: "offset thickness must be >= 0"}
	}
	if r.Method == MethodConvex || r.Method == MethodDetailed {
		if r.TargetFaceCount < MinTargetFaceCount {
			return &InvalidRequestError{Reason: "target face count below hull minimum of 4"}
		}
	}
	return nil
}

// layerPreset resolves the export layer for this request.
func (r *Request) layerPreset() string {
	if r.LayerPreset != "" {
		return r.LayerPreset
	}
	if r.Method == MethodDetailed {
		return LayerFireGeo
	}
	return LayerVehicle
}

// usageFor derives the usage marker from a layer preset.
func usageFor(layerPreset string) string {
	switch layerPreset {
	case LayerMineTrigger:
		return UsageMineTrigger
	case LayerFireGeo:
		return UsageFireGeo
	default:
		return UsageVehicle
	}
}

// Proxy is one generated collision object plus its export metadata.
type Proxy struct {
	Name        string     `json:"name"`
	Mesh        *geom.Mesh `json:"mesh"`
	Usage       string     `json:"usage"`
	LayerPreset string     `json:"layer_preset"`
}

// ProxySet is the ordered result of one request: one proxy per source
// when sources are kept separate, exactly one when merged.
type ProxySet []Proxy
