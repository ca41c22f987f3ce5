package collision

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/steffenbk/reforger-asset-kit/geom"
	"github.com/steffenbk/reforger-asset-kit/geom/primitive"
)

// WheelOptions tunes the fitted wheel cylinders. Offsets adjust the
// measured radius/width; floors keep adversarial inputs drivable.
type WheelOptions struct {
	RadiusOffset float64 `json:"radius_offset"`
	WidthOffset  float64 `json:"width_offset"`
	LayerPreset  string  `json:"layer_preset,omitempty"`
	Segments     int     `json:"segments,omitempty"`
}

const (
	minWheelRadius = 0.05
	minWheelWidth  = 0.02
)

var trailingDigits = regexp.MustCompile(`\d+`)

// FitWheelCylinders builds one UCL cylinder per wheel mesh. Wheel
// colliders always lie on the world X axis (the axle direction),
// whatever the wheel's own extents say: radius comes from the mean of
// the two larger extents, width from the smallest.
func FitWheelCylinders(wheels []*geom.Mesh, opts WheelOptions) (ProxySet, error) {
	if len(wheels) == 0 {
		return nil, &geom.EmptyInputError{}
	}

	layer := opts.LayerPreset
	if layer == "" {
		layer = LayerCollisionVehicle
	}
	usage := UsagePhyCol
	if layer == LayerMineTrigger {
		usage = UsageMineTrigger
	}

	set := make(ProxySet, 0, len(wheels))
	for _, wheel := range wheels {
		if wheel.IsEmpty() {
			return nil, &geom.EmptyInputError{}
		}
		b, err := geom.BoundsOf([]*geom.Mesh{wheel})
		if err != nil {
			return nil, err
		}

		ext := b.Extents()
		smallest, mid, largest := sort3(ext)
		radius := (mid+largest)/4 + opts.RadiusOffset
		width := smallest + opts.WidthOffset
		if radius < minWheelRadius {
			radius = minWheelRadius
		}
		if width < minWheelWidth {
			width = minWheelWidth
		}

		m := primitive.CylinderAlongX(b.Center(), radius, width, opts.Segments)
		m.Name = wheelCollisionName(wheel.Name)
		set = append(set, Proxy{Name: m.Name, Mesh: m, Usage: usage, LayerPreset: layer})
	}
	return set, nil
}

func sort3(v mgl64.Vec3) (float64, float64, float64) {
	a, b, c := v[0], v[1], v[2]
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return a, b, c
}

// wheelCollisionName derives the UCL name from the wheel mesh name:
// trailing digits win, then left/right markers, then the raw name.
func wheelCollisionName(wheelName string) string {
	lower := strings.ToLower(wheelName)
	if digits := trailingDigits.FindAllString(lower, -1); len(digits) > 0 {
		return "UCL_wheel_" + digits[len(digits)-1]
	}
	switch {
	case strings.Contains(lower, "left") || strings.Contains(lower, "_l") || strings.Contains(lower, ".l"):
		return "UCL_wheel_L"
	case strings.Contains(lower, "right") || strings.Contains(lower, "_r") || strings.Contains(lower, ".r"):
		return "UCL_wheel_R"
	case wheelName != "":
		return "UCL_" + wheelName
	default:
		return "UCL_wheel"
	}
}

// CenterOfMassBox builds the COM helper box used by vehicle setups: a
// box of X=size, Y=2*size, Z=size sitting at (0, 0, heightOffset).
func CenterOfMassBox(size, heightOffset float64) Proxy {
	half := mgl64.Vec3{size / 2, size, size / 2}
	center := mgl64.Vec3{0, 0, heightOffset}
	b := geom.Bounds{Min: center.Sub(half), Max: center.Add(half)}

	m := primitive.Box(b)
	m.Name = "COM_vehicle"
	return Proxy{
		Name:        m.Name,
		Mesh:        m,
		Usage:       UsageCenterOfMass,
		LayerPreset: LayerCollisionVehicle,
	}
}

// String renders a short human summary, handy for CLI logging.
func (p Proxy) String() string {
	return fmt.Sprintf("%s (%d faces, usage=%s, layer=%s)",
		p.Name, p.Mesh.FaceCount(), p.Usage, p.LayerPreset)
}
