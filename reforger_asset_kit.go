package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/steffenbk/reforger-asset-kit/collision"
	"github.com/steffenbk/reforger-asset-kit/config"
	"github.com/steffenbk/reforger-asset-kit/geom"
	"github.com/steffenbk/reforger-asset-kit/meshio"
	"github.com/steffenbk/reforger-asset-kit/utils"
	"github.com/steffenbk/reforger-asset-kit/web"
)

func writeSet(set collision.ProxySet, out, format string) error {
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	switch format {
	case "obj":
		return meshio.WriteOBJ(f, set)
	case "glb", "gltf":
		return meshio.WriteGLTF(f, set)
	case "fbx":
		return meshio.WriteFBX(f, set)
	default:
		return errors.Errorf("Unknown output format %q (want obj, glb or fbx)", format)
	}
}

func assemblerFromConfig() *collision.Assembler {
	cfg := config.Get()
	a := collision.NewAssembler()
	a.Sampler = collision.Sampler{
		PerMeshCap:   cfg.PerMeshCap,
		AggregateCap: cfg.AggregateCap,
	}
	a.CylinderSegments = cfg.CylinderSegments
	a.SphereSegments = cfg.SphereSegments
	a.SphereRings = cfg.SphereRings
	return a
}

func main() {
	var addr, cfgPath, in, out, format, method, layer string
	var targetFaces uint
	var offset, wheelRadiusOffset, wheelWidthOffset float64
	var comSize, comHeight, scaleTo float64
	var serve, merge, preserve, wheels, verbose bool
	flag.StringVar(&addr, "i", "", "Address of server (empty = no server, config default :8000)")
	flag.StringVar(&cfgPath, "cfg", "", "Path to yaml config file")
	flag.StringVar(&in, "in", "", "Input obj file with source meshes")
	flag.StringVar(&out, "out", "collision.obj", "Output file")
	flag.StringVar(&format, "format", "", "Output format: obj, glb, fbx (default from -out extension)")
	flag.StringVar(&method, "method", "convex", "Collision method: convex, cylinder, box, sphere, detailed")
	flag.UintVar(&targetFaces, "faces", 64, "Target face count for convex/detailed")
	flag.Float64Var(&offset, "offset", 0, "Outward shell offset thickness")
	flag.BoolVar(&merge, "merge", false, "Merge all source meshes into one body")
	flag.BoolVar(&preserve, "preserve", false, "Preserve details on dense meshes (detailed method)")
	flag.StringVar(&layer, "layer", "", "Layer preset override")
	flag.BoolVar(&wheels, "wheels", false, "Fit UCL wheel cylinders instead of body collision")
	flag.Float64Var(&wheelRadiusOffset, "wheelradius", 0, "Wheel radius offset")
	flag.Float64Var(&wheelWidthOffset, "wheelwidth", 0, "Wheel width offset")
	flag.Float64Var(&comSize, "com", 0, "Add center of mass box of given size")
	flag.Float64Var(&comHeight, "comheight", 0, "Center of mass height offset")
	flag.Float64Var(&scaleTo, "scaleto", 0, "Center sources and scale largest dimension to this size before generation")
	flag.BoolVar(&serve, "serve", false, "Start the web tool server")
	flag.BoolVar(&verbose, "v", false, "Dump generated proxies")
	flag.Parse()

	if cfgPath != "" {
		if err := config.LoadFile(cfgPath); err != nil {
			log.Fatal(err)
		}
	}

	if serve || addr != "" {
		if addr == "" {
			addr = config.Get().ListenAddr
		}
		if err := web.StartServer(addr, "web"); err != nil {
			log.Fatal(err)
		}
		return
	}

	if in == "" {
		flag.PrintDefaults()
		return
	}

	f, err := os.Open(in)
	if err != nil {
		log.Fatal(err)
	}
	sources, err := meshio.ReadOBJ(f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to read %q: %v", in, err)
	}
	log.Printf("[cli] Loaded %d source meshes from %q", len(sources), in)

	if scaleTo > 0 {
		scaled, err := geom.CenterAndScale(sources, scaleTo)
		if err != nil {
			log.Fatal(err)
		}
		sources = scaled
	}

	var set collision.ProxySet
	if wheels {
		set, err = collision.FitWheelCylinders(sources, collision.WheelOptions{
			RadiusOffset: wheelRadiusOffset,
			WidthOffset:  wheelWidthOffset,
			LayerPreset:  layer,
			Segments:     config.Get().CylinderSegments,
		})
		if err != nil {
			log.Fatalf("Wheel fitting failed: %v", err)
		}
	} else {
		m, err := collision.ParseMethod(method)
		if err != nil {
			log.Fatal(err)
		}
		req := collision.Request{
			Method:          m,
			TargetFaceCount: targetFaces,
			OffsetThickness: offset,
			PreserveDetails: preserve,
			MergeSources:    merge,
			LayerPreset:     layer,
		}
		set, err = assemblerFromConfig().Generate(context.Background(), sources, req)
		if err != nil {
			log.Fatalf("Collision generation failed: %v", err)
		}
	}

	if comSize > 0 {
		set = append(set, collision.CenterOfMassBox(comSize, comHeight))
	}

	for _, p := range set {
		log.Printf("[cli] %v", p)
	}
	if verbose {
		utils.Dump(set)
	}

	if format == "" {
		if idx := strings.LastIndex(out, "."); idx >= 0 {
			format = out[idx+1:]
		} else {
			format = "obj"
		}
	}
	if err := writeSet(set, out, format); err != nil {
		log.Fatalf("Failed to write %q: %v", out, err)
	}
	log.Printf("[cli] Wrote %d proxies to %q", len(set), out)
}
