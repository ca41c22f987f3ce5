package web

import (
	"bytes"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/steffenbk/reforger-asset-kit/collision"
	"github.com/steffenbk/reforger-asset-kit/config"
	"github.com/steffenbk/reforger-asset-kit/geom"
	"github.com/steffenbk/reforger-asset-kit/meshio"
	"github.com/steffenbk/reforger-asset-kit/status"
	"github.com/steffenbk/reforger-asset-kit/webutils"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type generateRequest struct {
	Sources []*geom.Mesh      `json:"sources"`
	Request collision.Request `json:"request"`
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

func generateFromBody(r *http.Request) (collision.ProxySet, error) {
	var greq generateRequest
	if err := webutils.ReadJsonBody(r, &greq); err != nil {
		return nil, err
	}

	status.Info("Generating %v collision for %d source meshes",
		greq.Request.Method, len(greq.Sources))

	a := assemblerFromConfig()
	a.OnState = func(s collision.State) {
		status.Stage(s.String(), "Collision pipeline entered %v", s)
	}
	set, err := a.Generate(r.Context(), greq.Sources, greq.Request)
	if err != nil {
		status.Error("Generation failed: %v", err)
		return nil, err
	}
	status.Info("Generated %d collision proxies", len(set))
	return set, nil
}

func HandlerCollisionJson(w http.ResponseWriter, r *http.Request) {
	set, err := generateFromBody(r)
	if err != nil {
		log.Printf("[web] Collision generation error: %v", err)
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, set)
}

func HandlerCollisionDump(w http.ResponseWriter, r *http.Request) {
	format := mux.Vars(r)["format"]

	set, err := generateFromBody(r)
	if err != nil {
		log.Printf("[web] Collision generation error: %v", err)
		webutils.WriteError(w, err)
		return
	}

	var buf bytes.Buffer
	var name string
	switch format {
	case "obj":
		err = meshio.WriteOBJ(&buf, set)
		name = "collision.obj"
	case "glb", "gltf":
		err = meshio.WriteGLTF(&buf, set)
		name = "collision.glb"
	case "fbx":
		err = meshio.WriteFBX(&buf, set)
		name = "collision.fbx"
	default:
		err = errors.Errorf("Unknown dump format %q", format)
	}
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteFile(w, &buf, name)
}

func HandlerWebsocketStatus(w http.ResponseWriter, r *http.Request) {
	c, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] Status ws upgrade error: %v", err)
		return
	}
	status.NewClient(c)
}
