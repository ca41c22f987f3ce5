package meshio

import (
	"io"
	"os"

	"github.com/mogaika/fbx"
	"github.com/mogaika/fbx/builders/bfbx73"

	"github.com/steffenbk/reforger-asset-kit/collision"
)

const (
	fbxCreator           = "FBX SDK/FBX Plugins version 2013.3 build=20121223"
	fbxApplicationVendor = "reforger-asset-kit"
	fbxApplicationName   = "reforger-asset-kit"
	fbxVersion           = 7400
	fbxDateTimeGMT       = "01/01/1970 00:00:00.000"
	fbxCreationTime      = "1970-01-01 10:00:00:000"
)

var fbxFileId = []byte{
	0x28, 0xb3, 0x2a, 0xeb, 0xb6, 0x24, 0xcc, 0xc2,
	0xbf, 0xc8, 0xb0, 0x2a, 0xa9, 0x2b, 0xfc, 0xf1}

type fbxBuilder struct {
	f           *fbx.FBX
	lastId      int64
	objects     *fbx.Node
	connections *fbx.Node
}

func newFbxBuilder(filename string) *fbxBuilder {
	b := &fbxBuilder{
		f:           fbx.NewFBX(fbxVersion),
		lastId:      1000000,
		objects:     bfbx73.Objects(),
		connections: bfbx73.Connections(),
	}
	b.createHeaders(filename)
	return b
}

func (b *fbxBuilder) generateId() int64 {
	b.lastId++
	return b.lastId
}

func (b *fbxBuilder) createHeaders(filename string) {
	b.f.Root.AddNodes(
		bfbx73.FBXHeaderExtension().AddNodes(
			bfbx73.FBXHeaderVersion(1003),
			bfbx73.FBXVersion(fbxVersion),
			bfbx73.EncryptionType(0),
			bfbx73.CreationTimeStamp().AddNodes(
				bfbx73.Version(1000),
				bfbx73.Year(1970),
				bfbx73.Month(1),
				bfbx73.Day(1),
				bfbx73.Hour(10),
				bfbx73.Minute(0),
				bfbx73.Second(0),
				bfbx73.Millisecond(0),
			),
			bfbx73.Creator(fbxCreator),
			bfbx73.SceneInfo("GlobalInfo\x00\x01SceneInfo", "UserData").AddNodes(
				bfbx73.Type("UserData"),
				bfbx73.Version(100),
				bfbx73.MetaData().AddNodes(
					bfbx73.Version(100),
					bfbx73.Title(""),
					bfbx73.Subject(""),
					bfbx73.Author(""),
					bfbx73.Keywords(""),
					bfbx73.Revision(""),
					bfbx73.Comment(""),
				),
				bfbx73.Properties70().AddNodes(
					bfbx73.P("DocumentUrl", "KString", "Url", "", filename),
					bfbx73.P("SrcDocumentUrl", "KString", "Url", "", filename),
					bfbx73.P("Original|ApplicationVendor", "KString", "", "", fbxApplicationVendor),
					bfbx73.P("Original|ApplicationName", "KString", "", "", fbxApplicationName),
					bfbx73.P("Original|DateTime_GMT", "DateTime", "", "", fbxDateTimeGMT),
				),
			),
		),
		bfbx73.FileId(fbxFileId),
		bfbx73.CreationTime(fbxCreationTime),
		bfbx73.Creator(fbxCreator),
		bfbx73.GlobalSettings().AddNodes(
			bfbx73.Version(1000),
			bfbx73.Properties70().AddNodes(
				bfbx73.P("UpAxis", "int", "Integer", "", int32(2)),
				bfbx73.P("UpAxisSign", "int", "Integer", "", int32(1)),
				bfbx73.P("FrontAxis", "int", "Integer", "", int32(1)),
				bfbx73.P("FrontAxisSign", "int", "Integer", "", int32(-1)),
				bfbx73.P("CoordAxis", "int", "Integer", "", int32(0)),
				bfbx73.P("CoordAxisSign", "int", "Integer", "", int32(1)),
				bfbx73.P("UnitScaleFactor", "double", "Number", "", float64(1)),
			),
		),
		bfbx73.Documents().AddNodes(
			bfbx73.Count(1),
			bfbx73.Document(b.generateId(), "Scene", "Scene").AddNodes(
				bfbx73.Properties70().AddNodes(
					bfbx73.P("SourceObject", "object", "", ""),
					bfbx73.P("ActiveAnimStackName", "KString", "", "", ""),
				),
				bfbx73.RootNode(0),
			),
		),
		bfbx73.References(),
		bfbx73.Definitions().AddNodes(
			bfbx73.Version(100),
			bfbx73.Count(1),
			bfbx73.ObjectType("GlobalSettings").AddNodes(
				bfbx73.Count(1),
			),
		),
		b.objects,
		b.connections,
		bfbx73.Takes().AddNodes(
			bfbx73.Current(""),
		),
	)
}

// countDefinitions refreshes the Definitions section from the object
// nodes actually added.
func (b *fbxBuilder) countDefinitions() {
	counts := make(map[string]int32)
	for _, object := range b.objects.Nodes {
		counts[object.Name]++
	}

	definitions := b.f.Root.GetNode("Definitions")
	totalCount := int32(1) // GlobalSettings
	for _, object := range b.objects.Nodes {
		name := object.Name
		count, ok := counts[name]
		if !ok {
			continue
		}
		delete(counts, name)
		totalCount += count

		var objectType *fbx.Node
		for _, ot := range definitions.GetNodes("ObjectType") {
			if ot.Properties[0].(string) == name {
				objectType = ot
			}
		}
		if objectType == nil {
			objectType = bfbx73.ObjectType(name)
			definitions.AddNode(objectType)
		}
		objectType.GetOrAddNode(bfbx73.Count(0)).Properties[0] = count
	}
	definitions.GetOrAddNode(bfbx73.Count(0)).Properties[0] = totalCount
}

// WriteFBX writes the proxy set as binary FBX. Usage and layer preset
// become user properties on each model node, which is exactly where the
// engine-side import plugin expects them.
func WriteFBX(w io.Writer, set collision.ProxySet) error {
	b := newFbxBuilder("collision.fbx")

	for _, proxy := range set {
		m := proxy.Mesh

		vertices := make([]float64, 0, len(m.Vertices)*3)
		for _, v := range m.Vertices {
			vertices = append(vertices, v.X(), v.Y(), v.Z())
		}

		// last index of every polygon is stored bitwise-negated
		indexes := make([]int32, 0)
		for _, f := range m.Faces {
			for i, vi := range f {
				idx := int32(vi)
				if i == len(f)-1 {
					idx = -idx - 1
				}
				indexes = append(indexes, idx)
			}
		}

		normals := make([]float64, 0, len(m.Vertices)*3)
		for _, n := range vertexNormals(m) {
			normals = append(normals, float64(n[0]), float64(n[1]), float64(n[2]))
		}

		geometryId := b.generateId()
		geometryLayer := bfbx73.Layer(0).AddNodes(
			bfbx73.Version(100),
		)
		geometry := bfbx73.Geometry(geometryId, "\x00\x01Geometry", "Mesh").AddNodes(
			bfbx73.GeometryVersion(124),
			bfbx73.Vertices(vertices),
			bfbx73.PolygonVertexIndex(indexes),
			bfbx73.LayerElementNormal(0).AddNodes(
				bfbx73.Version(101),
				bfbx73.Name(""),
				bfbx73.MappingInformationType("ByVertice"),
				bfbx73.ReferenceInformationType("Direct"),
				bfbx73.Normals(normals),
			),
			geometryLayer,
		)
		geometryLayer.AddNode(
			bfbx73.LayerElement().AddNodes(
				bfbx73.Type("LayerElementNormal"),
				bfbx73.TypedIndex(0),
			),
		)

		modelId := b.generateId()
		model := bfbx73.Model(modelId, proxy.Name+"\x00\x01Model", "Mesh").AddNodes(
			bfbx73.Version(232),
			bfbx73.Properties70().AddNodes(
				bfbx73.P("InheritType", "enum", "", "", int32(1)),
				bfbx73.P("DefaultAttributeIndex", "int", "Integer", "", int32(0)),
				bfbx73.P("Lcl Translation", "Lcl Translation", "", "A", float64(0), float64(0), float64(0)),
				bfbx73.P("Lcl Rotation", "Lcl Rotation", "", "A", float64(0), float64(0), float64(0)),
				bfbx73.P("Lcl Scaling", "Lcl Scaling", "", "A", float64(1), float64(1), float64(1)),
				bfbx73.P("usage", "KString", "", "U", proxy.Usage),
				bfbx73.P("layer_preset", "KString", "", "U", proxy.LayerPreset),
			),
			bfbx73.Shading(true),
			bfbx73.Culling("CullingOff"),
		)

		b.objects.AddNodes(model, geometry)
		b.connections.AddNodes(
			bfbx73.C("OO", geometryId, modelId),
			bfbx73.C("OO", modelId, 0),
		)
	}

	b.countDefinitions()

	// fbx.Write wants a seekable target, so go through a temp file.
	tempFile, err := os.CreateTemp("", "fbxexport.*.fbx")
	if err != nil {
		return err
	}
	defer tempFile.Close()
	defer os.Remove(tempFile.Name())

	if err := fbx.Write(tempFile, b.f); err != nil {
		return err
	}
	if _, err := tempFile.Seek(0, io.SeekStart); err != nil {
		return err
	}
	_, err = io.Copy(w, tempFile)
	return err
}
