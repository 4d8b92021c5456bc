package converter

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/R-Hidayatullah/tos-parser/emfx"
	"github.com/R-Hidayatullah/tos-parser/xac"
	"github.com/qmuntal/gltf"
)

func floatBits(f float32) int32 {
	return int32(math.Float32bits(f))
}

func identityQuat32() emfx.Quaternion32 {
	return emfx.Quaternion32{W: floatBits(1)}
}

func subMeshLayers(from, to int, layers []xac.AttributeLayer) []xac.AttributeLayer {
	var out []xac.AttributeLayer
	for _, l := range layers {
		s := l
		if l.Vectors != nil {
			s.Vectors = l.Vectors[from:to]
		}
		if l.UVs != nil {
			s.UVs = l.UVs[from:to]
		}
		out = append(out, s)
	}
	return out
}

func testActor() *xac.Document {
	layers := []xac.AttributeLayer{
		{Type: xac.AttributePosition, Vectors: []emfx.Vec3{
			{X: 0}, {X: 1}, {Y: 1}, {X: 2}, {X: 3}, {Y: 2},
		}},
		{Type: xac.AttributeNormal, Vectors: []emfx.Vec3{
			{Z: 1}, {Z: 1}, {Z: 1}, {Z: 2}, {Z: 2}, {Z: 2},
		}},
		{Type: xac.AttributeUVCoord, UVs: []emfx.Vec2{
			{}, {X: 1}, {Y: 1}, {}, {X: 1}, {Y: 1},
		}},
	}
	return &xac.Document{
		Nodes: &xac.NodeHierarchy{NumNodes: 3, NumRootNodes: 1, Nodes: []xac.Node{
			{Name: "Bip01", ParentIndex: -1, Rotation: identityQuat32(), ScaleRotation: identityQuat32(),
				Position: emfx.Vec3{Y: 10}, Scale: emfx.Vec3{X: 1, Y: 1, Z: 1}},
			{Name: "Bip01 Spine", ParentIndex: 0, Rotation: identityQuat32(), Position: emfx.Vec3{Y: 5}},
			{Name: "body", ParentIndex: 0, Rotation: emfx.Quaternion32{}, Scale: emfx.Vec3{X: 2, Y: 2, Z: 2},
				Transform: emfx.Matrix44{Col1: emfx.Vec4{X: 1}, Col2: emfx.Vec4{Y: 1}, Col3: emfx.Vec4{Z: 1}}},
		}},
		Materials: []*xac.Material{
			{Name: "skin", DiffuseColor: emfx.Vec4{X: 1, Y: 0.5, Z: 0.25, W: 1}, Opacity: 1, DoubleSided: true,
				Layers: []xac.MaterialLayer{{MapType: xac.MapDiffuse, Texture: "skin.dds"}}},
			{Name: "glass", Opacity: 0.5},
		},
		ShaderMaterials: []*xac.ShaderMaterial{
			{Name: "hair", StringProperties: []xac.StringProperty{{Name: "DiffuseMap", Value: "hair"}}},
		},
		Meshes: []*xac.Mesh{{
			NodeID:      2,
			NumVertices: 6,
			Layers:      layers,
			SubMeshes: []xac.SubMesh{
				{NumVertices: 3, MaterialID: 0, Indices: []int32{0, 1, 2}, Layers: subMeshLayers(0, 3, layers)},
				{NumVertices: 3, MaterialID: 2, VertexOffset: 3, Indices: []int32{2, 1, 0}, Layers: subMeshLayers(3, 6, layers)},
			},
		}, {
			NodeID:        2,
			NumVertices:   3,
			CollisionMesh: true,
			Layers:        layers[:1],
			SubMeshes:     []xac.SubMesh{{NumVertices: 3, Indices: []int32{0, 1, 2}, Layers: subMeshLayers(0, 3, layers[:1])}},
		}},
	}
}

func writeTestPNG(t *testing.T, path string, alpha uint8) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: uint8(x * 30), B: 10, A: alpha})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestConvertNodes(t *testing.T) {
	doc, err := NewXACToGLTFConverter(&XACToGLTFOption{Scale: 0.1}).Convert(testActor(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Nodes) != 3 {
		t.Fatal("nodes", len(doc.Nodes))
	}
	if len(doc.Scenes[0].Nodes) != 1 || doc.Scenes[0].Nodes[0] != 0 {
		t.Error("scene roots", doc.Scenes[0].Nodes)
	}
	root := doc.Nodes[0]
	if root.Name != "Bip01" || len(root.Children) != 2 || root.Children[0] != 1 || root.Children[1] != 2 {
		t.Errorf("root %+v", root)
	}
	if math.Abs(float64(root.Translation[1]-1)) > 1e-6 {
		t.Error("scaled translation", root.Translation)
	}
	if doc.Nodes[1].Scale != [3]float32{1, 1, 1} {
		t.Error("zero scale should default to one", doc.Nodes[1].Scale)
	}
	// invalid stored rotation falls back to the transform
	if doc.Nodes[2].Rotation != [4]float32{0, 0, 0, 1} {
		t.Error("fallback rotation", doc.Nodes[2].Rotation)
	}
}

func TestConvertMeshes(t *testing.T) {
	doc, err := NewXACToGLTFConverter(nil).Convert(testActor(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Meshes) != 1 {
		t.Fatal("collision mesh should be skipped", len(doc.Meshes))
	}
	mesh := doc.Meshes[0]
	if mesh.Name != "body" || len(mesh.Primitives) != 2 {
		t.Fatalf("mesh %+v", mesh)
	}
	if doc.Nodes[2].Mesh == nil || *doc.Nodes[2].Mesh != 0 {
		t.Error("mesh not attached to its node")
	}
	for i, p := range mesh.Primitives {
		for _, a := range []string{"POSITION", "NORMAL", "TEXCOORD_0"} {
			if _, ok := p.Attributes[a]; !ok {
				t.Errorf("primitive %d: missing %s", i, a)
			}
		}
		if p.Indices == nil || doc.Accessors[*p.Indices].Count != 3 {
			t.Errorf("primitive %d indices", i)
		}
		if doc.Accessors[p.Attributes["POSITION"]].Count != 3 {
			t.Errorf("primitive %d: %d positions", i, doc.Accessors[p.Attributes["POSITION"]].Count)
		}
	}
	if *mesh.Primitives[0].Material != 0 || *mesh.Primitives[1].Material != 2 {
		t.Error("materials", *mesh.Primitives[0].Material, *mesh.Primitives[1].Material)
	}

	doc, err = NewXACToGLTFConverter(&XACToGLTFOption{IncludeCollisionMeshes: true}).Convert(testActor(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Meshes) != 2 || len(doc.Nodes) != 4 || len(doc.Nodes[2].Children) != 1 {
		t.Error("second mesh on a node should get a child node", len(doc.Meshes), len(doc.Nodes))
	}
}

func TestConvertWithoutHierarchy(t *testing.T) {
	actor := testActor()
	actor.Nodes = nil
	doc, err := NewXACToGLTFConverter(nil).Convert(actor, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Nodes) != 1 || doc.Nodes[0].Mesh == nil || doc.Meshes[0].Name != "mesh0" {
		t.Error("nodes", doc.Nodes)
	}
	if len(doc.Scenes[0].Nodes) != 1 {
		t.Error("scene", doc.Scenes[0].Nodes)
	}
}

func TestConvertBadIndex(t *testing.T) {
	actor := testActor()
	actor.Meshes[0].SubMeshes[0].Indices[1] = 3
	if _, err := NewXACToGLTFConverter(nil).Convert(actor, ""); err == nil {
		t.Error("out of range index should fail")
	}
}

func TestConvertMaterials(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "skin.png"), 255)
	writeTestPNG(t, filepath.Join(dir, "hair.png"), 128)

	doc, err := NewXACToGLTFConverter(nil).Convert(testActor(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Materials) != 3 {
		t.Fatal("materials", len(doc.Materials))
	}
	skin, glass, hair := doc.Materials[0], doc.Materials[1], doc.Materials[2]
	if skin.Name != "skin" || !skin.DoubleSided || skin.AlphaMode != gltf.AlphaOpaque {
		t.Errorf("skin %+v", skin)
	}
	if c := *skin.PBRMetallicRoughness.BaseColorFactor; c != [4]float32{1, 0.5, 0.25, 1} {
		t.Error("base color", c)
	}
	if skin.PBRMetallicRoughness.BaseColorTexture == nil {
		t.Error("skin texture should resolve skin.dds to skin.png")
	}
	if glass.AlphaMode != gltf.AlphaBlend {
		t.Error("glass alpha mode", glass.AlphaMode)
	}
	if hair.PBRMetallicRoughness.BaseColorTexture == nil || hair.AlphaMode != gltf.AlphaBlend {
		t.Errorf("hair %+v", hair)
	}
	if len(doc.Textures) != 2 || len(doc.Images) != 2 || len(doc.Samplers) != 1 {
		t.Error("textures", len(doc.Textures), len(doc.Images), len(doc.Samplers))
	}
	for _, img := range doc.Images {
		if img.BufferView == nil || img.MimeType != "image/png" {
			t.Errorf("image %+v", img)
		}
	}
}

func TestConvertWebPTextures(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "skin.png"), 255)

	actor := testActor()
	actor.ShaderMaterials = nil
	actor.Meshes[0].SubMeshes[1].MaterialID = 0
	doc, err := NewXACToGLTFConverter(&XACToGLTFOption{TextureFormat: "webp", TextureResolutionLimit: 4}).Convert(actor, dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Images) != 1 || doc.Images[0].MimeType != "image/webp" {
		t.Fatal("images", doc.Images)
	}
	if doc.Textures[0].Source != nil || doc.Textures[0].Extensions[webpTextureExt] == nil {
		t.Errorf("texture %+v", doc.Textures[0])
	}
	if len(doc.ExtensionsRequired) != 1 || doc.ExtensionsRequired[0] != webpTextureExt {
		t.Error("extensions", doc.ExtensionsRequired)
	}
}

func TestConvertMissingTextureIsLogged(t *testing.T) {
	doc, err := NewXACToGLTFConverter(&XACToGLTFOption{ForceUnlit: true}).Convert(testActor(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Textures) != 0 || doc.Materials[0].PBRMetallicRoughness.BaseColorTexture != nil {
		t.Error("missing texture should be left out")
	}
	if doc.Materials[0].Extensions[unlitMaterialExt] == nil || len(doc.ExtensionsUsed) != 1 {
		t.Error("unlit", doc.ExtensionsUsed)
	}
	if _, ok := doc.Meshes[0].Primitives[0].Attributes["NORMAL"]; ok {
		t.Error("unlit meshes carry no normals")
	}
}

func TestTextureIndex(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Body.DDS", "body.png", "face.dds", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte{0}, 0644); err != nil {
			t.Fatal(err)
		}
	}
	idx := buildTextureIndex(dir, DefaultTextureExtensions)
	if len(idx.entries) != 2 {
		t.Error("indexed stems", len(idx.entries))
	}
	if p, ok := idx.resolve(`char_texture\body.dds`); !ok || filepath.Base(p) != "body.png" {
		t.Error("body", p)
	}
	if p, ok := idx.resolve("FACE.tga"); !ok || filepath.Base(p) != "face.dds" {
		t.Error("face", p)
	}
	if _, ok := idx.resolve("hair"); ok {
		t.Error("hair should not resolve")
	}
}

func TestConvertDDSTextureIsSkipped(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "skin.dds"), []byte("DDS \x7c"), 0644); err != nil {
		t.Fatal(err)
	}
	doc, err := NewXACToGLTFConverter(nil).Convert(testActor(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Images) != 0 || len(doc.Textures) != 0 {
		t.Error("dds texture should not be referenced", doc.Images)
	}
	if doc.Materials[0].PBRMetallicRoughness.BaseColorTexture != nil {
		t.Error("skin texture")
	}
}

func TestConvertTwoActors(t *testing.T) {
	c := NewXACToGLTFConverter(nil)
	if _, err := c.Convert(testActor(), ""); err != nil {
		t.Fatal(err)
	}
	doc, err := c.Convert(testActor(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Nodes) != 6 || len(doc.Meshes) != 2 || len(doc.Materials) != 6 {
		t.Fatal("nodes, meshes, materials", len(doc.Nodes), len(doc.Meshes), len(doc.Materials))
	}
	if doc.Nodes[2].Mesh == nil || *doc.Nodes[2].Mesh != 0 {
		t.Error("first actor mesh", doc.Nodes[2].Mesh)
	}
	if doc.Nodes[5].Mesh == nil || *doc.Nodes[5].Mesh != 1 {
		t.Error("second actor mesh", doc.Nodes[5].Mesh)
	}
	if ch := doc.Nodes[3].Children; len(ch) != 2 || ch[0] != 4 || ch[1] != 5 {
		t.Error("second actor children", ch)
	}
	if p := doc.Meshes[1].Primitives; *p[0].Material != 3 || *p[1].Material != 5 {
		t.Error("second actor materials", *p[0].Material, *p[1].Material)
	}
	if s := doc.Scenes[0].Nodes; len(s) != 2 || s[0] != 0 || s[1] != 3 {
		t.Error("scene roots", s)
	}
}

func TestConvertZUp(t *testing.T) {
	doc, err := NewXACToGLTFConverter(&XACToGLTFOption{ZUp: true}).Convert(testActor(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Nodes) != 4 || len(doc.Scenes[0].Nodes) != 1 || doc.Scenes[0].Nodes[0] != 3 {
		t.Fatal("scene", doc.Scenes[0].Nodes, len(doc.Nodes))
	}
	up := doc.Nodes[3]
	if len(up.Children) != 1 || up.Children[0] != 0 {
		t.Error("children", up.Children)
	}
	h := math.Sqrt(0.5)
	want := [4]float64{-h, 0, 0, h}
	for i, v := range up.Rotation {
		if math.Abs(float64(v)-want[i]) > 1e-6 {
			t.Error("rotation", up.Rotation)
			break
		}
	}
}
