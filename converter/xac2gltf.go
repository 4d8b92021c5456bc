package converter

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/R-Hidayatullah/tos-parser/geom"
	"github.com/R-Hidayatullah/tos-parser/xac"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

const (
	unlitMaterialExt = "KHR_materials_unlit"
	webpTextureExt   = "EXT_texture_webp"
)

type XACToGLTFOption struct {
	Scale      float32 // Default: 1
	ForceUnlit bool

	TextureReCompress      bool
	TextureResolutionLimit int     // 0: unlimited
	TextureScale           float32 // Default: 1
	TextureFormat          string  // "png" (default), "jpeg" or "webp"
	// TextureExtensions is the file lookup order for texture names. Default: DefaultTextureExtensions
	TextureExtensions []string

	IncludeCollisionMeshes bool
	// ZUp marks the source as Z-up. The converted roots are placed under a
	// node that turns them to the glTF Y-up convention.
	ZUp bool
}

type xacToGltf struct {
	*XACToGLTFOption
	*gltf.Document

	// offsets of the actor being converted, so one document can hold several actors
	nodeBase     uint32
	materialBase uint32
	sceneBase    int
}

func NewXACToGLTFConverter(options *XACToGLTFOption) *xacToGltf {
	if options == nil {
		options = &XACToGLTFOption{}
	}
	if options.Scale == 0 {
		options.Scale = 1
	}
	if options.TextureScale == 0 {
		options.TextureScale = 1.0
	}
	if options.TextureFormat == "" {
		options.TextureFormat = "png"
	}
	return &xacToGltf{
		XACToGLTFOption: options,
		Document:        gltf.NewDocument(),
	}
}

func (m *xacToGltf) textureMime() string {
	switch m.TextureFormat {
	case "webp":
		return "image/webp"
	case "jpeg", "jpg":
		return "image/jpeg"
	}
	return "image/png"
}

// nodeRotation returns the local rotation of n. Stored quaternions that are
// not close to unit length are replaced by the rotation of the node transform.
func nodeRotation(n *xac.Node) *geom.Quaternion {
	q := geom.FromQuaternion32(n.Rotation)
	if l := q.Len(); l > 0.5 && l < 2 {
		return q.Normalize()
	}
	_, rot, _ := geom.FromMatrix44(n.Transform).Decompose()
	return rot
}

func (m *xacToGltf) addNodes(h *xac.NodeHierarchy) {
	base := m.nodeBase
	for i := range h.Nodes {
		n := &h.Nodes[i]
		s := [3]float32{n.Scale.X, n.Scale.Y, n.Scale.Z}
		if s == [3]float32{} {
			s = [3]float32{1, 1, 1}
		}
		m.Nodes = append(m.Nodes, &gltf.Node{
			Name:        n.Name,
			Translation: geom.FromVec3(n.Position).Scale(m.Scale).ToArray(),
			Rotation:    nodeRotation(n).ToArray(),
			Scale:       s,
		})
	}
	for i, children := range h.ChildMap() {
		for _, c := range children {
			m.Nodes[base+uint32(i)].Children = append(m.Nodes[base+uint32(i)].Children, base+uint32(c))
		}
	}
	for _, r := range h.Roots() {
		m.Scenes[0].Nodes = append(m.Scenes[0].Nodes, base+uint32(r))
	}
}

func (m *xacToGltf) addTexture(texture string, textures *textureCache) (*uint32, error) {
	t := textures.get(texture)
	if t.id != nil || t.err != nil {
		return t.id, t.err
	}
	ext := strings.ToLower(filepath.Ext(t.path))

	if ext == ".dds" {
		// no DDS decoder and no glTF image type for it
		t.err = fmt.Errorf("texture %s: DDS images are not supported: %s", texture, t.path)
		return nil, t.err
	}

	encode := m.TextureReCompress || m.TextureFormat == "webp" || m.TextureResolutionLimit > 0 || m.TextureScale != 1
	var mimeType string
	if ext == ".jpg" || ext == ".jpeg" {
		mimeType = "image/jpeg"
	} else if ext == ".png" {
		mimeType = "image/png"
	} else {
		encode = true
	}
	if encode {
		mimeType = m.textureMime()
	}

	var r io.Reader
	if encode {
		r2, err := scaleTexture(texture, mimeType, textures, m.TextureScale, m.TextureResolutionLimit)
		if err != nil {
			return nil, err
		}
		r = r2
	} else {
		f, err := os.Open(t.path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	img, err := modeler.WriteImage(m.Document, filepath.Base(t.path), mimeType, r)
	if err != nil {
		return nil, err
	}
	m.Buffers[0].ByteLength = uint32(len(m.Buffers[0].Data)) // avoid AddImage bug

	tex := &gltf.Texture{Sampler: gltf.Index(0), Source: gltf.Index(img)}
	if m.Images[img].MimeType == "image/webp" {
		tex.Source = nil
		tex.Extensions = map[string]interface{}{webpTextureExt: map[string]interface{}{"source": img}}
		m.useExtension(webpTextureExt, true)
	}
	m.Textures = append(m.Textures, tex)
	t.id = gltf.Index(uint32(len(m.Textures)) - 1)
	return t.id, nil
}

func (m *xacToGltf) useExtension(name string, required bool) {
	for _, e := range m.ExtensionsUsed {
		if e == name {
			return
		}
	}
	m.ExtensionsUsed = append(m.ExtensionsUsed, name)
	if required {
		m.ExtensionsRequired = append(m.ExtensionsRequired, name)
	}
}

func (m *xacToGltf) setTextures(mm *gltf.Material, diffuse, normal string, textures *textureCache) {
	if diffuse != "" {
		if tex, err := m.addTexture(diffuse, textures); err == nil {
			mm.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{
				Index: *tex,
			}
			if mm.AlphaMode == gltf.AlphaOpaque && textures.hasAlpha(diffuse) {
				mm.AlphaMode = gltf.AlphaBlend
			}
		} else {
			log.Print("Texture read error:", err)
		}
	}
	if normal != "" {
		if tex, err := m.addTexture(normal, textures); err == nil {
			mm.NormalTexture = &gltf.NormalTexture{
				Index: tex,
			}
		} else {
			log.Print("Texture read error:", err)
		}
	}
	if m.ForceUnlit {
		mm.Extensions = map[string]interface{}{unlitMaterialExt: map[string]string{}}
	}
}

func (m *xacToGltf) convertMaterial(mat *xac.Material, textures *textureCache) *gltf.Material {
	shine := mat.Shine
	if shine > 100 {
		shine = 100
	} else if shine < 0 {
		shine = 0
	}
	rf := 1 - shine/100
	var mf float32
	opacity := mat.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	d := mat.DiffuseColor
	mm := &gltf.Material{
		Name: mat.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{d.X, d.Y, d.Z, opacity},
			RoughnessFactor: &rf,
			MetallicFactor:  &mf,
		},
		EmissiveFactor: [3]float32{mat.EmissiveColor.X, mat.EmissiveColor.Y, mat.EmissiveColor.Z},
		DoubleSided:    mat.DoubleSided,
	}
	if opacity < 0.99 || mat.Layer(xac.MapOpacity) != nil {
		mm.AlphaMode = gltf.AlphaBlend
	}

	var diffuse, normal string
	if l := mat.Layer(xac.MapDiffuse); l != nil {
		diffuse = l.Texture
	}
	if l := mat.Layer(xac.MapBump); l != nil {
		normal = l.Texture
	}
	m.setTextures(mm, diffuse, normal, textures)
	return mm
}

// shaderTexture returns the first string property whose name mentions one of keys.
func shaderTexture(mat *xac.ShaderMaterial, keys ...string) string {
	for _, p := range mat.StringProperties {
		name := strings.ToLower(p.Name)
		for _, k := range keys {
			if strings.Contains(name, k) && p.Value != "" {
				return p.Value
			}
		}
	}
	return ""
}

func (m *xacToGltf) convertShaderMaterial(mat *xac.ShaderMaterial, textures *textureCache) *gltf.Material {
	rf := float32(1)
	var mf float32
	mm := &gltf.Material{
		Name: mat.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{1, 1, 1, 1},
			RoughnessFactor: &rf,
			MetallicFactor:  &mf,
		},
	}
	if v, ok := mat.BoolProperty("doubleSided"); ok {
		mm.DoubleSided = v
	}
	m.setTextures(mm, shaderTexture(mat, "diffuse", "albedo", "basecolor"), shaderTexture(mat, "normal", "bump"), textures)
	return mm
}

func toUint32Indices(sub *xac.SubMesh) ([]uint32, error) {
	indices := make([]uint32, len(sub.Indices))
	for i, v := range sub.Indices {
		if v < 0 || v >= sub.NumVertices {
			return nil, fmt.Errorf("index %d out of range [0, %d)", v, sub.NumVertices)
		}
		indices[i] = uint32(v)
	}
	return indices, nil
}

func (m *xacToGltf) convertSubMesh(sub *xac.SubMesh, numMaterials int) (*gltf.Primitive, error) {
	pos := sub.Layer(xac.AttributePosition)
	if pos == nil || len(pos.Vectors) == 0 {
		return nil, nil
	}
	vertexes := make([][3]float32, len(pos.Vectors))
	for i, v := range pos.Vectors {
		vertexes[i] = geom.FromVec3(v).Scale(m.Scale).ToArray()
	}
	attributes := map[string]uint32{
		"POSITION": modeler.WritePosition(m.Document, vertexes),
	}
	if l := sub.Layer(xac.AttributeNormal); l != nil && !m.ForceUnlit {
		normals := make([][3]float32, len(l.Vectors))
		for i, v := range l.Vectors {
			normals[i] = geom.FromVec3(v).Normalize().ToArray()
		}
		attributes["NORMAL"] = modeler.WriteNormal(m.Document, normals)
	}
	if _, ok := attributes["NORMAL"]; ok && sub.Layer(xac.AttributeTangent) != nil {
		l := sub.Layer(xac.AttributeTangent)
		tangents := make([][4]float32, len(l.Tangents))
		for i, v := range l.Tangents {
			w := v.W
			if w >= 0 {
				w = 1
			} else {
				w = -1
			}
			t := geom.NewVector3(v.X, v.Y, v.Z).Normalize()
			tangents[i] = [4]float32{t.X, t.Y, t.Z, w}
		}
		attributes["TANGENT"] = modeler.WriteTangent(m.Document, tangents)
	}
	uvSet := 0
	for _, l := range sub.Layers {
		if l.Type != xac.AttributeUVCoord || l.Skipped || uvSet >= 2 {
			continue
		}
		uvs := make([][2]float32, len(l.UVs))
		for i, v := range l.UVs {
			uvs[i] = [2]float32{v.X, v.Y}
		}
		attributes[fmt.Sprintf("TEXCOORD_%d", uvSet)] = modeler.WriteTextureCoord(m.Document, uvs)
		uvSet++
	}
	if l := sub.Layer(xac.AttributeColor128); l != nil {
		colors := make([][4]float32, len(l.Colors))
		for i, c := range l.Colors {
			colors[i] = [4]float32{c.X, c.Y, c.Z, c.W}
		}
		attributes["COLOR_0"] = modeler.WriteAccessor(m.Document, gltf.TargetArrayBuffer, colors)
	} else if l := sub.Layer(xac.AttributeColor32); l != nil {
		colors := make([][4]uint8, len(l.Colors8))
		for i, c := range l.Colors8 {
			colors[i] = [4]uint8{c.R, c.G, c.B, c.A}
		}
		acc := modeler.WriteAccessor(m.Document, gltf.TargetArrayBuffer, colors)
		m.Accessors[acc].Normalized = true
		attributes["COLOR_0"] = acc
	}

	indices, err := toUint32Indices(sub)
	if err != nil {
		return nil, err
	}
	p := &gltf.Primitive{
		Indices:    gltf.Index(modeler.WriteIndices(m.Document, indices)),
		Attributes: attributes,
	}
	if sub.MaterialID >= 0 && int(sub.MaterialID) < numMaterials {
		p.Material = gltf.Index(m.materialBase + uint32(sub.MaterialID))
	}
	return p, nil
}

// meshName names a mesh after the node it is attached to.
func meshName(doc *xac.Document, mesh *xac.Mesh, i int) string {
	if doc.Nodes != nil && mesh.NodeID >= 0 && int(mesh.NodeID) < len(doc.Nodes.Nodes) {
		return doc.Nodes.Nodes[mesh.NodeID].Name
	}
	return fmt.Sprintf("mesh%d", i)
}

// attachMesh places mesh on the node it belongs to. A node that already
// carries a mesh gets a child node for the extra one.
func (m *xacToGltf) attachMesh(doc *xac.Document, src *xac.Mesh, mesh uint32) {
	if doc.Nodes == nil || src.NodeID < 0 || int(src.NodeID) >= len(doc.Nodes.Nodes) {
		m.Nodes = append(m.Nodes, &gltf.Node{
			Name:     m.Meshes[mesh].Name,
			Mesh:     gltf.Index(mesh),
			Rotation: [4]float32{0, 0, 0, 1},
			Scale:    [3]float32{1, 1, 1},
		})
		m.Scenes[0].Nodes = append(m.Scenes[0].Nodes, uint32(len(m.Nodes)-1))
		return
	}
	node := m.Nodes[m.nodeBase+uint32(src.NodeID)]
	if node.Mesh == nil {
		node.Mesh = gltf.Index(mesh)
		return
	}
	m.Nodes = append(m.Nodes, &gltf.Node{
		Name:     m.Meshes[mesh].Name,
		Mesh:     gltf.Index(mesh),
		Rotation: [4]float32{0, 0, 0, 1},
		Scale:    [3]float32{1, 1, 1},
	})
	node.Children = append(node.Children, uint32(len(m.Nodes)-1))
}

// Convert builds a glTF document from doc. Submesh material ids index the
// standard materials followed by the shader materials.
func (m *xacToGltf) Convert(doc *xac.Document, textureDir string) (*gltf.Document, error) {
	m.nodeBase = uint32(len(m.Nodes))
	m.materialBase = uint32(len(m.Document.Materials))
	m.sceneBase = len(m.Scenes[0].Nodes)
	if doc.Nodes != nil {
		m.addNodes(doc.Nodes)
	}

	textures := newTextureCache(textureDir, m.TextureExtensions)
	for _, mat := range doc.Materials {
		m.Document.Materials = append(m.Document.Materials, m.convertMaterial(mat, textures))
	}
	for _, mat := range doc.ShaderMaterials {
		m.Document.Materials = append(m.Document.Materials, m.convertShaderMaterial(mat, textures))
	}
	if m.ForceUnlit && len(m.Document.Materials) > 0 {
		m.useExtension(unlitMaterialExt, false)
	}

	for i, src := range doc.Meshes {
		if src.CollisionMesh && !m.IncludeCollisionMeshes {
			continue
		}
		mesh := &gltf.Mesh{Name: meshName(doc, src, i)}
		for j := range src.SubMeshes {
			p, err := m.convertSubMesh(&src.SubMeshes[j], len(m.Document.Materials)-int(m.materialBase))
			if err != nil {
				return nil, fmt.Errorf("mesh %d submesh %d: %w", i, j, err)
			}
			if p != nil {
				mesh.Primitives = append(mesh.Primitives, p)
			}
		}
		if len(mesh.Primitives) == 0 {
			continue
		}
		m.Document.Meshes = append(m.Document.Meshes, mesh)
		m.attachMesh(doc, src, uint32(len(m.Document.Meshes)-1))
	}

	if m.ZUp {
		m.addUpAxisRoot()
	}
	if len(m.Document.Textures) > 0 && len(m.Document.Samplers) == 0 {
		m.Document.Samplers = []*gltf.Sampler{{}}
	}
	return m.Document, nil
}

// addUpAxisRoot moves the scene roots of the current actor under a node
// rotated -90 degrees around X, which maps +Z to +Y.
func (m *xacToGltf) addUpAxisRoot() {
	roots := append([]uint32(nil), m.Scenes[0].Nodes[m.sceneBase:]...)
	if len(roots) == 0 {
		return
	}
	m.Nodes = append(m.Nodes, &gltf.Node{
		Name:     "Z-up",
		Rotation: geom.NewAxisAngleQuaternion(geom.NewVector3(1, 0, 0), -math.Pi/2).ToArray(),
		Scale:    [3]float32{1, 1, 1},
		Children: roots,
	})
	m.Scenes[0].Nodes = append(m.Scenes[0].Nodes[:m.sceneBase], uint32(len(m.Nodes)-1))
}
