package xac

import (
	"fmt"

	"github.com/R-Hidayatullah/tos-parser/emfx"
)

// AttributeType identifies the per-vertex data held by an AttributeLayer.
type AttributeType int32

const (
	AttributePosition       AttributeType = 0
	AttributeNormal         AttributeType = 1
	AttributeTangent        AttributeType = 2
	AttributeUVCoord        AttributeType = 3
	AttributeColor32        AttributeType = 4
	AttributeInfluenceRange AttributeType = 5
	AttributeColor128       AttributeType = 6
)

func (t AttributeType) String() string {
	switch t {
	case AttributePosition:
		return "position"
	case AttributeNormal:
		return "normal"
	case AttributeTangent:
		return "tangent"
	case AttributeUVCoord:
		return "uv"
	case AttributeColor32:
		return "color32"
	case AttributeInfluenceRange:
		return "influence range"
	case AttributeColor128:
		return "color128"
	}
	return fmt.Sprintf("attribute(%d)", int32(t))
}

// AttributeLayer holds one value per vertex. Exactly one buffer is set,
// chosen by Type, unless Skipped is true.
type AttributeLayer struct {
	Type          AttributeType `yaml:"type"`
	AttributeSize int32         `yaml:"attributeSize"`
	KeepOriginals bool          `yaml:"keepOriginals"`
	ScaleFactor   bool          `yaml:"scaleFactor"`
	// Skipped is set for layers whose bytes were stepped over: unknown types
	// and tangent layers after the first.
	Skipped bool `yaml:"skipped,omitempty"`

	Vectors         []emfx.Vec3   `yaml:"vectors,omitempty,flow"`
	Tangents        []emfx.Vec4   `yaml:"tangents,omitempty,flow"`
	UVs             []emfx.Vec2   `yaml:"uvs,omitempty,flow"`
	Colors8         []emfx.Color8 `yaml:"colors8,omitempty,flow"`
	InfluenceRanges []int32       `yaml:"influenceRanges,omitempty,flow"`
	Colors          []emfx.Vec4   `yaml:"colors,omitempty,flow"`
}

// Len returns the number of vertices in the layer buffer.
func (l *AttributeLayer) Len() int {
	switch {
	case l.Vectors != nil:
		return len(l.Vectors)
	case l.Tangents != nil:
		return len(l.Tangents)
	case l.UVs != nil:
		return len(l.UVs)
	case l.Colors8 != nil:
		return len(l.Colors8)
	case l.InfluenceRanges != nil:
		return len(l.InfluenceRanges)
	case l.Colors != nil:
		return len(l.Colors)
	}
	return 0
}

// slice returns a view of the vertex range [from, to). Capacity is capped so
// an append on the view can never write into the neighbouring submesh.
func (l *AttributeLayer) slice(from, to int) AttributeLayer {
	s := AttributeLayer{
		Type:          l.Type,
		AttributeSize: l.AttributeSize,
		KeepOriginals: l.KeepOriginals,
		ScaleFactor:   l.ScaleFactor,
		Skipped:       l.Skipped,
	}
	if l.Vectors != nil {
		s.Vectors = l.Vectors[from:to:to]
	}
	if l.Tangents != nil {
		s.Tangents = l.Tangents[from:to:to]
	}
	if l.UVs != nil {
		s.UVs = l.UVs[from:to:to]
	}
	if l.Colors8 != nil {
		s.Colors8 = l.Colors8[from:to:to]
	}
	if l.InfluenceRanges != nil {
		s.InfluenceRanges = l.InfluenceRanges[from:to:to]
	}
	if l.Colors != nil {
		s.Colors = l.Colors[from:to:to]
	}
	return s
}

// SubMesh is a contiguous vertex range of a Mesh drawn with one material.
type SubMesh struct {
	NumIndices   int32 `yaml:"numIndices"`
	NumVertices  int32 `yaml:"numVertices"`
	MaterialID   int32 `yaml:"materialId"`
	NumBones     int32 `yaml:"numBones"`
	VertexOffset int32 `yaml:"vertexOffset"`
	// Layers mirrors Mesh.Layers, sliced to this submesh's vertex range.
	Layers []AttributeLayer `yaml:"layers,omitempty"`
	// Indices are relative to VertexOffset.
	Indices []int32 `yaml:"indices,omitempty,flow"`
	BoneIDs []int32 `yaml:"boneIds,omitempty,flow"`
}

// Layer returns the first layer of type t, or nil.
func (s *SubMesh) Layer(t AttributeType) *AttributeLayer {
	return findLayer(s.Layers, t)
}

type Mesh struct {
	NodeID             int32            `yaml:"nodeId"`
	NumInfluenceRanges int32            `yaml:"numInfluenceRanges"`
	NumVertices        int32            `yaml:"numVertices"`
	NumIndices         int32            `yaml:"numIndices"`
	NumSubMeshes       int32            `yaml:"numSubMeshes"`
	NumAttributeLayers int32            `yaml:"numAttributeLayers"`
	CollisionMesh      bool             `yaml:"collisionMesh"`
	Layers             []AttributeLayer `yaml:"layers,omitempty"`
	SubMeshes          []SubMesh        `yaml:"subMeshes,omitempty"`
}

// Layer returns the first layer of type t, or nil.
func (m *Mesh) Layer(t AttributeType) *AttributeLayer {
	return findLayer(m.Layers, t)
}

// LayersOf returns every populated layer of type t in file order.
func (m *Mesh) LayersOf(t AttributeType) []*AttributeLayer {
	var layers []*AttributeLayer
	for i := range m.Layers {
		if m.Layers[i].Type == t && !m.Layers[i].Skipped {
			layers = append(layers, &m.Layers[i])
		}
	}
	return layers
}

func findLayer(layers []AttributeLayer, t AttributeType) *AttributeLayer {
	for i := range layers {
		if layers[i].Type == t && !layers[i].Skipped {
			return &layers[i]
		}
	}
	return nil
}

func (d *decoder) readMesh(r *emfx.Reader, c emfx.ChunkDescriptor) error {
	m := &Mesh{}
	m.NodeID = r.Int32()
	m.NumInfluenceRanges = r.Int32()
	numVertices := r.Count("mesh vertices")
	m.NumIndices = int32(r.Count("mesh indices"))
	numSubMeshes := r.Count("submeshes")
	numLayers := r.Count("attribute layers")
	m.CollisionMesh = r.Bool()
	r.Skip(3)
	if err := r.Err(); err != nil {
		return err
	}
	m.NumVertices = int32(numVertices)
	m.NumSubMeshes = int32(numSubMeshes)
	m.NumAttributeLayers = int32(numLayers)

	seenTangent := false
	for i := 0; i < numLayers && r.Err() == nil; i++ {
		m.Layers = append(m.Layers, readAttributeLayer(r, numVertices, &seenTangent))
	}

	cursor := 0
	for i := 0; i < numSubMeshes && r.Err() == nil; i++ {
		sub := readSubMesh(r, m, cursor)
		cursor += int(sub.NumVertices)
		m.SubMeshes = append(m.SubMeshes, sub)
	}
	if err := r.Err(); err != nil {
		return err
	}
	if numSubMeshes > 0 && cursor != numVertices {
		r.Errorf(emfx.InvalidSubMesh, numVertices, cursor, "submesh vertex counts do not add up to the mesh vertex count")
		return r.Err()
	}
	d.doc.Meshes = append(d.doc.Meshes, m)
	return nil
}

func readAttributeLayer(r *emfx.Reader, numVertices int, seenTangent *bool) AttributeLayer {
	l := AttributeLayer{
		Type:          AttributeType(r.Int32()),
		AttributeSize: r.Int32(),
		KeepOriginals: r.Bool(),
		ScaleFactor:   r.Bool(),
	}
	r.Skip(2)
	if r.Err() != nil {
		return l
	}

	switch l.Type {
	case AttributePosition, AttributeNormal:
		if r.Ensure(int64(numVertices) * 12) {
			l.Vectors = make([]emfx.Vec3, numVertices)
			r.Read(l.Vectors)
		}
	case AttributeTangent:
		if *seenTangent {
			skipLayer(r, &l, numVertices)
			break
		}
		*seenTangent = true
		if r.Ensure(int64(numVertices) * 16) {
			l.Tangents = make([]emfx.Vec4, numVertices)
			r.Read(l.Tangents)
		}
	case AttributeUVCoord:
		if r.Ensure(int64(numVertices) * 8) {
			l.UVs = make([]emfx.Vec2, numVertices)
			r.Read(l.UVs)
		}
	case AttributeColor32:
		if l.AttributeSize != 3 && l.AttributeSize != 4 {
			r.Errorf(emfx.InvalidCount, "3 or 4", l.AttributeSize, "color32 attribute size")
			break
		}
		if r.Ensure(int64(numVertices) * int64(l.AttributeSize)) {
			l.Colors8 = make([]emfx.Color8, numVertices)
			for i := range l.Colors8 {
				if l.AttributeSize == 3 {
					l.Colors8[i] = r.Color24()
				} else {
					l.Colors8[i] = r.Color8()
				}
			}
		}
	case AttributeInfluenceRange:
		if r.Ensure(int64(numVertices) * 4) {
			l.InfluenceRanges = make([]int32, numVertices)
			r.Read(l.InfluenceRanges)
		}
	case AttributeColor128:
		switch l.AttributeSize {
		case 16:
			if r.Ensure(int64(numVertices) * 16) {
				l.Colors = make([]emfx.Vec4, numVertices)
				r.Read(l.Colors)
			}
		case 12:
			if r.Ensure(int64(numVertices) * 12) {
				l.Colors = make([]emfx.Vec4, numVertices)
				for i := range l.Colors {
					c := r.Vec3()
					l.Colors[i] = emfx.Vec4{X: c.X, Y: c.Y, Z: c.Z, W: 1}
				}
			}
		default:
			r.Errorf(emfx.InvalidCount, "12 or 16", l.AttributeSize, "color128 attribute size")
		}
	default:
		skipLayer(r, &l, numVertices)
	}
	return l
}

func skipLayer(r *emfx.Reader, l *AttributeLayer, numVertices int) {
	if l.AttributeSize < 0 {
		r.Errorf(emfx.InvalidCount, ">= 0", l.AttributeSize, "attribute size")
		return
	}
	l.Skipped = true
	r.Skip(int64(l.AttributeSize) * int64(numVertices))
}

func readSubMesh(r *emfx.Reader, m *Mesh, cursor int) SubMesh {
	numIndices := r.Count("submesh indices")
	numVertices := r.Count("submesh vertices")
	sub := SubMesh{
		NumIndices:   int32(numIndices),
		NumVertices:  int32(numVertices),
		MaterialID:   r.Int32(),
		VertexOffset: int32(cursor),
	}
	numBones := r.Count("submesh bones")
	sub.NumBones = int32(numBones)
	if r.Err() != nil {
		return sub
	}
	if numVertices > int(m.NumVertices)-cursor {
		r.Errorf(emfx.InvalidSubMesh, int(m.NumVertices)-cursor, numVertices, "submesh vertex range exceeds the mesh")
		return sub
	}

	end := cursor + numVertices
	for i := range m.Layers {
		sub.Layers = append(sub.Layers, m.Layers[i].slice(cursor, end))
	}

	if r.Ensure(int64(numIndices) * 4) {
		sub.Indices = make([]int32, numIndices)
		r.Read(sub.Indices)
	}
	if r.Ensure(int64(numBones) * 4) {
		sub.BoneIDs = make([]int32, numBones)
		r.Read(sub.BoneIDs)
	}
	return sub
}
