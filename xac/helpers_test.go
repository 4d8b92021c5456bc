package xac

import (
	"testing"

	"github.com/R-Hidayatullah/tos-parser/emfx"
	"github.com/R-Hidayatullah/tos-parser/emfx/emfxtest"
)

func newFile() *emfxtest.Builder {
	return emfxtest.New().Header("XAC ", 1, 0, false, 0)
}

func parse(t *testing.T, b *emfxtest.Builder) *Document {
	t.Helper()
	doc, err := Parse(b.Reader())
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

type testLayer struct {
	typ  AttributeType
	size int32
	body func(b *emfxtest.Builder)
}

type testSubMesh struct {
	vertices int32
	material int32
	indices  []int32
	bones    []int32
}

func positions(vs ...emfx.Vec3) func(b *emfxtest.Builder) {
	return func(b *emfxtest.Builder) {
		for _, v := range vs {
			b.Vec3(v)
		}
	}
}

func meshChunk(nodeID, numVertices int32, layers []testLayer, subs []testSubMesh) func(b *emfxtest.Builder) {
	return func(b *emfxtest.Builder) {
		var numIndices int32
		for _, s := range subs {
			numIndices += int32(len(s.indices))
		}
		b.I32(nodeID).I32(0).I32(numVertices).I32(numIndices).I32(int32(len(subs))).I32(int32(len(layers)))
		b.Bool(false).Zeros(3)
		for _, l := range layers {
			b.I32(int32(l.typ)).I32(l.size).Bool(true).Bool(false).Zeros(2)
			l.body(b)
		}
		for _, s := range subs {
			b.I32(int32(len(s.indices))).I32(s.vertices).I32(s.material).I32(int32(len(s.bones)))
			for _, i := range s.indices {
				b.I32(i)
			}
			for _, i := range s.bones {
				b.I32(i)
			}
		}
	}
}

func metadataChunk(sourceApp, filename string) func(b *emfxtest.Builder) {
	return func(b *emfxtest.Builder) {
		b.U32(0x7).I32(2).U8(1).U8(5).Zeros(2).F32(0.5)
		b.String(sourceApp).String(filename).String("Oct 16 2026").String("barrack")
	}
}

type testNode struct {
	name   string
	parent int32
}

func nodeChunk(numRoots int32, nodes ...testNode) func(b *emfxtest.Builder) {
	return func(b *emfxtest.Builder) {
		b.I32(int32(len(nodes))).I32(numRoots)
		for i, n := range nodes {
			b.Quat32(emfx.Quaternion32{W: 1}).Quat32(emfx.Quaternion32{W: 1})
			b.Vec3(emfx.Vec3{X: float32(i)}).Vec3(emfx.Vec3{X: 1, Y: 1, Z: 1})
			b.Zeros(3*4 + 2*4)
			b.I32(n.parent).I32(0).Bool(true)
			b.Matrix44(emfx.Matrix44{
				Col1: emfx.Vec4{X: 1}, Col2: emfx.Vec4{Y: 1}, Col3: emfx.Vec4{Z: 1},
				Pos: emfx.Vec4{X: float32(i), W: 1},
			})
			b.F32(1).String(n.name)
		}
	}
}
