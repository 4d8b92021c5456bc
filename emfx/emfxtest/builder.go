// Package emfxtest builds little-endian XAC/XSM byte streams for tests.
package emfxtest

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/R-Hidayatullah/tos-parser/emfx"
)

// Builder accumulates a byte stream. Methods return the builder for chaining.
type Builder struct {
	buf bytes.Buffer
}

func New() *Builder {
	return &Builder{}
}

func (b *Builder) Bytes() []byte { return b.buf.Bytes() }
func (b *Builder) Len() int      { return b.buf.Len() }

// Reader returns a fresh reader over the bytes written so far.
func (b *Builder) Reader() *bytes.Reader {
	return bytes.NewReader(append([]byte(nil), b.buf.Bytes()...))
}

func (b *Builder) Raw(p ...byte) *Builder {
	b.buf.Write(p)
	return b
}

func (b *Builder) Zeros(n int) *Builder {
	b.buf.Write(make([]byte, n))
	return b
}

func (b *Builder) U8(v uint8) *Builder {
	b.buf.WriteByte(v)
	return b
}

func (b *Builder) Bool(v bool) *Builder {
	if v {
		return b.U8(1)
	}
	return b.U8(0)
}

func (b *Builder) I16(v int16) *Builder {
	var p [2]byte
	binary.LittleEndian.PutUint16(p[:], uint16(v))
	b.buf.Write(p[:])
	return b
}

func (b *Builder) U32(v uint32) *Builder {
	var p [4]byte
	binary.LittleEndian.PutUint32(p[:], v)
	b.buf.Write(p[:])
	return b
}

func (b *Builder) I32(v int32) *Builder {
	return b.U32(uint32(v))
}

func (b *Builder) F32(v float32) *Builder {
	return b.U32(math.Float32bits(v))
}

func (b *Builder) Vec2(v emfx.Vec2) *Builder {
	return b.F32(v.X).F32(v.Y)
}

func (b *Builder) Vec3(v emfx.Vec3) *Builder {
	return b.F32(v.X).F32(v.Y).F32(v.Z)
}

func (b *Builder) Vec4(v emfx.Vec4) *Builder {
	return b.F32(v.X).F32(v.Y).F32(v.Z).F32(v.W)
}

func (b *Builder) Quat16(q emfx.Quaternion16) *Builder {
	return b.I16(q.X).I16(q.Y).I16(q.Z).I16(q.W)
}

func (b *Builder) Quat32(q emfx.Quaternion32) *Builder {
	return b.I32(q.X).I32(q.Y).I32(q.Z).I32(q.W)
}

func (b *Builder) Matrix44(m emfx.Matrix44) *Builder {
	return b.Vec4(m.Col1).Vec4(m.Col2).Vec4(m.Col3).Vec4(m.Pos)
}

// String writes a length-prefixed single-byte string.
func (b *Builder) String(s string) *Builder {
	b.I32(int32(len(s)))
	b.buf.WriteString(s)
	return b
}

// Header writes an 8-byte file header.
func (b *Builder) Header(magic string, major, minor uint8, bigEndian bool, extra uint8) *Builder {
	b.buf.WriteString(magic)
	return b.U8(major).U8(minor).Bool(bigEndian).U8(extra)
}

// Chunk writes a chunk descriptor whose length is the size of the body built by fn.
func (b *Builder) Chunk(chunkType, version int32, fn func(body *Builder)) *Builder {
	body := New()
	if fn != nil {
		fn(body)
	}
	return b.ChunkWithLength(chunkType, int32(body.Len()), version, body.Bytes())
}

// ChunkWithLength writes a descriptor with an explicit declared length followed by body.
func (b *Builder) ChunkWithLength(chunkType, length, version int32, body []byte) *Builder {
	b.I32(chunkType).I32(length).I32(version)
	b.buf.Write(body)
	return b
}
