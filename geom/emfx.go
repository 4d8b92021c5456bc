package geom

import (
	"math"

	"github.com/R-Hidayatullah/tos-parser/emfx"
)

// Compressed quaternion components are signed 16-bit fixed point in [-1, 1].
const quaternion16Scale = 32767

func FromVec3(v emfx.Vec3) *Vector3 {
	return &Vector3{X: v.X, Y: v.Y, Z: v.Z}
}

// FromQuaternion16 expands a compressed rotation and normalizes it.
func FromQuaternion16(q emfx.Quaternion16) *Quaternion {
	return (&Quaternion{
		X: Element(q.X) / quaternion16Scale,
		Y: Element(q.Y) / quaternion16Scale,
		Z: Element(q.Z) / quaternion16Scale,
		W: Element(q.W) / quaternion16Scale,
	}).Normalize()
}

// FromQuaternion32 reinterprets the stored 32-bit words as IEEE floats.
// The result is not normalized; callers check Len to detect garbage.
func FromQuaternion32(q emfx.Quaternion32) *Quaternion {
	f := func(v int32) Element { return math.Float32frombits(uint32(v)) }
	return &Quaternion{X: f(q.X), Y: f(q.Y), Z: f(q.Z), W: f(q.W)}
}

// FromMatrix44 converts a stored transform (three basis columns and a position) to a Matrix4.
func FromMatrix44(m emfx.Matrix44) *Matrix4 {
	return &Matrix4{
		m.Col1.X, m.Col1.Y, m.Col1.Z, 0,
		m.Col2.X, m.Col2.Y, m.Col2.Z, 0,
		m.Col3.X, m.Col3.Y, m.Col3.Z, 0,
		m.Pos.X, m.Pos.Y, m.Pos.Z, 1,
	}
}
