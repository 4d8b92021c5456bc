package geom

import (
	"math"
	"testing"

	"github.com/R-Hidayatullah/tos-parser/emfx"
)

func TestVector(t *testing.T) {
	zero := NewVector3(0, 0, 0)
	if zero.Len() != 0 {
		t.Error("len != 0")
	}
	if *zero.Normalize() != *NewVector3(1, 0, 0) {
		t.Error("Normalize shoud returns unit vector.", zero)
	}
	if *NewVector3(1, -2, 3).Scale(2) != *NewVector3(2, -4, 6) {
		t.Error("Vector3.Scale()")
	}
	if NewVector3(3, 0, 4).Len() != 5 {
		t.Error("Vector3.Len()")
	}

	q := NewQuaternion(0, 0, 0, 0)
	if *q.Normalize() != *NewQuaternion(0, 0, 0, 1) {
		t.Error("zero quaternion should become identity", q)
	}
	if *NewQuaternion(1, 2, 3, 4).Scale(-1) != *NewQuaternion(-1, -2, -3, -4) {
		t.Error("Vector4.Scale()")
	}
	if NewQuaternion(1, 2, 3, 4).Dot(NewQuaternion(1, 1, 1, 1)) != 10 {
		t.Error("Vector4.Dot()")
	}
}

func TestAxisAngleQuaternion(t *testing.T) {
	const eps = 0.000001
	h := Element(math.Sqrt(0.5))

	if !near4(NewAxisAngleQuaternion(NewVector3(0, 0, 5), math.Pi/2), NewQuaternion(0, 0, h, h), eps) {
		t.Error("axis should be normalized")
	}
	if !near4(NewAxisAngleQuaternion(NewVector3(1, 0, 0), -math.Pi/2), NewQuaternion(-h, 0, 0, h), eps) {
		t.Error("-90 degrees around x")
	}
	axis := NewVector3(0, 2, 0)
	NewAxisAngleQuaternion(axis, 1)
	if axis.Y != 2 {
		t.Error("axis modified", axis)
	}
}

func TestFromQuaternion16(t *testing.T) {
	const eps = 0.0001

	q := FromQuaternion16(emfx.Quaternion16{W: 32767})
	if *q != *NewQuaternion(0, 0, 0, 1) {
		t.Error("identity: ", q)
	}

	q = FromQuaternion16(emfx.Quaternion16{Z: 23170, W: 23170})
	if !near4(q, NewAxisAngleQuaternion(NewVector3(0, 0, 1), math.Pi/2), eps) {
		t.Error("90 degrees around z: ", q)
	}

	if *FromQuaternion16(emfx.Quaternion16{}) != *NewQuaternion(0, 0, 0, 1) {
		t.Error("zero quaternion should become identity")
	}
}

func TestFromQuaternion32(t *testing.T) {
	bits := func(f float32) int32 { return int32(math.Float32bits(f)) }
	q := FromQuaternion32(emfx.Quaternion32{X: bits(0.5), Y: bits(-0.5), Z: bits(0.5), W: bits(0.5)})
	if *q != *NewQuaternion(0.5, -0.5, 0.5, 0.5) {
		t.Error("float bits: ", q)
	}
}
