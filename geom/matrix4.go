package geom

import "math"

// column-major matrix
type Matrix4 [16]Element

// Det returns the determinant of the linear part of an affine matrix.
func (m *Matrix4) Det() float32 {
	return m[0]*(m[5]*m[10]-m[9]*m[6]) - m[4]*(m[1]*m[10]-m[9]*m[2]) + m[8]*(m[1]*m[6]-m[5]*m[2])
}

// Decompose splits an affine matrix into translation, rotation and scale.
// A negative determinant flips the sign of the X scale.
func (m *Matrix4) Decompose() (*Vector3, *Quaternion, *Vector3) {
	pos := &Vector3{X: m[12], Y: m[13], Z: m[14]}
	scale := &Vector3{
		X: (&Vector3{m[0], m[1], m[2]}).Len(),
		Y: (&Vector3{m[4], m[5], m[6]}).Len(),
		Z: (&Vector3{m[8], m[9], m[10]}).Len(),
	}
	if m.Det() < 0 {
		scale.X = -scale.X
	}
	if scale.X == 0 || scale.Y == 0 || scale.Z == 0 {
		return pos, &Quaternion{W: 1}, scale
	}
	var (
		m00, m10, m20 = m[0] / scale.X, m[1] / scale.X, m[2] / scale.X
		m01, m11, m21 = m[4] / scale.Y, m[5] / scale.Y, m[6] / scale.Y
		m02, m12, m22 = m[8] / scale.Z, m[9] / scale.Z, m[10] / scale.Z
	)
	q := &Quaternion{}
	if tr := m00 + m11 + m22; tr > 0 {
		s := Element(0.5 / math.Sqrt(float64(tr+1)))
		q.W = 0.25 / s
		q.X = (m21 - m12) * s
		q.Y = (m02 - m20) * s
		q.Z = (m10 - m01) * s
	} else if m00 > m11 && m00 > m22 {
		s := Element(2 * math.Sqrt(float64(1+m00-m11-m22)))
		q.W = (m21 - m12) / s
		q.X = 0.25 * s
		q.Y = (m01 + m10) / s
		q.Z = (m02 + m20) / s
	} else if m11 > m22 {
		s := Element(2 * math.Sqrt(float64(1+m11-m00-m22)))
		q.W = (m02 - m20) / s
		q.X = (m01 + m10) / s
		q.Y = 0.25 * s
		q.Z = (m12 + m21) / s
	} else {
		s := Element(2 * math.Sqrt(float64(1+m22-m00-m11)))
		q.W = (m10 - m01) / s
		q.X = (m02 + m20) / s
		q.Y = (m12 + m21) / s
		q.Z = 0.25 * s
	}
	return pos, q.Normalize(), scale
}
