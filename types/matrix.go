package types

import "golang.org/x/image/math/f32"

const floatCmpEpsilon = 1e-8

// A 4x4 matrix stored in row-major order. Points transform as column
// vectors: translation lives in the rightmost column.
type Mat4 f32.Mat4

// Create an identity matrix.
func Ident4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Create a translation matrix.
func Translate4(offset Vec3) Mat4 {
	return Mat4{
		1, 0, 0, offset[0],
		0, 1, 0, offset[1],
		0, 0, 1, offset[2],
		0, 0, 0, 1,
	}
}

// Create a scale matrix.
func Scale4(scale Vec3) Mat4 {
	return Mat4{
		scale[0], 0, 0, 0,
		0, scale[1], 0, 0,
		0, 0, scale[2], 0,
		0, 0, 0, 1,
	}
}

// Create a rotation matrix from XYZ euler angles (in radians).
func Rotate4(angles Vec3) Mat4 {
	qx := QuatFromAxisAngle(Vec3{1, 0, 0}, angles[0])
	qy := QuatFromAxisAngle(Vec3{0, 1, 0}, angles[1])
	qz := QuatFromAxisAngle(Vec3{0, 0, 1}, angles[2])
	return qz.Mul(qy).Mul(qx).Normalize().Mat4()
}

// Multiply two 4x4 matrices.
func (m Mat4) Mul4(m2 Mat4) Mat4 {
	var out Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[row*4+k] * m2[k*4+col]
			}
			out[row*4+col] = sum
		}
	}
	return out
}

// Multiply a 4x4 matrix with a 4 component vector.
func (m Mat4) Mul4x1(v Vec4) Vec4 {
	return Vec4{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3]*v[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7]*v[3],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11]*v[3],
		m[12]*v[0] + m[13]*v[1] + m[14]*v[2] + m[15]*v[3],
	}
}

// Transform a point by the matrix, applying the translation column.
func (m Mat4) TransformPoint(v Vec3) Vec3 {
	out := m.Mul4x1(v.Vec4(1))
	return out.Vec3()
}
