// Package lattice provides two-dimensional lattice math shared by the slab
// geometry engine: vector and matrix primitives, rotation and reflection
// matrices, Minkowski-style basis reduction, and cell-shape classification.
//
// Convention: a Cell2 stores the two in-plane lattice vectors a and b as
// rows, matching the (a, b) layout used by the minimal-cell search.
package lattice

import "math"

// Cell2 is a 2D unit cell with lattice vectors a and b as rows.
type Cell2 [2][2]float64

// Mat2 is a 2x2 matrix in row-major order.
type Mat2 [2][2]float64

// Dot returns the dot product of two 2D vectors.
func Dot(v1, v2 [2]float64) float64 {
	return v1[0]*v2[0] + v1[1]*v2[1]
}

// Cross returns the z component of the cross product of two 2D vectors.
func Cross(v1, v2 [2]float64) float64 {
	return v1[0]*v2[1] - v1[1]*v2[0]
}

// Norm returns the Euclidean length of a 2D vector.
func Norm(v [2]float64) float64 {
	return math.Hypot(v[0], v[1])
}

// Angle returns the signed angle (radians) from v1 to v2, in (-pi, pi].
// A negative result means v2 lies clockwise of v1, i.e. (v1, v2) form a
// left-handed pair.
func Angle(v1, v2 [2]float64) float64 {
	return math.Atan2(Cross(v1, v2), Dot(v1, v2))
}

// Det returns the determinant of the cell, i.e. its signed area.
func (c Cell2) Det() float64 {
	return c[0][0]*c[1][1] - c[0][1]*c[1][0]
}

// Area returns the unsigned area spanned by the cell vectors.
func (c Cell2) Area() float64 {
	return math.Abs(c.Det())
}

// Det returns the determinant of the matrix.
func (m Mat2) Det() float64 {
	return m[0][0]*m[1][1] - m[0][1]*m[1][0]
}

// Inv returns the inverse of the matrix. The second return value is false
// when the matrix is singular.
func (m Mat2) Inv() (Mat2, bool) {
	d := m.Det()
	if d == 0 {
		return Mat2{}, false
	}
	return Mat2{
		{m[1][1] / d, -m[0][1] / d},
		{-m[1][0] / d, m[0][0] / d},
	}, true
}

// MulVec returns m times v.
func (m Mat2) MulVec(v [2]float64) [2]float64 {
	return [2]float64{
		m[0][0]*v[0] + m[0][1]*v[1],
		m[1][0]*v[0] + m[1][1]*v[1],
	}
}

// Mul returns m times n.
func (m Mat2) Mul(n Mat2) Mat2 {
	var out Mat2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			out[i][j] = m[i][0]*n[0][j] + m[i][1]*n[1][j]
		}
	}
	return out
}

// MulCell returns m applied to each cell vector, i.e. the cell with rows
// (m·a, m·b) read from the rows of m·cᵀ. Written out, row k of the result
// is sum_j m[k][j] * c[j].
func (m Mat2) MulCell(c Cell2) Cell2 {
	var out Cell2
	for k := 0; k < 2; k++ {
		for i := 0; i < 2; i++ {
			out[k][i] = m[k][0]*c[0][i] + m[k][1]*c[1][i]
		}
	}
	return out
}

// RotationMatrix returns the matrix for an in-plane rotation by the given
// angle (radians, counterclockwise).
func RotationMatrix(angle float64) Mat2 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat2{{c, -s}, {s, c}}
}

// RotationMatrixOrder returns the rotation matrix for one step of an
// order-fold rotation (angle 2*pi/order).
func RotationMatrixOrder(order int) Mat2 {
	return RotationMatrix(2 * math.Pi / float64(order))
}

// ReflectionMatrix returns the matrix reflecting across the line through
// the origin with the given direction.
func ReflectionMatrix(dir [2]float64) Mat2 {
	theta := math.Atan2(dir[1], dir[0])
	c, s := math.Cos(2*theta), math.Sin(2*theta)
	return Mat2{{c, s}, {s, -c}}
}
