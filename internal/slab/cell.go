package slab

import (
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/AJPfleger/viperleed/internal/lattice"
)

// UnitCell holds the lattice vectors a, b, c as the columns of a 3x3
// matrix, so Cell[i][j] is component i of vector j. The in-plane vectors
// a and b must have no out-of-plane (z) component; c may be oblique.
type UnitCell [3][3]float64

// IsZero reports whether no unit cell has been set.
func (u UnitCell) IsZero() bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if u[i][j] != 0 {
				return false
			}
		}
	}
	return true
}

func (u UnitCell) dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		u[0][0], u[0][1], u[0][2],
		u[1][0], u[1][1], u[1][2],
		u[2][0], u[2][1], u[2][2],
	})
}

func denseToCell(d *mat.Dense) UnitCell {
	var u UnitCell
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			u[i][j] = d.At(i, j)
		}
	}
	return u
}

// Det returns the determinant (signed volume) of the unit cell.
func (u UnitCell) Det() float64 {
	return mat.Det(u.dense())
}

// Inverse returns the inverse of the unit-cell matrix. Returns
// ErrDegenerateCell when the cell is singular or badly conditioned.
func (u UnitCell) Inverse() (UnitCell, error) {
	if u.IsZero() {
		return UnitCell{}, ErrUninitializedCell
	}
	var inv mat.Dense
	if err := inv.Inverse(u.dense()); err != nil {
		return UnitCell{}, fmt.Errorf("%w: %v", ErrDegenerateCell, err)
	}
	return denseToCell(&inv), nil
}

// MulVec returns the Cartesian vector U·v for a fractional vector v.
func (u UnitCell) MulVec(v [3]float64) [3]float64 {
	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = u[i][0]*v[0] + u[i][1]*v[1] + u[i][2]*v[2]
	}
	return out
}

// Col returns lattice vector j as a 3-vector.
func (u UnitCell) Col(j int) [3]float64 {
	return [3]float64{u[0][j], u[1][j], u[2][j]}
}

// SetCol replaces lattice vector j.
func (u *UnitCell) SetCol(j int, v [3]float64) {
	u[0][j], u[1][j], u[2][j] = v[0], v[1], v[2]
}

// AB returns the in-plane part of the cell with the 2D vectors a and b
// as rows, the layout used by the lattice package.
func (u UnitCell) AB() lattice.Cell2 {
	return lattice.Cell2{
		{u[0][0], u[1][0]},
		{u[0][1], u[1][1]},
	}
}

// SetAB replaces the in-plane components of a and b from the rows of ab.
func (u *UnitCell) SetAB(ab lattice.Cell2) {
	u[0][0], u[1][0] = ab[0][0], ab[0][1]
	u[0][1], u[1][1] = ab[1][0], ab[1][1]
}

// CheckABInPlane returns ErrInvalidUnitCell if the a or b vector has an
// out-of-plane (z) component. Layering and all symmetry checks require
// a and b to span the surface plane exactly.
func (u UnitCell) CheckABInPlane() error {
	if u[2][0] != 0 || u[2][1] != 0 {
		log.Printf("unit cell a and b vectors must not have an out-of-surface (z) component")
		return fmt.Errorf("%w: a and b must have no z component", ErrInvalidUnitCell)
	}
	return nil
}

// matMul3 returns a·b for 3x3 matrices.
func matMul3(a, b [3][3]float64) [3][3]float64 {
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return out
}

// invert3 inverts a general 3x3 matrix.
func invert3(m [3][3]float64) ([3][3]float64, error) {
	var inv mat.Dense
	if err := inv.Inverse(UnitCell(m).dense()); err != nil {
		return [3][3]float64{}, fmt.Errorf("%w: matrix not invertible: %v", ErrInvalidTransform, err)
	}
	return [3][3]float64(denseToCell(&inv)), nil
}

// isOrthogonal reports whether m·mᵀ is the identity within tolerance.
func isOrthogonal(m [3][3]float64, tol float64) bool {
	d := UnitCell(m).dense()
	var prod mat.Dense
	prod.Mul(d, d.T())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(prod.At(i, j)-want) > tol {
				return false
			}
		}
	}
	return true
}

func add3(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func sub3(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func scale3(a [3]float64, f float64) [3]float64 {
	return [3]float64{a[0] * f, a[1] * f, a[2] * f}
}

func dot3(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func norm3(a [3]float64) float64 {
	return math.Sqrt(dot3(a, a))
}

// wrap01 wraps x into [0, 1), matching the behaviour of a floored modulo.
func wrap01(x float64) float64 {
	m := math.Mod(x, 1)
	if m < 0 {
		m++
	}
	return m
}
