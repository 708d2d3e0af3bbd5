package slab

import (
	"fmt"
	"math"
)

// MakeSupercell returns a copy of the slab with the in-plane unit cell
// transformed by the given integer-valued 2x2 matrix and the atoms
// replicated to fill it. Matrix entries may arrive as floats from upstream
// parsing; values further than 1e-6 from an integer yield
// ErrInvalidTransform.
//
// Replication happens along the original a and b directions with a
// diagonal repetition count factored from |det|: the larger matrix column
// picks which direction carries the bigger factor, and the factor is the
// largest divisor of |det| not exceeding the matrix maximum. For
// non-diagonal transforms this replicates a covering region; the final
// collapse is left to the caller, matching the way superlattice cells are
// assembled.
func (s *Slab) MakeSupercell(transform [2][2]float64) (*Slab, error) {
	var ti [2][2]int
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			r := math.Round(transform[i][j])
			if math.Abs(r-transform[i][j]) > 1e-6 {
				return nil, fmt.Errorf("%w: supercell transformation matrix contains non-integer elements",
					ErrInvalidTransform)
			}
			ti[i][j] = int(r)
		}
	}
	size := ti[0][0]*ti[1][1] - ti[0][1]*ti[1][0]
	if size < 0 {
		size = -size
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: supercell transformation matrix is singular", ErrInvalidTransform)
	}

	ts := s.Copy()
	if size > 1 {
		diag := factorSupercellDiag(ti, size)
		nOrig := len(ts.Atoms)
		for ai := 0; ai < nOrig; ai++ {
			for i := 0; i < diag[0]; i++ {
				for j := 0; j < diag[1]; j++ {
					if i == 0 && j == 0 {
						continue
					}
					ni := ts.duplicateAtom(ai)
					ts.Atoms[ni].Pos[0] += float64(i)
					ts.Atoms[ni].Pos[1] += float64(j)
				}
			}
		}
	}
	ts.UpdateElementCount()
	ts.ResetAtomOrigIdx()
	if err := ts.UpdateCartesian(true); err != nil {
		return nil, err
	}

	// New cell: U' = U·Tᵀ, so a' and b' are the integer combinations given
	// by the rows of T.
	tm := [3][3]float64{
		{transform[0][0], transform[1][0], 0},
		{transform[0][1], transform[1][1], 0},
		{0, 0, 1},
	}
	ts.Cell = UnitCell(matMul3([3][3]float64(ts.Cell), tm))
	if err := ts.UpdateFractional(); err != nil {
		return nil, err
	}
	if err := ts.UpdateCartesian(true); err != nil {
		return nil, err
	}
	return ts, nil
}

// factorSupercellDiag splits the supercell size into two repetition
// factors. The direction whose matrix column has the larger maximum takes
// the bigger factor, starting from the overall matrix maximum and
// decrementing until it divides the size; the floor of one keeps the loop
// finite for matrices with non-positive maxima.
func factorSupercellDiag(t [2][2]int, size int) [2]int {
	diag := [2]int{1, 1}
	longSide := 1
	if max2(t[0][0], t[1][0]) > max2(t[0][1], t[1][1]) {
		longSide = 0
	}
	f := max2(max2(t[0][0], t[0][1]), max2(t[1][0], t[1][1]))
	if f < 1 {
		f = 1
	}
	for size%f != 0 {
		f--
	}
	diag[longSide] = f
	diag[1-longSide] = size / f
	return diag
}

func max2(a, b int) int {
	if a > b {
		return a
	}
	return b
}
