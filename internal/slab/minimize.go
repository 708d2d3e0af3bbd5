package slab

import (
	"log"
	"math"

	"github.com/AJPfleger/viperleed/internal/lattice"
)

// minCellAreaFloor is the smallest accepted area for a reduced cell, in
// square angstroms.
const minCellAreaFloor = 1.0

// FindMinimalCell searches for a 2D unit cell smaller than the current
// in-plane cell. eps is the in-plane tolerance, epsZ the height-clustering
// tolerance. Returns the minimal cell (vectors as rows) and whether it is
// smaller than the current one; when no reduction exists, the current
// in-plane cell is returned unchanged.
//
// The search works on a probe copy of the slab with c projected onto z and
// fresh sublayers. Candidate translations are the pairwise differences of
// in-plane positions within the lowest-occupancy sublayer, filtered by
// translation symmetry of the whole probe slab. Cell replacement is a
// single greedy pass: each accepted candidate immediately becomes part of
// the cell the next candidate is tested against. The area can never drop
// below originalArea/nAtoms (one atom per cell), nor below one square
// angstrom.
//
// With warnConvention true, a diagnostic is logged when keeping a diagonal
// cell forces the longer vector first, against the shorter-first
// convention.
func (s *Slab) FindMinimalCell(eps, epsZ float64, warnConvention bool) (lattice.Cell2, bool, error) {
	abst := s.Cell.AB()

	ts := s.Copy()
	if err := ts.ProjectCToZ(); err != nil {
		return abst, false, err
	}
	ts.SortByZ()
	if err := ts.CreateSublayers(epsZ); err != nil {
		return abst, false, err
	}

	lowOcc, err := ts.FewestAtomsSublayer()
	if err != nil {
		return abst, false, err
	}
	nAtoms := len(lowOcc.AtomIdx)
	if nAtoms < 2 {
		return abst, false, nil
	}

	plist := make([][2]float64, nAtoms)
	for k, ai := range lowOcc.AtomIdx {
		plist[k] = [2]float64{ts.Atoms[ai].Cart[0], ts.Atoms[ai].Cart[1]}
	}
	var tvecs [][2]float64
	for i := 0; i < len(plist); i++ {
		for j := i + 1; j < len(plist); j++ {
			v := [2]float64{plist[i][0] - plist[j][0], plist[i][1] - plist[j][1]}
			ok, err := ts.IsTranslationSymmetric([3]float64{v[0], v[1], 0}, eps, true, nil)
			if err != nil {
				return abst, false, err
			}
			if ok {
				tvecs = append(tvecs, v)
			}
		}
	}
	if len(tvecs) == 0 {
		return abst, false, nil
	}

	// Greedy replacement: swap one cell vector for a candidate whenever
	// that shrinks the area without dropping below one atom per cell.
	mincell := abst
	mincellArea := mincell.Area()
	smaller := false
	smallestArea := mincellArea / float64(nAtoms)
	if smallestArea < minCellAreaFloor {
		smallestArea = minCellAreaFloor
	}
	margin := eps * eps
	for _, vec := range tvecs {
		tcell := lattice.Cell2{mincell[0], vec}
		if a := tcell.Area(); a >= smallestArea-margin && a < mincellArea-margin {
			mincell, mincellArea, smaller = tcell, a, true
			continue
		}
		tcell = lattice.Cell2{mincell[1], vec}
		if a := tcell.Area(); a >= smallestArea-margin && a < mincellArea-margin {
			mincell, mincellArea, smaller = tcell, a, true
		}
	}
	if !smaller {
		return abst, false, nil
	}

	mincell, _ = lattice.Reduce(mincell)
	mincell = applyCellConventions(mincell, eps, warnConvention)
	return mincell, true, nil
}

// applyCellConventions normalizes a reduced cell: prefer a diagonal over an
// off-diagonal matrix, positive diagonal entries, the shorter vector first
// (except when that would break a diagonal form), and right-handedness.
func applyCellConventions(cell lattice.Cell2, eps float64, warnConvention bool) lattice.Cell2 {
	if math.Abs(cell[0][0]) < eps && math.Abs(cell[1][1]) < eps {
		cell[0], cell[1] = cell[1], cell[0]
	}
	diagonal := math.Abs(cell[1][0]) < eps && math.Abs(cell[0][1]) < eps
	if diagonal {
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				cell[i][j] = math.Abs(cell[i][j])
			}
		}
	}
	if lattice.Norm(cell[0]) > lattice.Norm(cell[1])+eps {
		if diagonal {
			if warnConvention {
				log.Printf("unit cell orientation does not follow convention: to keep the superlattice matrix diagonal, the first bulk vector must be larger than the second; consider swapping the unit cell vectors")
			}
		} else {
			cell = lattice.Mat2{{0, 1}, {-1, 0}}.MulCell(cell)
		}
	}
	if lattice.Angle(cell[0], cell[1]) < 0 {
		cell = lattice.Mat2{{1, 0}, {0, -1}}.MulCell(cell)
	}
	return cell
}

// MinimalCell returns the minimal in-plane unit cell, or ErrAlreadyMinimal
// when the current cell cannot be reduced.
func (s *Slab) MinimalCell(eps, epsZ float64) (lattice.Cell2, error) {
	cell, smaller, err := s.FindMinimalCell(eps, epsZ, false)
	if err != nil {
		return cell, err
	}
	if !smaller {
		return cell, ErrAlreadyMinimal
	}
	return cell, nil
}
