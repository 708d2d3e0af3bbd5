package slab

import (
	"math"

	"github.com/AJPfleger/viperleed/internal/lattice"
)

// gridIndex is a regular in-plane grid over Cartesian positions used for
// nearest-neighbor queries. Cells are keyed by Szudzik's pairing function
// over zigzag-encoded cell coordinates, which handles negative cells
// without collisions. Distances are evaluated in 3D; only the cell
// assignment is two-dimensional, which suits a slab geometry where the
// in-plane extent dominates.
type gridIndex struct {
	cellSize float64
	grid     map[int64][]int
	pts      [][3]float64
}

func newGridIndex(pts [][3]float64, cellSize float64) *gridIndex {
	gi := &gridIndex{
		cellSize: cellSize,
		grid:     make(map[int64][]int, len(pts)/4+1),
		pts:      pts,
	}
	for i, p := range pts {
		gi.grid[gi.cellID(p[0], p[1])] = append(gi.grid[gi.cellID(p[0], p[1])], i)
	}
	return gi
}

func pairCells(cx, cy int64) int64 {
	var a, b int64
	if cx >= 0 {
		a = 2 * cx
	} else {
		a = -2*cx - 1
	}
	if cy >= 0 {
		b = 2 * cy
	} else {
		b = -2*cy - 1
	}
	if a >= b {
		return a*a + a + b
	}
	return a + b*b
}

func (gi *gridIndex) cellID(x, y float64) int64 {
	return pairCells(
		int64(math.Floor(x/gi.cellSize)),
		int64(math.Floor(y/gi.cellSize)),
	)
}

// nearest returns the smallest 3D distance from q to an indexed point,
// skipping points closer than skipEps (the query point itself). Cells are
// scanned in growing rings. Any point in a cell of ring r+1 or beyond is
// at least r*cellSize away from the query, so the search stops once the
// best distance after scanning ring r cannot be beaten by an unscanned
// cell. The check must follow the scan: a point inside ring r can be as
// close as (r-1)*cellSize.
func (gi *gridIndex) nearest(q [3]float64, skipEps float64) float64 {
	cx := int64(math.Floor(q[0] / gi.cellSize))
	cy := int64(math.Floor(q[1] / gi.cellSize))
	best := math.Inf(1)
	for r := int64(0); ; r++ {
		found := false
		for dx := -r; dx <= r; dx++ {
			for dy := -r; dy <= r; dy++ {
				if max64(abs64(dx), abs64(dy)) != r {
					continue // interior cells were scanned in earlier rings
				}
				ids, ok := gi.grid[pairCells(cx+dx, cy+dy)]
				if !ok {
					continue
				}
				found = true
				for _, i := range ids {
					d := norm3(sub3(gi.pts[i], q))
					if d > skipEps && d < best {
						best = d
					}
				}
			}
		}
		if best <= float64(r)*gi.cellSize {
			return best
		}
		if !found && float64(r)*gi.cellSize > gi.spanGuard() {
			return best
		}
	}
}

// spanGuard bounds the ring search for queries far from all points.
func (gi *gridIndex) spanGuard() float64 {
	return float64(len(gi.grid)+2) * gi.cellSize * 2
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// NearestNeighbors returns, for every atom, the distance to its nearest
// neighbor under periodic boundary conditions, indexed like s.Atoms. The
// cell is expanded into a supercell of at least 3x3 original cells, grown
// further when the in-plane vectors have very different lengths, and each
// original atom is queried from a copy inside the supercell so that all
// periodic images are present around it.
func (s *Slab) NearestNeighbors() ([]float64, error) {
	if err := s.ensureCartesian(); err != nil {
		return nil, err
	}
	a := s.Cell.Col(0)
	b := s.Cell.Col(1)
	maxLength := math.Max(norm3(a), norm3(b))
	ni := math.Ceil(maxLength / norm3(a))
	nj := math.Ceil(maxLength / norm3(b))

	super, err := s.MakeSupercell([2][2]float64{
		{2*ni + 1, 0},
		{0, 2*nj + 1},
	})
	if err != nil {
		return nil, err
	}

	pts := make([][3]float64, len(super.Atoms))
	for i := range super.Atoms {
		pts[i] = super.Atoms[i].Cart
	}
	area := lattice.Cell2(s.Cell.AB()).Area()
	cellSize := math.Sqrt(area / float64(len(s.Atoms)))
	if cellSize <= 0 || math.IsNaN(cellSize) {
		cellSize = 1
	}
	gi := newGridIndex(pts, cellSize)

	// Query from the central copy of the original cell.
	shift := add3(scale3(a, ni), scale3(b, nj))
	dists := make([]float64, len(s.Atoms))
	for i := range s.Atoms {
		q := add3(s.Atoms[i].Cart, shift)
		dists[i] = gi.nearest(q, 1e-12)
	}
	return dists, nil
}
