package slab

import (
	"math"

	"github.com/AJPfleger/viperleed/internal/lattice"
)

// SymPlane describes a candidate mirror/glide plane: a point on the
// plane, its in-plane direction, and the lattice direction parallel to
// it (used to build glide vectors).
type SymPlane struct {
	// Pos is a Cartesian point on the plane.
	Pos [2]float64
	// Dir is the in-plane direction of the plane, normalized.
	Dir [2]float64
	// Par is the low-index lattice direction parallel to Dir.
	Par [2]int
}

// symPlaneCandidates are the low-index lattice directions tried when
// matching a plane direction to the lattice.
var symPlaneCandidates = [][2]int{
	{1, 0}, {0, 1}, {1, 1}, {1, -1}, {2, 1}, {1, 2},
}

// NewSymPlane builds a SymPlane through pos along dir, identifying the
// low-index lattice direction parallel to dir for the in-plane cell ab
// (vectors as rows).
func NewSymPlane(pos, dir [2]float64, ab lattice.Cell2, eps float64) SymPlane {
	n := lattice.Norm(dir)
	if n > 0 {
		dir[0] /= n
		dir[1] /= n
	}
	pl := SymPlane{Pos: pos, Dir: dir}
	for _, par := range symPlaneCandidates {
		v := [2]float64{
			float64(par[0])*ab[0][0] + float64(par[1])*ab[1][0],
			float64(par[0])*ab[0][1] + float64(par[1])*ab[1][1],
		}
		nv := lattice.Norm(v)
		if nv == 0 {
			continue
		}
		cross := math.Abs(lattice.Cross(dir, [2]float64{v[0] / nv, v[1] / nv}))
		if cross < eps {
			pl.Par = par
			break
		}
	}
	return pl
}

// GlideVector returns the half-period translation along the plane's
// lattice direction, for glide operations.
func (pl SymPlane) GlideVector(ab lattice.Cell2) [2]float64 {
	return [2]float64{
		(float64(pl.Par[0])*ab[0][0] + float64(pl.Par[1])*ab[1][0]) / 2,
		(float64(pl.Par[0])*ab[0][1] + float64(pl.Par[1])*ab[1][1]) / 2,
	}
}

// collapse2 maps 2D Cartesian points into the base cell, returning both
// the wrapped fractional and the wrapped Cartesian coordinates.
func collapse2(ab lattice.Cell2, inv lattice.Mat2, pts [][2]float64) (frac, cart [][2]float64) {
	frac = make([][2]float64, len(pts))
	cart = make([][2]float64, len(pts))
	for i, p := range pts {
		f := inv.MulVec(p)
		f[0] = wrap01(f[0])
		f[1] = wrap01(f[1])
		frac[i] = f
		// Cartesian from wrapped fractional: rows of ab are a and b.
		cart[i] = [2]float64{
			f[0]*ab[0][0] + f[1]*ab[1][0],
			f[0]*ab[0][1] + f[1]*ab[1][1],
		}
	}
	return frac, cart
}

// augmentPeriodic2 extends the comparison set with the periodic images of
// points near a cell edge or corner, so that wrap-around matches are not
// missed. Nearness is judged per direction with eps scaled by the vector
// length; the distance comparison itself stays isotropic.
func augmentPeriodic2(frac, cart [][2]float64, ab lattice.Cell2, releps [2]float64) [][2]float64 {
	out := append([][2]float64(nil), cart...)
	for i, f := range frac {
		var images [][2]float64
		for j := 0; j < 2; j++ {
			if math.Abs(f[j]) < releps[j] {
				images = append(images, [2]float64{cart[i][0] + ab[j][0], cart[i][1] + ab[j][1]})
			}
			if math.Abs(f[j]-1) < releps[j] {
				images = append(images, [2]float64{cart[i][0] - ab[j][0], cart[i][1] - ab[j][1]})
			}
		}
		if len(images) == 2 {
			// Corner: add the diagonally opposed image.
			images = append(images, [2]float64{
				images[0][0] + images[1][0] - cart[i][0],
				images[0][1] + images[1][1] - cart[i][1],
			})
		}
		out = append(out, images...)
	}
	return out
}

func minDist2(p [2]float64, set [][2]float64) float64 {
	best := math.Inf(1)
	for _, q := range set {
		d := math.Hypot(p[0]-q[0], p[1]-q[1])
		if d < best {
			best = d
		}
	}
	return best
}

// inPlaneSetup validates the cell and sublayers for the per-sublayer
// symmetry checks and returns the shared in-plane quantities.
func (s *Slab) inPlaneSetup() (ab lattice.Cell2, inv lattice.Mat2, lens [2]float64, err error) {
	if err = s.Cell.CheckABInPlane(); err != nil {
		return ab, inv, lens, err
	}
	if len(s.SubLayers) == 0 {
		return ab, inv, lens, ErrMissingSublayers
	}
	if err = s.ensureCartesian(); err != nil {
		return ab, inv, lens, err
	}
	ab = s.Cell.AB()
	m, ok := lattice.Mat2(ab).Inv()
	if !ok {
		return ab, inv, lens, ErrDegenerateCell
	}
	// The lattice cell has vectors as rows; fractional coordinates are
	// obtained from column-vector multiplication, so use the transposed
	// inverse.
	inv = lattice.Mat2{{m[0][0], m[1][0]}, {m[0][1], m[1][1]}}
	lens = [2]float64{lattice.Norm(ab[0]), lattice.Norm(ab[1])}
	return ab, inv, lens, nil
}

// isSymmetricUnder tests, sublayer by sublayer, whether the slab maps
// onto itself under the in-plane operation p -> op·(p - pivot) + pivot
// + shift. Every transformed point must coincide, within eps, with an
// original point or one of its periodic images.
func (s *Slab) isSymmetricUnder(op lattice.Mat2, pivot, shift [2]float64, eps float64) (bool, error) {
	ab, inv, lens, err := s.inPlaneSetup()
	if err != nil {
		return false, err
	}
	releps := [2]float64{eps / lens[0], eps / lens[1]}
	for si := range s.SubLayers {
		sl := &s.SubLayers[si]
		pts := make([][2]float64, len(sl.AtomIdx))
		for k, ai := range sl.AtomIdx {
			pts[k] = [2]float64{s.Atoms[ai].Cart[0], s.Atoms[ai].Cart[1]}
		}
		oriFrac, oriCart := collapse2(ab, inv, pts)
		trans := make([][2]float64, len(oriCart))
		for k, p := range oriCart {
			q := op.MulVec([2]float64{p[0] - pivot[0], p[1] - pivot[1]})
			trans[k] = [2]float64{q[0] + pivot[0] + shift[0], q[1] + pivot[1] + shift[1]}
		}
		_, transCart := collapse2(ab, inv, trans)
		cmpSet := augmentPeriodic2(oriFrac, oriCart, ab, releps)
		for _, p := range transCart {
			if minDist2(p, cmpSet) > eps {
				return false, nil
			}
		}
	}
	return true, nil
}

// IsMirrorSymmetric reports whether the slab is equivalent to itself
// under a mirror (or, with glide set, glide) operation at the given
// plane. The check runs independently on every sublayer: the symmetry
// must hold layer by layer, not just in aggregate.
func (s *Slab) IsMirrorSymmetric(pl SymPlane, eps float64, glide bool) (bool, error) {
	mir := lattice.ReflectionMatrix(pl.Dir)
	var shift [2]float64
	if glide {
		shift = pl.GlideVector(s.Cell.AB())
	}
	return s.isSymmetricUnder(mir, pl.Pos, shift, eps)
}

// IsRotationSymmetric reports whether the slab is equivalent to itself
// under an order-fold rotation about the in-plane axis point.
func (s *Slab) IsRotationSymmetric(axis [2]float64, order int, eps float64) (bool, error) {
	return s.isSymmetricUnder(lattice.RotationMatrixOrder(order), axis, [2]float64{}, eps)
}

// IsTranslationSymmetric2D reports whether the slab is equivalent to
// itself under the given in-plane Cartesian translation.
func (s *Slab) IsTranslationSymmetric2D(tv [2]float64, eps float64) (bool, error) {
	return s.IsTranslationSymmetric([3]float64{tv[0], tv[1], 0}, eps, true, nil)
}

// IsTranslationSymmetric reports whether the slab is equivalent to itself
// under the Cartesian translation tv.
//
// With zPeriodic true (bulk reference cell) the c vector is treated as a
// true unit-cell vector and the comparison wraps in all three periodic
// directions, including the corner images formed from up to three of
// them. With zPeriodic false (surface), atoms translated outside zRange
// (or, if zRange is nil, outside the slab's own z extent) are excluded
// from the comparison: translation symmetry then holds as far as is
// visible within the slab thickness. zRange is given in the Cartesian z
// convention of the atoms.
func (s *Slab) IsTranslationSymmetric(tv [3]float64, eps float64, zPeriodic bool, zRange *[2]float64) (bool, error) {
	if err := s.Cell.CheckABInPlane(); err != nil {
		return false, err
	}
	if err := s.ensureCartesian(); err != nil {
		return false, err
	}
	// Work in a frame with the c vector mirrored down, so that wrapping
	// along c behaves like the in-plane directions.
	uc := s.Cell
	for i := 0; i < 3; i++ {
		uc[i][2] = -uc[i][2]
	}
	inv, err := uc.Inverse()
	if err != nil {
		return false, err
	}
	vecs := [3][3]float64{uc.Col(0), uc.Col(1), uc.Col(2)}
	releps := [3]float64{
		eps / norm3(vecs[0]), eps / norm3(vecs[1]), eps / norm3(vecs[2]),
	}
	shift := tv
	shift[2] = -shift[2]

	// Unlike the in-plane operations, this check cannot be done
	// sublayer-internal: a 3D translation moves atoms between heights.
	n := len(s.Atoms)
	oriFrac := make([][3]float64, n)
	oriCart := make([][3]float64, n)
	for i := range s.Atoms {
		p := s.Atoms[i].Cart
		p[2] = -p[2]
		f := inv.MulVec(p)
		f = [3]float64{wrap01(f[0]), wrap01(f[1]), wrap01(f[2])}
		oriFrac[i] = f
		oriCart[i] = uc.MulVec(f)
	}

	minZ, maxZ := math.Inf(1), math.Inf(-1)
	if zRange != nil {
		lo, hi := -zRange[0], -zRange[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		minZ, maxZ = lo-eps, hi+eps
	} else {
		for _, p := range oriCart {
			minZ = math.Min(minZ, p[2])
			maxZ = math.Max(maxZ, p[2])
		}
		minZ -= eps
		maxZ += eps
	}

	trans := make([][3]float64, 0, n)
	for _, p := range oriCart {
		q := add3(p, shift)
		if !zPeriodic && (q[2] < minZ || q[2] > maxZ) {
			continue
		}
		f := inv.MulVec(q)
		f = [3]float64{wrap01(f[0]), wrap01(f[1]), wrap01(f[2])}
		trans = append(trans, uc.MulVec(f))
	}

	cmpSet := append([][3]float64(nil), oriCart...)
	for i, f := range oriFrac {
		var images [][3]float64
		for j := 0; j < 3; j++ {
			if math.Abs(f[j]) < releps[j] {
				images = append(images, add3(oriCart[i], vecs[j]))
			}
			if math.Abs(f[j]-1) < releps[j] {
				images = append(images, sub3(oriCart[i], vecs[j]))
			}
		}
		switch len(images) {
		case 2:
			images = append(images, sub3(add3(images[0], images[1]), oriCart[i]))
		case 3:
			// Three independent periodic directions: add the pairwise
			// and the triple corner images.
			for a := 0; a < 3; a++ {
				for b := a + 1; b < 3; b++ {
					images = append(images, sub3(add3(images[a], images[b]), oriCart[i]))
				}
			}
			triple := add3(add3(images[0], images[1]), images[2])
			triple = sub3(triple, scale3(oriCart[i], 2))
			images = append(images, triple)
		}
		cmpSet = append(cmpSet, images...)
	}

	for _, p := range trans {
		best := math.Inf(1)
		for _, q := range cmpSet {
			d := norm3(sub3(p, q))
			if d < best {
				best = d
			}
		}
		if best > eps {
			return false, nil
		}
	}
	return true, nil
}
