package slab

import (
	"fmt"
	"math"

	"github.com/AJPfleger/viperleed/internal/lattice"
)

// BulkRepeat describes how one bulk unit repeats into the next. Either an
// explicit Cartesian repeat vector, a plain z distance, or neither, in
// which case the distance is derived from the spacing between the lowest
// non-bulk layer and the top bulk layer.
type BulkRepeat struct {
	// Vec is the explicit repeat vector, or nil. A vector pointing from
	// the surface into the bulk (negative z) is accepted and flipped.
	Vec *[3]float64
	// Z is the repeat distance along z, used when Vec is nil. Zero means
	// derive the distance from the layer spacing.
	Z float64
}

// AddBulkLayers returns a copy of the slab with n bulk units appended at
// the bottom, together with the arena indices of the added atoms in the
// returned slab. The c vector is stretched to cover the added thickness;
// existing atoms shift up along c while the new atoms take the positions
// of the old bulk unit displaced by the repeat vector.
func (s *Slab) AddBulkLayers(rep BulkRepeat, n int) (*Slab, []int, error) {
	if !s.LayersInitialized {
		return nil, nil, ErrMissingLayers
	}
	ts := s.Copy()
	var newIdx []int
	duplicated := make(map[int]bool) // keyed by OrigIdx, stable across sorts
	zdiff := 0.0

	for it := 0; it < n; it++ {
		var bulkLayers []int
		for li := range ts.Layers {
			if ts.Layers[li].IsBulk {
				bulkLayers = append(bulkLayers, li)
			}
		}
		if len(bulkLayers) == 0 {
			return nil, nil, fmt.Errorf("%w: no bulk layers defined", ErrMissingLayers)
		}

		var bulkc [3]float64
		if rep.Vec != nil {
			bulkc = *rep.Vec
			if bulkc[2] < 0 {
				// Vector likely given from surface into bulk; flip it.
				bulkc = scale3(bulkc, -1)
			}
		} else {
			cvec := ts.Cell.Col(2)
			if zdiff == 0 && rep.Z == 0 {
				// Assume the interlayer distance from the lowest non-bulk
				// layer to the top bulk layer repeats between bulk units.
				top := bulkLayers[0]
				if top == 0 {
					return nil, nil, fmt.Errorf("%w: no layer above the bulk to derive the repeat from",
						ErrMissingLayers)
				}
				zdiff = ts.Layers[bulkLayers[len(bulkLayers)-1]].CartBotZ -
					ts.Layers[top-1].CartBotZ
			} else if zdiff == 0 {
				zdiff = rep.Z
			}
			bulkc = scale3(cvec, zdiff/cvec[2])
		}

		if err := ts.ensureCartesian(); err != nil {
			return nil, nil, err
		}
		cfact := (ts.Cell[2][2] + math.Abs(bulkc[2])) / ts.Cell[2][2]
		ts.Cell.SetCol(2, scale3(ts.Cell.Col(2), cfact))
		bulkc[2] = -bulkc[2]

		// Split the repeat vector into parts parallel and perpendicular to
		// the (stretched) c vector: old atoms shift up along c, new atoms
		// take the perpendicular offset, so the cell stays the same shape.
		cvec := ts.Cell.Col(2)
		cdir := scale3(cvec, 1/dot3(cvec, cvec))
		proj := scale3(cdir, dot3(bulkc, cvec))
		perp := sub3(bulkc, proj)

		nOrig := len(ts.Atoms)
		var added []int
		for ai := 0; ai < nOrig; ai++ {
			li := ts.Atoms[ai].LayerIdx
			if li >= 0 && ts.Layers[li].IsBulk && !duplicated[ts.Atoms[ai].OrigIdx] {
				duplicated[ts.Atoms[ai].OrigIdx] = true
				ni := ts.duplicateAtom(ai)
				added = append(added, ni)
				newIdx = append(newIdx, ni)
			}
			ts.Atoms[ai].Cart = add3(ts.Atoms[ai].Cart, proj)
		}
		for _, ni := range added {
			ts.Atoms[ni].Cart = sub3(ts.Atoms[ni].Cart, perp)
		}
		if err := ts.CollapseCartesian(true); err != nil {
			return nil, nil, err
		}
	}
	// Identify the added atoms by OrigIdx before the final sort reorders
	// the arena.
	addedOrig := make(map[int]bool, len(newIdx))
	for _, ni := range newIdx {
		addedOrig[ts.Atoms[ni].OrigIdx] = true
	}
	ts.SortOriginal()
	newIdx = newIdx[:0]
	for i := range ts.Atoms {
		if addedOrig[ts.Atoms[i].OrigIdx] {
			newIdx = append(newIdx, i)
		}
	}
	return ts, newIdx, nil
}

// IsEquivalent reports whether two slabs describe the same structure: both
// are collapsed to the base cell and compared sublayer by sublayer, with
// every atom required to match one in the partner sublayer within eps,
// allowing for periodic images near cell edges and corners.
func (s *Slab) IsEquivalent(other *Slab, eps float64) (bool, error) {
	if len(s.SubLayers) == 0 || len(other.SubLayers) == 0 {
		return false, ErrMissingSublayers
	}
	s1, s2 := s.Copy(), other.Copy()
	if err := s1.CollapseCartesian(false); err != nil {
		return false, err
	}
	if err := s2.CollapseCartesian(false); err != nil {
		return false, err
	}
	sl1 := sublayersByZ(s1)
	sl2 := sublayersByZ(s2)
	if len(sl1) != len(sl2) {
		return false, nil
	}

	ab := s.Cell.AB()
	releps := [2]float64{
		eps / lattice.Norm(ab[0]),
		eps / lattice.Norm(ab[1]),
	}
	for i := range sl1 {
		a, b := sl1[i], sl2[i]
		if len(a.AtomIdx) != len(b.AtomIdx) ||
			math.Abs(a.CartBotZ-b.CartBotZ) > eps ||
			s1.Atoms[a.AtomIdx[0]].Element != s2.Atoms[b.AtomIdx[0]].Element {
			return false, nil
		}
		for _, ai := range a.AtomIdx {
			at1 := &s1.Atoms[ai]
			complist := [][2]float64{{at1.Cart[0], at1.Cart[1]}}
			for j := 0; j < 2; j++ {
				if math.Abs(at1.Pos[j]) < releps[j] {
					complist = append(complist, [2]float64{
						at1.Cart[0] + ab[j][0], at1.Cart[1] + ab[j][1],
					})
				}
				if math.Abs(at1.Pos[j]-1) < releps[j] {
					complist = append(complist, [2]float64{
						at1.Cart[0] - ab[j][0], at1.Cart[1] - ab[j][1],
					})
				}
			}
			if len(complist) == 3 {
				complist = append(complist, [2]float64{
					complist[1][0] + complist[2][0] - complist[0][0],
					complist[1][1] + complist[2][1] - complist[0][1],
				})
			}
			found := false
			for _, bi := range b.AtomIdx {
				at2 := &s2.Atoms[bi]
				for _, p := range complist {
					if math.Hypot(p[0]-at2.Cart[0], p[1]-at2.Cart[1]) < eps {
						found = true
						break
					}
				}
				if found {
					break
				}
			}
			if !found {
				return false, nil
			}
		}
	}
	return true, nil
}

// FindBulkRepeat searches a bulk slab for the shortest repeat vector: an
// out-of-plane translation under which the slab is 3D translation
// symmetric within eps. Candidates are the offsets from the topmost
// sublayer to every deeper sublayer of the same element, at least epsZ
// apart in z. The second return value is false when no repeat shorter
// than the c vector exists.
func FindBulkRepeat(b *Slab, eps, epsZ float64) ([3]float64, bool, error) {
	if len(b.SubLayers) == 0 {
		return [3]float64{}, false, ErrMissingSublayers
	}
	if err := b.ensureCartesian(); err != nil {
		return [3]float64{}, false, err
	}
	p0, err := b.SubLayers[0].CartPos(b)
	if err != nil {
		return [3]float64{}, false, err
	}
	e0, err := b.SubLayers[0].Element(b)
	if err != nil {
		return [3]float64{}, false, err
	}
	var best [3]float64
	found := false
	for i := 1; i < len(b.SubLayers); i++ {
		el, err := b.SubLayers[i].Element(b)
		if err != nil {
			return [3]float64{}, false, err
		}
		if el != e0 {
			continue
		}
		p, err := b.SubLayers[i].CartPos(b)
		if err != nil {
			return [3]float64{}, false, err
		}
		tv := sub3(p, p0)
		if math.Abs(tv[2]) <= epsZ {
			continue
		}
		ok, err := b.IsTranslationSymmetric(tv, eps, true, nil)
		if err != nil {
			return [3]float64{}, false, err
		}
		if ok && (!found || norm3(tv) < norm3(best)) {
			best = tv
			found = true
		}
	}
	return best, found, nil
}

// sublayersByZ returns the slab's sublayers ordered by ascending reference
// z, without touching the slab's own ordering.
func sublayersByZ(s *Slab) []*SubLayer {
	out := make([]*SubLayer, len(s.SubLayers))
	for i := range s.SubLayers {
		out[i] = &s.SubLayers[i]
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].CartBotZ > out[j].CartBotZ; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
