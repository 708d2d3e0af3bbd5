package slab

import "fmt"

// UpdateCartesian computes Cartesian coordinates for all atoms from their
// fractional positions. x and y follow the unit cell directly; z is
// measured from the reference origin at the topmost atom and increases
// going from the vacuum into the solid. The sign flip lives here and in
// UpdateFractional only; no other code re-derives it.
//
// When updateOrigin is true (or no origin has been cached yet), the
// reference is recomputed as the Cartesian z of the current topmost atom;
// otherwise the cached origin is reused so that z stays referenced to a
// fixed physical plane while atoms move during iterative calculations.
func (s *Slab) UpdateCartesian(updateOrigin bool) error {
	if s.Cell.IsZero() {
		return ErrUninitializedCell
	}
	if len(s.Atoms) == 0 {
		s.cartDirty = false
		return nil
	}
	top := 0
	for i := range s.Atoms {
		if s.Atoms[i].Pos[2] > s.Atoms[top].Pos[2] {
			top = i
		}
	}
	topCart := s.Cell.MulVec(s.Atoms[top].Pos)
	if updateOrigin || !s.hasOrigin {
		s.TopAtomOriginZ = topCart[2]
		s.hasOrigin = true
	}
	for i := range s.Atoms {
		c := s.Cell.MulVec(s.Atoms[i].Pos)
		c[2] = s.TopAtomOriginZ - c[2]
		s.Atoms[i].Cart = c
	}
	s.cartDirty = false
	return nil
}

// UpdateFractional recomputes fractional positions from the Cartesian
// coordinates using the unit-cell inverse. It exactly inverts
// UpdateCartesian for the cached origin.
func (s *Slab) UpdateFractional() error {
	if s.Cell.IsZero() {
		return ErrUninitializedCell
	}
	if !s.hasOrigin {
		return fmt.Errorf("%w: no Cartesian origin cached", ErrUninitializedCell)
	}
	inv, err := s.Cell.Inverse()
	if err != nil {
		return err
	}
	for i := range s.Atoms {
		tp := s.Atoms[i].Cart
		tp[2] = s.TopAtomOriginZ - tp[2]
		s.Atoms[i].Pos = inv.MulVec(tp)
	}
	s.cartDirty = false
	return nil
}

// CollapseFractional wraps every atom's fractional position into [0, 1)
// along a and b. The c component is left untouched: a surface slab is not
// periodic out of plane.
func (s *Slab) CollapseFractional() {
	for i := range s.Atoms {
		s.Atoms[i].Pos[0] = wrap01(s.Atoms[i].Pos[0])
		s.Atoms[i].Pos[1] = wrap01(s.Atoms[i].Pos[1])
	}
	s.cartDirty = true
}

// CollapseCartesian moves atoms outside the parallelogram spanned by a
// and b back inside, refreshing both coordinate systems.
func (s *Slab) CollapseCartesian(updateOrigin bool) error {
	if err := s.UpdateFractional(); err != nil {
		return err
	}
	s.CollapseFractional()
	return s.UpdateCartesian(updateOrigin)
}
