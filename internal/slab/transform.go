package slab

import (
	"fmt"
	"math"

	"github.com/AJPfleger/viperleed/internal/lattice"
)

// ApplyMatrixTransformation applies an orthogonal 3x3 transformation O to
// the unit cell and, through the unchanged fractional coordinates, to all
// Cartesian atom positions: U' = O·U, v' = O·v. This is a change of basis;
// contrast RotateAtoms and MirrorAtoms, which move the atoms but not the
// cell, and RotateUnitCell, which moves the cell but not the atoms.
//
// If the transformation changes the z components of the unit vectors,
// layers, sublayers, and the linked bulk slab are discarded; they refer to
// a z axis that no longer exists. Otherwise the same transformation is
// propagated to the bulk slab.
//
// Returns ErrInvalidTransform when m is not orthogonal.
func (s *Slab) ApplyMatrixTransformation(m [3][3]float64) error {
	if !isOrthogonal(m, 1e-8) {
		return fmt.Errorf("%w: matrix is not orthogonal, consider ApplyScaling", ErrInvalidTransform)
	}
	changesZ := math.Abs(m[2][0]) > 1e-8 || math.Abs(m[2][1]) > 1e-8 ||
		math.Abs(m[2][2]-1) > 1e-8

	u := matMul3(m, [3][3]float64(s.Cell))
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(u[i][j]) < 1e-5 {
				u[i][j] = 0
			}
		}
	}
	s.Cell = UnitCell(u)
	if err := s.UpdateCartesian(changesZ); err != nil {
		return err
	}

	if changesZ {
		s.Layers = nil
		s.SubLayers = nil
		s.LayersInitialized = false
	}
	if s.Kind == Bulk {
		return nil
	}
	if changesZ {
		s.BulkSlab = nil
	} else if s.BulkSlab != nil {
		return s.BulkSlab.ApplyMatrixTransformation(m)
	}
	return nil
}

// ApplyScaling rescales the unit-cell vectors: one factor for an isotropic
// scaling, or three factors applied along a, b, c in order. Atom fractional
// positions are unchanged, so the structure stretches with the cell. The
// scaling is propagated to the bulk slab and recorded on the modification
// stack as a right multiplication. Returns the applied scaling matrix.
//
// Returns ErrInvalidTransform for a factor count other than one or three,
// or when a factor would collapse a unit vector.
func (s *Slab) ApplyScaling(scaling ...float64) ([3][3]float64, error) {
	if len(scaling) != 1 && len(scaling) != 3 {
		return [3][3]float64{}, fmt.Errorf("%w: expected one or three scaling factors, got %d",
			ErrInvalidTransform, len(scaling))
	}
	if len(scaling) == 1 {
		scaling = []float64{scaling[0], scaling[0], scaling[0]}
	}
	for _, f := range scaling {
		if math.Abs(f) < 1e-5 {
			return [3][3]float64{}, fmt.Errorf("%w: cannot reduce unit vector to zero length",
				ErrInvalidTransform)
		}
	}
	sm := [3][3]float64{
		{scaling[0], 0, 0},
		{0, scaling[1], 0},
		{0, 0, scaling[2]},
	}
	s.Cell = UnitCell(matMul3([3][3]float64(s.Cell), sm))
	s.CellMods = append(s.CellMods, CellMod{Kind: CellModRMul, Mat: sm})
	if err := s.UpdateCartesian(scaling[2] != 1); err != nil {
		return sm, err
	}
	if s.BulkSlab != nil {
		if _, err := s.BulkSlab.ApplyScaling(scaling...); err != nil {
			return sm, err
		}
	}
	return sm, nil
}

// RotateAtoms rotates all atoms in-plane about the given Cartesian axis
// point by one step of an order-fold rotation. The unit cell stays fixed;
// fractional coordinates are refreshed from the rotated positions.
func (s *Slab) RotateAtoms(axis [2]float64, order int) error {
	if err := s.ensureCartesian(); err != nil {
		return err
	}
	m := lattice.RotationMatrixOrder(order)
	for i := range s.Atoms {
		p := [2]float64{s.Atoms[i].Cart[0] - axis[0], s.Atoms[i].Cart[1] - axis[1]}
		q := m.MulVec(p)
		s.Atoms[i].Cart[0] = q[0] + axis[0]
		s.Atoms[i].Cart[1] = q[1] + axis[1]
	}
	return s.UpdateFractional()
}

// MirrorAtoms reflects all atoms in-plane across the given plane, adding
// the half-lattice glide translation when glide is set. The unit cell
// stays fixed.
func (s *Slab) MirrorAtoms(pl SymPlane, glide bool) error {
	if err := s.ensureCartesian(); err != nil {
		return err
	}
	m := lattice.ReflectionMatrix(pl.Dir)
	var gv [2]float64
	if glide {
		gv = pl.GlideVector(s.Cell.AB())
	}
	for i := range s.Atoms {
		p := [2]float64{s.Atoms[i].Cart[0] - pl.Pos[0], s.Atoms[i].Cart[1] - pl.Pos[1]}
		q := m.MulVec(p)
		s.Atoms[i].Cart[0] = q[0] + pl.Pos[0] + gv[0]
		s.Atoms[i].Cart[1] = q[1] + pl.Pos[1] + gv[1]
	}
	return s.UpdateFractional()
}

// RotateUnitCell rotates the unit cell about the origin by one step of an
// order-fold rotation, leaving Cartesian atom positions fixed. Note that
// this turns the lattice in the opposite sense as RotateAtoms. The
// operation is recorded on the modification stack unless recordMod is
// false.
func (s *Slab) RotateUnitCell(order int, recordMod bool) error {
	if err := s.ensureCartesian(); err != nil {
		return err
	}
	m := lattice.RotationMatrixOrder(order)
	m3 := [3][3]float64{
		{m[0][0], m[0][1], 0},
		{m[1][0], m[1][1], 0},
		{0, 0, 1},
	}
	s.Cell = UnitCell(matMul3(m3, [3][3]float64(s.Cell)))
	if recordMod {
		s.CellMods = append(s.CellMods, CellMod{Kind: CellModLMul, Mat: m3})
	}
	return s.UpdateFractional()
}

// ShiftOriginXY translates all atoms in-plane by the given Cartesian
// shift and collapses back into the base cell. Used when moving a
// symmetry element onto the coordinate origin. The shift is recorded on
// the modification stack unless recordMod is false.
func (s *Slab) ShiftOriginXY(shift [2]float64, recordMod bool) error {
	if err := s.ensureCartesian(); err != nil {
		return err
	}
	for i := range s.Atoms {
		s.Atoms[i].Cart[0] += shift[0]
		s.Atoms[i].Cart[1] += shift[1]
	}
	if recordMod {
		s.CellMods = append(s.CellMods, CellMod{Kind: CellModAdd, Shift: shift})
	}
	return s.CollapseCartesian(false)
}

// ProjectCToZ makes the c vector perpendicular to the surface, keeping all
// Cartesian atom positions fixed by re-expressing them in the new basis.
// No-op when c is already along z.
func (s *Slab) ProjectCToZ() error {
	if s.Cell[0][2] == 0 && s.Cell[1][2] == 0 {
		return nil
	}
	if err := s.ensureCartesian(); err != nil {
		return err
	}
	s.Cell.SetCol(2, [3]float64{0, 0, s.Cell[2][2]})
	return s.CollapseCartesian(false)
}

// RevertUnitCell undoes unit-cell modifications recorded on the stack,
// newest first, restoring the corresponding atom coordinates. keep gives
// the number of stack entries to leave in place; zero reverts everything.
func (s *Slab) RevertUnitCell(keep int) error {
	if keep < 0 {
		keep = 0
	}
	if len(s.CellMods) <= keep {
		return nil
	}
	if err := s.ensureCartesian(); err != nil {
		return err
	}
	for i := len(s.CellMods) - 1; i >= keep; i-- {
		op := s.CellMods[i]
		switch op.Kind {
		case CellModAdd:
			for j := range s.Atoms {
				s.Atoms[j].Cart[0] -= op.Shift[0]
				s.Atoms[j].Cart[1] -= op.Shift[1]
			}
		case CellModLMul:
			inv, err := invert3(op.Mat)
			if err != nil {
				return err
			}
			s.Cell = UnitCell(matMul3(inv, [3][3]float64(s.Cell)))
		case CellModRMul:
			inv, err := invert3(op.Mat)
			if err != nil {
				return err
			}
			s.Cell = UnitCell(matMul3([3][3]float64(s.Cell), inv))
			// A right multiplication records a scaling, which left the
			// fractional positions untouched. Undoing it keeps them as
			// ground truth and recomputes the Cartesian positions, the
			// exact inverse of ApplyScaling.
			if err := s.UpdateCartesian(math.Abs(op.Mat[2][2]-1) > 1e-9); err != nil {
				return err
			}
			continue
		default:
			return fmt.Errorf("%w: unknown cell modification %q", ErrInvalidTransform, op.Kind)
		}
		if err := s.CollapseCartesian(false); err != nil {
			return err
		}
	}
	s.CellMods = s.CellMods[:keep]
	return nil
}
