package slab

// Layer is a z-ordered group of atoms between two height cutoffs. Atoms
// are referenced by index into the slab's atom arena; exactly one layer
// owns each atom at a time.
type Layer struct {
	// AtomIdx indexes the member atoms in Slab.Atoms.
	AtomIdx []int

	// Num is the zero-based index of this layer within its slab.
	// Layer 0 is the one closest to the solid/vacuum interface.
	Num int

	// IsBulk marks layers with bulk character.
	IsBulk bool

	// CartOrigin is the point where a plane through the topmost atom of
	// this layer intersects the c vector of the unit cell. Its z is the
	// Cartesian z of the topmost atom. Refreshed by UpdatePosition.
	CartOrigin [3]float64

	// CartBotZ is the Cartesian z of the bottom-most atom in the layer.
	// Refreshed by UpdatePosition.
	CartBotZ float64
}

// NAtoms returns the number of atoms in the layer.
func (l *Layer) NAtoms() int { return len(l.AtomIdx) }

// UpdatePosition recomputes CartOrigin and CartBotZ from the member
// atoms of the layer. Positions are cached rather than derived on the
// fly because atoms may move during iterative calculations while the
// layer reference plane must stay fixed.
func (l *Layer) UpdatePosition(s *Slab) error {
	if len(l.AtomIdx) == 0 {
		return ErrLayerHasNoAtoms
	}
	top, bot := l.AtomIdx[0], l.AtomIdx[0]
	for _, ai := range l.AtomIdx[1:] {
		if s.Atoms[ai].Pos[2] > s.Atoms[top].Pos[2] {
			top = ai
		}
		if s.Atoms[ai].Pos[2] < s.Atoms[bot].Pos[2] {
			bot = ai
		}
	}
	l.CartBotZ = s.Atoms[bot].Cart[2]
	cVec := s.Cell.Col(2)
	l.CartOrigin = scale3(cVec, s.Atoms[top].Pos[2])
	// x and y lie on the c vector; z comes directly from the topmost
	// atom since Cartesian z runs opposite to fractional z.
	l.CartOrigin[2] = s.Atoms[top].Cart[2]
	return nil
}

// SubLayer is a Layer restricted to a single chemical element and a
// single z-height cluster (within the eps_z used to create it). Its
// reference position and element are those of its first atom.
type SubLayer struct {
	Layer
}

// Element returns the chemical element shared by the sublayer's atoms.
func (sl *SubLayer) Element(s *Slab) (string, error) {
	if len(sl.AtomIdx) == 0 {
		return "", ErrLayerHasNoAtoms
	}
	return s.Atoms[sl.AtomIdx[0]].Element, nil
}

// CartPos returns the representative Cartesian position of the sublayer,
// the position of its first atom.
func (sl *SubLayer) CartPos(s *Slab) ([3]float64, error) {
	if len(sl.AtomIdx) == 0 {
		return [3]float64{}, ErrLayerHasNoAtoms
	}
	return s.Atoms[sl.AtomIdx[0]].Cart, nil
}

// Pos returns the representative fractional position of the sublayer,
// the position of its first atom.
func (sl *SubLayer) Pos(s *Slab) ([3]float64, error) {
	if len(sl.AtomIdx) == 0 {
		return [3]float64{}, ErrLayerHasNoAtoms
	}
	return s.Atoms[sl.AtomIdx[0]].Pos, nil
}
