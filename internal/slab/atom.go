package slab

// Atom is a single atom in a slab. Positions are kept in both fractional
// (unit-cell) and Cartesian form; the Cartesian values are derived and
// refreshed by the slab's coordinate updates.
//
// Layer membership and duplicate links are stored as plain indices and
// numbers rather than pointers, so copying a slab is an index-stable
// slice copy with no pointer fixups.
type Atom struct {
	// Element is the chemical element label.
	Element string

	// Pos is the fractional position in unit-cell coordinates.
	Pos [3]float64

	// Cart is the Cartesian position. The z component is measured from
	// the reference origin at the topmost atom and increases going from
	// the vacuum into the solid.
	Cart [3]float64

	// OrigIdx is the stable, 1-based identity of the atom. It survives
	// copies and is renumbered only by explicit request.
	OrigIdx int

	// LayerIdx is the index of the owning layer in Slab.Layers, or -1
	// when layers have not been assigned.
	LayerIdx int

	// DuplicateOf is the OrigIdx of the atom this one was duplicated
	// from (supercell replication, bulk extension), or 0 when the atom
	// is not a duplicate.
	DuplicateOf int
}
