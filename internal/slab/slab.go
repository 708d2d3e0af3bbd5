// Package slab models a crystalline surface as a periodic arrangement of
// atoms and determines its layering and geometric symmetry (mirror,
// rotation, translation) under floating-point tolerance.
//
// A Slab owns a unit cell, an atom arena, and derived layers and
// sublayers. Atom positions live in two coordinate systems: fractional
// (unit-cell) coordinates, and Cartesian coordinates whose z axis is
// referenced to the topmost atom and increases going from the vacuum
// into the solid. All tolerances (eps for in-plane checks, epsZ for
// height clustering) are supplied per call; the package holds no global
// tolerance state.
package slab

import (
	"fmt"
	"math"
	"sort"

	"github.com/AJPfleger/viperleed/internal/lattice"
)

// Kind distinguishes a surface slab from its bulk repeat unit.
type Kind int

const (
	// Surface is a slab periodic in-plane only, with vacuum above.
	Surface Kind = iota
	// Bulk is a slab periodic in all three directions.
	Bulk
)

// CellModKind identifies one recorded unit-cell modification.
type CellModKind string

const (
	// CellModAdd is an in-plane translation of all Cartesian positions.
	CellModAdd CellModKind = "add"
	// CellModLMul is a left multiplication of the unit cell.
	CellModLMul CellModKind = "lmul"
	// CellModRMul is a right multiplication of the unit cell. Scalings
	// are recorded as right multiplications by a diagonal matrix.
	CellModRMul CellModKind = "rmul"
)

// CellMod is one entry of the unit-cell modification stack, kept so that
// earlier cell states can be recovered by RevertUnitCell without storing
// full copies.
type CellMod struct {
	Kind  CellModKind
	Mat   [3][3]float64
	Shift [2]float64
}

// Slab is a periodic-in-plane collection of atoms in crystalline form:
// unit cell, atom arena, and the layers/sublayers derived from it.
type Slab struct {
	// Cell holds the lattice vectors a, b, c as columns.
	Cell UnitCell

	// Atoms is the atom arena. Insertion order is the original input
	// order unless re-sorted explicitly.
	Atoms []Atom

	// Layers partitions the atoms by z cutoffs; layer 0 is the one
	// closest to the vacuum interface. Valid once LayersInitialized.
	Layers []Layer

	// SubLayers groups atoms of one element at one z height, ordered by
	// height (topmost first) and by element name within a shared height.
	SubLayers []SubLayer

	// Kind tags the slab as a surface or a bulk repeat unit.
	Kind Kind

	// BulkSlab optionally links a surface slab to the repeating unit
	// beneath it. Cleared when a transform invalidates the z axis.
	BulkSlab *Slab

	// CellMods records unit-cell modifications for RevertUnitCell.
	CellMods []CellMod

	// PlaneGroup and FoundPlaneGroup are symmetry tags set by an
	// external symmetry-finding driver. FoundPlaneGroup records the
	// highest symmetry found; PlaneGroup may be reduced by the caller.
	PlaneGroup      string
	FoundPlaneGroup string

	// TopAtomOriginZ is the Cartesian z of the topmost atom when the
	// origin was last updated; the reference plane for all Cartesian z.
	TopAtomOriginZ float64

	// LayersInitialized reports whether CreateLayers has run.
	LayersInitialized bool

	elemOrder []string
	hasOrigin bool
	cartDirty bool
}

// New returns an empty slab of the given kind.
func New(kind Kind) *Slab {
	return &Slab{Kind: kind, PlaneGroup: "unknown", FoundPlaneGroup: "unknown"}
}

// NewSlab builds a slab from a unit cell and a list of atoms carrying
// element, fractional position, and (optionally) a 1-based original
// index; missing indices are assigned from input order. Cartesian
// coordinates are computed immediately.
func NewSlab(cell UnitCell, atoms []Atom) (*Slab, error) {
	if cell.IsZero() {
		return nil, ErrUninitializedCell
	}
	if math.Abs(cell.Det()) < 1e-12 {
		return nil, fmt.Errorf("%w: zero cell volume", ErrDegenerateCell)
	}
	s := New(Surface)
	s.Cell = cell
	s.Atoms = make([]Atom, len(atoms))
	copy(s.Atoms, atoms)
	for i := range s.Atoms {
		if s.Atoms[i].OrigIdx == 0 {
			s.Atoms[i].OrigIdx = i + 1
		}
		s.Atoms[i].LayerIdx = -1
	}
	s.elemOrder = firstAppearanceOrder(s.Atoms)
	if err := s.UpdateCartesian(true); err != nil {
		return nil, err
	}
	return s, nil
}

func firstAppearanceOrder(atoms []Atom) []string {
	seen := make(map[string]bool)
	var order []string
	for i := range atoms {
		if el := atoms[i].Element; !seen[el] {
			seen[el] = true
			order = append(order, el)
		}
	}
	return order
}

// NAtoms returns the number of atoms in the slab.
func (s *Slab) NAtoms() int { return len(s.Atoms) }

// Elements returns the element labels in their original order of
// appearance, restricted to elements still present.
func (s *Slab) Elements() []string {
	n := s.NPerElem()
	out := make([]string, 0, len(s.elemOrder))
	for _, el := range s.elemOrder {
		if n[el] > 0 {
			out = append(out, el)
		}
	}
	return out
}

// NPerElem returns the number of atoms per element.
func (s *Slab) NPerElem() map[string]int {
	n := make(map[string]int)
	for i := range s.Atoms {
		n[s.Atoms[i].Element]++
	}
	return n
}

// UpdateElementCount refreshes the element bookkeeping after atoms were
// added or removed, dropping elements that no longer occur.
func (s *Slab) UpdateElementCount() {
	n := s.NPerElem()
	kept := s.elemOrder[:0]
	for _, el := range s.elemOrder {
		if n[el] > 0 {
			kept = append(kept, el)
		}
	}
	s.elemOrder = kept
	for i := range s.Atoms {
		if el := s.Atoms[i].Element; n[el] > 0 {
			found := false
			for _, e := range s.elemOrder {
				if e == el {
					found = true
					break
				}
			}
			if !found {
				s.elemOrder = append(s.elemOrder, el)
			}
		}
	}
}

// Copy returns a deep copy of the slab. Layers and sublayers reference
// atoms by index, so the copy shares no mutable state with the original;
// duplicate-of links are OrigIdx values and survive unchanged.
func (s *Slab) Copy() *Slab {
	out := *s
	out.Atoms = append([]Atom(nil), s.Atoms...)
	out.Layers = make([]Layer, len(s.Layers))
	for i := range s.Layers {
		out.Layers[i] = s.Layers[i]
		out.Layers[i].AtomIdx = append([]int(nil), s.Layers[i].AtomIdx...)
	}
	out.SubLayers = make([]SubLayer, len(s.SubLayers))
	for i := range s.SubLayers {
		out.SubLayers[i] = s.SubLayers[i]
		out.SubLayers[i].AtomIdx = append([]int(nil), s.SubLayers[i].AtomIdx...)
	}
	out.CellMods = append([]CellMod(nil), s.CellMods...)
	out.elemOrder = append([]string(nil), s.elemOrder...)
	if s.BulkSlab != nil {
		out.BulkSlab = s.BulkSlab.Copy()
	}
	return &out
}

// MarkCoordinatesDirty flags the Cartesian cache as stale. Call it after
// mutating the unit cell or fractional positions directly; every
// geometric query refreshes the cache through this single flag.
func (s *Slab) MarkCoordinatesDirty() { s.cartDirty = true }

func (s *Slab) ensureCartesian() error {
	if s.cartDirty {
		return s.UpdateCartesian(false)
	}
	return nil
}

// applyAtomOrder reorders the atom arena so that position k holds the
// atom previously at order[k], remapping all layer and sublayer indices.
func (s *Slab) applyAtomOrder(order []int) {
	inv := make([]int, len(order))
	for k, old := range order {
		inv[old] = k
	}
	newAtoms := make([]Atom, len(order))
	for k, old := range order {
		newAtoms[k] = s.Atoms[old]
	}
	s.Atoms = newAtoms
	for li := range s.Layers {
		for j, idx := range s.Layers[li].AtomIdx {
			s.Layers[li].AtomIdx[j] = inv[idx]
		}
	}
	for li := range s.SubLayers {
		for j, idx := range s.SubLayers[li].AtomIdx {
			s.SubLayers[li].AtomIdx[j] = inv[idx]
		}
	}
}

// zOrder returns atom indices sorted by fractional z, bottom to top.
func (s *Slab) zOrder() []int {
	order := make([]int, len(s.Atoms))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return s.Atoms[order[a]].Pos[2] < s.Atoms[order[b]].Pos[2]
	})
	return order
}

// SortByZ sorts the atom arena by fractional z, bottom to top.
func (s *Slab) SortByZ() {
	s.applyAtomOrder(s.zOrder())
}

// SortOriginal sorts the atom arena by original index.
func (s *Slab) SortOriginal() {
	order := make([]int, len(s.Atoms))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return s.Atoms[order[a]].OrigIdx < s.Atoms[order[b]].OrigIdx
	})
	s.applyAtomOrder(order)
}

// SortByElement groups the atom arena by element, preserving the original
// element order and the relative order of atoms within each element.
func (s *Slab) SortByElement() {
	rank := make(map[string]int, len(s.elemOrder))
	for i, el := range s.elemOrder {
		rank[el] = i
	}
	order := make([]int, len(s.Atoms))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rank[s.Atoms[order[a]].Element] < rank[s.Atoms[order[b]].Element]
	})
	s.applyAtomOrder(order)
}

// ResetAtomOrigIdx assigns fresh 1-based original indices in element-sorted
// order. If a bulk slab is linked, its atoms are renumbered consistently by
// matching old indices.
func (s *Slab) ResetAtomOrigIdx() {
	s.SortOriginal()
	s.SortByElement()
	var oldToNew map[int]int
	if s.BulkSlab != nil {
		oldToNew = make(map[int]int, len(s.Atoms))
	}
	for i := range s.Atoms {
		old := s.Atoms[i].OrigIdx
		s.Atoms[i].OrigIdx = i + 1
		if oldToNew != nil {
			if _, claimed := oldToNew[old]; !claimed {
				oldToNew[old] = i + 1
			}
		}
	}
	if s.BulkSlab != nil {
		for i := range s.BulkSlab.Atoms {
			if n, ok := oldToNew[s.BulkSlab.Atoms[i].OrigIdx]; ok {
				s.BulkSlab.Atoms[i].OrigIdx = n
			}
		}
	}
}

// duplicateAtom appends a copy of atom ai to the arena, links it to the
// original through DuplicateOf, and registers it with the original's
// layer. Returns the index of the new atom.
func (s *Slab) duplicateAtom(ai int) int {
	dup := s.Atoms[ai]
	dup.DuplicateOf = s.Atoms[ai].OrigIdx
	dup.OrigIdx = len(s.Atoms) + 1
	s.Atoms = append(s.Atoms, dup)
	ni := len(s.Atoms) - 1
	if dup.LayerIdx >= 0 && dup.LayerIdx < len(s.Layers) {
		s.Layers[dup.LayerIdx].AtomIdx = append(s.Layers[dup.LayerIdx].AtomIdx, ni)
	}
	return ni
}

// FewestAtomsSublayer returns the sublayer with the lowest occupancy.
func (s *Slab) FewestAtomsSublayer() (*SubLayer, error) {
	if len(s.SubLayers) == 0 {
		return nil, ErrMissingSublayers
	}
	low := 0
	for i := range s.SubLayers {
		if len(s.SubLayers[i].AtomIdx) < len(s.SubLayers[low].AtomIdx) {
			low = i
		}
	}
	return &s.SubLayers[low], nil
}

// MinLayerSpacing returns the minimum Cartesian distance between two
// adjacent layers, or zero when fewer than two layers are defined.
func (s *Slab) MinLayerSpacing() (float64, error) {
	if len(s.Layers) < 2 {
		return 0, nil
	}
	if err := s.ensureCartesian(); err != nil {
		return 0, err
	}
	minSpacing := math.Inf(1)
	for i := 1; i < len(s.Layers); i++ {
		d := s.Layers[i].CartOrigin[2] - s.Layers[i-1].CartBotZ
		if d < minSpacing {
			minSpacing = d
		}
	}
	return minSpacing, nil
}

// UpdateLayerCoordinates refreshes the cached Cartesian positions of all
// layers.
func (s *Slab) UpdateLayerCoordinates() error {
	if err := s.ensureCartesian(); err != nil {
		return err
	}
	for i := range s.Layers {
		if err := s.Layers[i].UpdatePosition(s); err != nil {
			return err
		}
	}
	return nil
}

// AngleBetweenCellAndCoordSys returns the angle in degrees between the
// first unit-cell vector and the Cartesian x axis.
func (s *Slab) AngleBetweenCellAndCoordSys() (float64, error) {
	if s.Cell.IsZero() {
		return 0, fmt.Errorf("%w: no unit cell defined", ErrInvalidUnitCell)
	}
	a := s.Cell.AB()[0]
	return math.Atan2(a[1], a[0]) * 180 / math.Pi, nil
}

// ReciprocalVectors returns the in-plane reciprocal lattice vectors as
// rows, defined by a_i · b_j = 2*pi*delta_ij.
func (s *Slab) ReciprocalVectors() (lattice.Cell2, error) {
	if s.Cell.IsZero() {
		return lattice.Cell2{}, fmt.Errorf("%w: no unit cell defined", ErrInvalidUnitCell)
	}
	ab := s.Cell.AB()
	inv, ok := lattice.Mat2(ab).Inv()
	if !ok {
		return lattice.Cell2{}, fmt.Errorf("%w: in-plane cell has zero area", ErrDegenerateCell)
	}
	// Transpose swaps the row <-> column roles between real and
	// reciprocal space; the inverse already carries the 1/area factor.
	return lattice.Cell2{
		{2 * math.Pi * inv[0][0], 2 * math.Pi * inv[1][0]},
		{2 * math.Pi * inv[0][1], 2 * math.Pi * inv[1][1]},
	}, nil
}

// CellShape classifies the in-plane unit cell within tolerance eps.
func (s *Slab) CellShape(eps float64) (lattice.Shape, error) {
	if s.Cell.IsZero() {
		return "", fmt.Errorf("%w: no unit cell defined", ErrInvalidUnitCell)
	}
	return lattice.ShapeOf(s.Cell.AB(), eps), nil
}

// knownPlaneGroups are the plane-symmetry group tags relevant for LEED
// surfaces, as set by the external symmetry-finding driver.
var knownPlaneGroups = map[string]bool{
	"p1": true, "p2": true, "pm": true, "pg": true, "cm": true,
	"rcm": true, "pmm": true, "pmg": true, "pgg": true, "cmm": true,
	"rcmm": true, "p4": true, "p4m": true, "p4g": true, "p3": true,
	"p3m1": true, "p31m": true, "p6": true, "p6m": true,
}

// IsKnownPlaneGroup reports whether tag names a recognized plane group.
func IsKnownPlaneGroup(tag string) bool { return knownPlaneGroups[tag] }
