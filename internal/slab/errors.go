package slab

import "errors"

// Sentinel errors for geometric contract violations. All of them are
// deterministic precondition failures: the inputs are either geometrically
// consistent or the call fails fast. Check with errors.Is.
var (
	// ErrUninitializedCell is returned when coordinates are requested
	// before a unit cell (or a Cartesian origin) has been established.
	ErrUninitializedCell = errors.New("slab: unit cell not initialized")

	// ErrDegenerateCell is returned when the unit cell is singular or
	// near-singular and cannot be inverted.
	ErrDegenerateCell = errors.New("slab: unit cell is singular")

	// ErrInvalidUnitCell is returned when the a or b vector has an
	// out-of-plane (z) component, which makes layering and symmetry
	// checks undefined.
	ErrInvalidUnitCell = errors.New("slab: invalid unit cell")

	// ErrMissingLayers is returned by operations that require layers.
	ErrMissingLayers = errors.New("slab: layers not initialized")

	// ErrMissingSublayers is returned by operations that require sublayers.
	ErrMissingSublayers = errors.New("slab: sublayers not initialized")

	// ErrLayerHasNoAtoms is returned when an empty layer or sublayer is
	// queried for a position or element.
	ErrLayerHasNoAtoms = errors.New("slab: layer has no atoms")

	// ErrAlreadyMinimal is returned when a cell reduction is requested
	// but the in-plane cell is already minimal.
	ErrAlreadyMinimal = errors.New("slab: unit cell is already minimal")

	// ErrInvalidTransform is returned for transformation arguments that
	// violate their contract (non-orthogonal matrices, non-integer
	// supercell matrices, zero scaling factors).
	ErrInvalidTransform = errors.New("slab: invalid transformation")
)
