package slab

import (
	"math"
	"testing"

	"github.com/AJPfleger/viperleed/internal/testutil"
)

func TestNearestNeighborsSquareLattice(t *testing.T) {
	// A single atom per cell: the nearest neighbor is its own periodic
	// image one lattice vector away.
	s := mustSlab(t, testCell(4, 10), []Atom{
		{Element: "Fe", Pos: [3]float64{0.25, 0.25, 0.9}},
	})
	dists, err := s.NearestNeighbors()
	testutil.AssertNoError(t, err)
	if len(dists) != 1 {
		t.Fatalf("distance count = %d, want 1", len(dists))
	}
	testutil.AssertInDelta(t, dists[0], 4, 1e-6)
}

func TestNearestNeighborsTwoAtomBasis(t *testing.T) {
	// Two atoms half a diagonal apart: NN distance is 2*sqrt(2), shorter
	// than the lattice constant.
	s := mustSlab(t, testCell(4, 10), []Atom{
		{Element: "Fe", Pos: [3]float64{0, 0, 0.9}},
		{Element: "Fe", Pos: [3]float64{0.5, 0.5, 0.9}},
	})
	dists, err := s.NearestNeighbors()
	testutil.AssertNoError(t, err)
	want := 2 * math.Sqrt2
	for _, d := range dists {
		testutil.AssertInDelta(t, d, want, 1e-6)
	}
}

func TestNearestNeighborsOutOfPlane(t *testing.T) {
	// Distances are 3D: two atoms stacked 1 A apart in z beat any
	// in-plane image.
	s := mustSlab(t, testCell(4, 10), []Atom{
		{Element: "Fe", Pos: [3]float64{0.25, 0.25, 0.9}},
		{Element: "O", Pos: [3]float64{0.25, 0.25, 0.8}},
	})
	dists, err := s.NearestNeighbors()
	testutil.AssertNoError(t, err)
	for _, d := range dists {
		testutil.AssertInDelta(t, d, 1, 1e-6)
	}
}

func TestGridIndexNearestAcrossRings(t *testing.T) {
	// The closest point sits in ring 2 of the query's grid cell while a
	// farther point sits in ring 1. The ring search must not stop on the
	// ring-1 hit: a ring-2 point can be as close as one cell size.
	pts := [][3]float64{
		{1.99, 1.4, 0},
		{2.01, 0.5, 0},
	}
	gi := newGridIndex(pts, 1)
	got := gi.nearest([3]float64{0.99, 0.5, 0}, 1e-12)
	testutil.AssertInDelta(t, got, 1.02, 1e-9)
}

func TestNearestNeighborsOffGridAtom(t *testing.T) {
	// A 10x10 grid of atoms with three displaced so that the nearest
	// neighbor of the first atom lies two grid-index rings away while a
	// decoy sits one ring away.
	cell := UnitCell{
		{10, 0, 0},
		{0, 10, 0},
		{0, 0, 10},
	}
	var atoms []Atom
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			atoms = append(atoms, Atom{
				Element: "Fe",
				Pos:     [3]float64{(float64(i) + 0.5) / 10, (float64(j) + 0.5) / 10, 0.9},
			})
		}
	}
	atoms[0].Pos = [3]float64{0.099, 0.05, 0.9}  // query atom
	atoms[10].Pos = [3]float64{0.201, 0.05, 0.9} // true nearest, 1.02 A
	atoms[11].Pos = [3]float64{0.199, 0.14, 0.9} // decoy, 1.345 A

	s := mustSlab(t, cell, atoms)
	dists, err := s.NearestNeighbors()
	testutil.AssertNoError(t, err)
	testutil.AssertInDelta(t, dists[0], 1.02, 1e-6)
}

func TestNearestNeighborsAnisotropicCell(t *testing.T) {
	// A strongly anisotropic cell forces extra supercell repetitions
	// along the short direction.
	cell := UnitCell{
		{12, 0, 0},
		{0, 2, 0},
		{0, 0, 10},
	}
	s := mustSlab(t, cell, []Atom{
		{Element: "Fe", Pos: [3]float64{0.5, 0.5, 0.9}},
	})
	dists, err := s.NearestNeighbors()
	testutil.AssertNoError(t, err)
	testutil.AssertInDelta(t, dists[0], 2, 1e-6)
}
