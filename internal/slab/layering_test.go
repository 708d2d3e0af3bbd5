package slab

import (
	"testing"

	"github.com/AJPfleger/viperleed/internal/testutil"
)

func TestCreateLayersBasic(t *testing.T) {
	s := mustSlab(t, testCell(4, 10), []Atom{
		{Element: "Fe", Pos: [3]float64{0, 0, 0.9}},
		{Element: "Fe", Pos: [3]float64{0.5, 0.5, 0.8}},
		{Element: "Fe", Pos: [3]float64{0, 0, 0.3}},
		{Element: "Fe", Pos: [3]float64{0.5, 0.5, 0.2}},
	})
	cuts, err := s.CreateLayers([]float64{0.5}, 1, nil)
	testutil.AssertNoError(t, err)
	if len(cuts) != 1 || cuts[0] != 0.5 {
		t.Fatalf("effective cuts = %v, want [0.5]", cuts)
	}
	if len(s.Layers) != 2 {
		t.Fatalf("layer count = %d, want 2", len(s.Layers))
	}
	// Layer 0 faces the vacuum: it holds the high-fractional-z atoms and
	// is not bulk; the bottom layer carries the bulk flag.
	if s.Layers[0].IsBulk || !s.Layers[1].IsBulk {
		t.Errorf("bulk flags = %v, %v; want false, true", s.Layers[0].IsBulk, s.Layers[1].IsBulk)
	}
	if got := s.Layers[0].NAtoms(); got != 2 {
		t.Errorf("layer 0 atom count = %d, want 2", got)
	}
	for _, ai := range s.Layers[0].AtomIdx {
		if s.Atoms[ai].Pos[2] <= 0.5 {
			t.Errorf("layer 0 contains atom below cutoff: z = %g", s.Atoms[ai].Pos[2])
		}
		if s.Atoms[ai].LayerIdx != 0 {
			t.Errorf("atom LayerIdx = %d, want 0", s.Atoms[ai].LayerIdx)
		}
	}
	if !s.LayersInitialized {
		t.Error("LayersInitialized = false after CreateLayers")
	}
}

func TestCreateLayersRemovesEmptyLayers(t *testing.T) {
	// No atom falls between the 0.4 and 0.6 cutoffs; the empty middle
	// layer disappears and its bulk flag moves up.
	s := mustSlab(t, testCell(4, 10), []Atom{
		{Element: "Fe", Pos: [3]float64{0, 0, 0.9}},
		{Element: "Fe", Pos: [3]float64{0, 0, 0.2}},
	})
	_, err := s.CreateLayers([]float64{0.4, 0.6}, 2, nil)
	testutil.AssertNoError(t, err)
	if len(s.Layers) != 2 {
		t.Fatalf("layer count = %d, want 2 (empty layer removed)", len(s.Layers))
	}
	// Both surviving layers came from the bottom two cutoff bands, so the
	// absorbed bulk flag must survive on the upper one.
	if !s.Layers[0].IsBulk || !s.Layers[1].IsBulk {
		t.Errorf("bulk flags = %v, %v; want true, true", s.Layers[0].IsBulk, s.Layers[1].IsBulk)
	}
	for i := range s.Layers {
		if s.Layers[i].Num != i {
			t.Errorf("layer %d: Num = %d", i, s.Layers[i].Num)
		}
	}
}

func TestCreateLayersBulkCutsMerge(t *testing.T) {
	// Cutoffs at or below the highest bulk cut are replaced by the bulk
	// cuts; higher ones survive.
	s := mustSlab(t, testCell(4, 10), []Atom{
		{Element: "Fe", Pos: [3]float64{0, 0, 0.9}},
		{Element: "Fe", Pos: [3]float64{0, 0, 0.6}},
		{Element: "Fe", Pos: [3]float64{0, 0, 0.3}},
		{Element: "Fe", Pos: [3]float64{0, 0, 0.1}},
	})
	cuts, err := s.CreateLayers([]float64{0.25, 0.7}, 0, []float64{0.2, 0.4})
	testutil.AssertNoError(t, err)
	want := []float64{0.2, 0.4, 0.7}
	if len(cuts) != len(want) {
		t.Fatalf("effective cuts = %v, want %v", cuts, want)
	}
	for i := range want {
		testutil.AssertInDelta(t, cuts[i], want[i], 1e-12)
	}
	if len(s.Layers) != 4 {
		t.Errorf("layer count = %d, want 4", len(s.Layers))
	}
}

func TestCreateLayersBulkSlabIgnoresBulkCuts(t *testing.T) {
	s := mustSlab(t, testCell(4, 4), []Atom{
		{Element: "Fe", Pos: [3]float64{0, 0, 0.5}},
	})
	s.Kind = Bulk
	cuts, err := s.CreateLayers([]float64{0.9}, 0, []float64{0.2})
	testutil.AssertNoError(t, err)
	if len(cuts) != 1 || cuts[0] != 0.9 {
		t.Errorf("effective cuts = %v, want [0.9]", cuts)
	}
}

func TestCreateLayersRejectsTiltedInPlaneVectors(t *testing.T) {
	cell := testCell(4, 10)
	cell[2][0] = 0.5 // a vector acquires a z component
	s := New(Surface)
	s.Cell = cell
	s.Atoms = []Atom{{Element: "Fe", Pos: [3]float64{0, 0, 0.5}}}
	_, err := s.CreateLayers([]float64{0.5}, 0, nil)
	testutil.AssertErrorIs(t, err, ErrInvalidUnitCell)
}

func TestLayerUpdatePosition(t *testing.T) {
	s := mustSlab(t, testCell(4, 10), []Atom{
		{Element: "Fe", Pos: [3]float64{0, 0, 0.9}},
		{Element: "Fe", Pos: [3]float64{0, 0, 0.7}},
	})
	_, err := s.CreateLayers(nil, 0, nil)
	testutil.AssertNoError(t, err)
	if len(s.Layers) != 1 {
		t.Fatalf("layer count = %d, want 1", len(s.Layers))
	}
	l := &s.Layers[0]
	// Topmost atom: frac z 0.9, cart z 0. Bottom atom: frac 0.7, cart 2.
	testutil.AssertInDelta(t, l.CartBotZ, 2, 1e-12)
	testutil.AssertVec3InDelta(t, l.CartOrigin, [3]float64{0, 0, 0}, 1e-12)

	empty := Layer{}
	testutil.AssertErrorIs(t, empty.UpdatePosition(s), ErrLayerHasNoAtoms)
}

func TestMinLayerSpacing(t *testing.T) {
	s := mustSlab(t, testCell(4, 10), []Atom{
		{Element: "Fe", Pos: [3]float64{0, 0, 0.9}},
		{Element: "Fe", Pos: [3]float64{0, 0, 0.5}},
		{Element: "Fe", Pos: [3]float64{0, 0, 0.4}},
	})
	_, err := s.CreateLayers([]float64{0.7}, 0, nil)
	testutil.AssertNoError(t, err)
	got, err := s.MinLayerSpacing()
	testutil.AssertNoError(t, err)
	// Layer 0 bottom: z = 0 (single atom at the top). Layer 1 top: frac
	// 0.5 at cart z 4. Spacing = 4.
	testutil.AssertInDelta(t, got, 4, 1e-12)
}
