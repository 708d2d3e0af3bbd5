package slab

import (
	"testing"

	"github.com/AJPfleger/viperleed/internal/testutil"
)

// testCell returns a tetragonal cell with in-plane vectors of length a
// and a c vector of length c along z.
func testCell(a, c float64) UnitCell {
	return UnitCell{
		{a, 0, 0},
		{0, a, 0},
		{0, 0, c},
	}
}

func mustSlab(t *testing.T, cell UnitCell, atoms []Atom) *Slab {
	t.Helper()
	s, err := NewSlab(cell, atoms)
	testutil.AssertNoError(t, err)
	return s
}

func TestNewSlabValidation(t *testing.T) {
	_, err := NewSlab(UnitCell{}, nil)
	testutil.AssertErrorIs(t, err, ErrUninitializedCell)

	degenerate := UnitCell{
		{4, 4, 0},
		{4, 4, 0},
		{0, 0, 4},
	}
	_, err = NewSlab(degenerate, nil)
	testutil.AssertErrorIs(t, err, ErrDegenerateCell)
}

func TestNewSlabAssignsOrigIdx(t *testing.T) {
	s := mustSlab(t, testCell(4, 10), []Atom{
		{Element: "Fe", Pos: [3]float64{0, 0, 0.9}},
		{Element: "O", Pos: [3]float64{0.5, 0.5, 0.8}},
	})
	for i := range s.Atoms {
		if s.Atoms[i].OrigIdx != i+1 {
			t.Errorf("atom %d: OrigIdx = %d, want %d", i, s.Atoms[i].OrigIdx, i+1)
		}
		if s.Atoms[i].LayerIdx != -1 {
			t.Errorf("atom %d: LayerIdx = %d, want -1", i, s.Atoms[i].LayerIdx)
		}
	}
}

func TestElementsFirstAppearanceOrder(t *testing.T) {
	s := mustSlab(t, testCell(4, 10), []Atom{
		{Element: "O", Pos: [3]float64{0, 0, 0.9}},
		{Element: "Fe", Pos: [3]float64{0.5, 0, 0.8}},
		{Element: "O", Pos: [3]float64{0, 0.5, 0.7}},
	})
	got := s.Elements()
	want := []string{"O", "Fe"}
	if len(got) != len(want) {
		t.Fatalf("Elements() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Elements() = %v, want %v", got, want)
		}
	}
	n := s.NPerElem()
	if n["O"] != 2 || n["Fe"] != 1 {
		t.Errorf("NPerElem() = %v, want O:2 Fe:1", n)
	}
}

func TestCopyIsDeep(t *testing.T) {
	s := mustSlab(t, testCell(4, 10), []Atom{
		{Element: "Fe", Pos: [3]float64{0, 0, 0.9}},
		{Element: "Fe", Pos: [3]float64{0.5, 0.5, 0.5}},
	})
	_, err := s.CreateLayers([]float64{0.7}, 1, nil)
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, s.CreateSublayers(0.1))

	c := s.Copy()
	c.Atoms[0].Pos[0] = 0.25
	c.Layers[0].AtomIdx[0] = 99
	c.SubLayers[0].AtomIdx[0] = 99

	if s.Atoms[0].Pos[0] == 0.25 {
		t.Error("copy shares atom storage with original")
	}
	if s.Layers[0].AtomIdx[0] == 99 {
		t.Error("copy shares layer index storage with original")
	}
	if s.SubLayers[0].AtomIdx[0] == 99 {
		t.Error("copy shares sublayer index storage with original")
	}
}

func TestSortByZRemapsLayerIndices(t *testing.T) {
	s := mustSlab(t, testCell(4, 10), []Atom{
		{Element: "Fe", Pos: [3]float64{0, 0, 0.2}},
		{Element: "Fe", Pos: [3]float64{0, 0, 0.9}},
		{Element: "Fe", Pos: [3]float64{0, 0, 0.5}},
	})
	_, err := s.CreateLayers([]float64{0.7}, 0, nil)
	testutil.AssertNoError(t, err)

	s.SortByZ()
	// After sorting, every layer's indices must still point at atoms of
	// the right height band.
	for li := range s.Layers {
		for _, ai := range s.Layers[li].AtomIdx {
			if s.Atoms[ai].LayerIdx != li {
				t.Errorf("atom %d: LayerIdx = %d, layer list says %d",
					ai, s.Atoms[ai].LayerIdx, li)
			}
		}
	}
	for i := 1; i < len(s.Atoms); i++ {
		if s.Atoms[i-1].Pos[2] > s.Atoms[i].Pos[2] {
			t.Errorf("atoms not z-sorted at %d: %g > %g", i, s.Atoms[i-1].Pos[2], s.Atoms[i].Pos[2])
		}
	}
}

func TestSortByElementPreservesAppearanceOrder(t *testing.T) {
	s := mustSlab(t, testCell(4, 10), []Atom{
		{Element: "O", Pos: [3]float64{0, 0, 0.9}},
		{Element: "Fe", Pos: [3]float64{0.5, 0, 0.8}},
		{Element: "O", Pos: [3]float64{0, 0.5, 0.7}},
		{Element: "Fe", Pos: [3]float64{0.5, 0.5, 0.6}},
	})
	s.SortByElement()
	want := []string{"O", "O", "Fe", "Fe"}
	for i, el := range want {
		if s.Atoms[i].Element != el {
			t.Fatalf("atom %d: element %q, want %q", i, s.Atoms[i].Element, el)
		}
	}
}

func TestResetAtomOrigIdxPropagatesToBulk(t *testing.T) {
	s := mustSlab(t, testCell(4, 10), []Atom{
		{Element: "Fe", Pos: [3]float64{0, 0, 0.9}, OrigIdx: 7},
		{Element: "Fe", Pos: [3]float64{0.5, 0.5, 0.5}, OrigIdx: 3},
	})
	bulk := mustSlab(t, testCell(4, 4), []Atom{
		{Element: "Fe", Pos: [3]float64{0.5, 0.5, 0.5}, OrigIdx: 3},
	})
	bulk.Kind = Bulk
	s.BulkSlab = bulk

	s.ResetAtomOrigIdx()
	// Element-sorted order: the two Fe atoms keep their relative OrigIdx
	// order (3 before 7) and get renumbered 1, 2.
	if s.Atoms[0].OrigIdx != 1 || s.Atoms[1].OrigIdx != 2 {
		t.Errorf("OrigIdx after reset = %d, %d, want 1, 2", s.Atoms[0].OrigIdx, s.Atoms[1].OrigIdx)
	}
	if bulk.Atoms[0].OrigIdx != 1 {
		t.Errorf("bulk atom OrigIdx = %d, want 1 (was 3, matched to first renumbered atom)",
			bulk.Atoms[0].OrigIdx)
	}
}

func TestFewestAtomsSublayer(t *testing.T) {
	s := mustSlab(t, testCell(4, 10), []Atom{
		{Element: "Fe", Pos: [3]float64{0, 0, 0.9}},
		{Element: "Fe", Pos: [3]float64{0.5, 0.5, 0.9}},
		{Element: "O", Pos: [3]float64{0, 0, 0.5}},
	})
	_, err := s.FewestAtomsSublayer()
	testutil.AssertErrorIs(t, err, ErrMissingSublayers)

	testutil.AssertNoError(t, s.CreateSublayers(0.1))
	low, err := s.FewestAtomsSublayer()
	testutil.AssertNoError(t, err)
	el, err := low.Element(s)
	testutil.AssertNoError(t, err)
	if el != "O" || len(low.AtomIdx) != 1 {
		t.Errorf("lowest-occupancy sublayer: element %q with %d atoms, want O with 1",
			el, len(low.AtomIdx))
	}
}

func TestReciprocalVectors(t *testing.T) {
	s := mustSlab(t, testCell(4, 10), []Atom{
		{Element: "Fe", Pos: [3]float64{0, 0, 0.9}},
	})
	rec, err := s.ReciprocalVectors()
	testutil.AssertNoError(t, err)
	ab := s.Cell.AB()
	// a_i · b_j = 2*pi*delta_ij
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			got := ab[i][0]*rec[j][0] + ab[i][1]*rec[j][1]
			want := 0.0
			if i == j {
				want = 2 * 3.141592653589793
			}
			testutil.AssertInDelta(t, got, want, 1e-9)
		}
	}
}

func TestIsKnownPlaneGroup(t *testing.T) {
	for _, tag := range []string{"p1", "pmm", "p4g", "p6m", "rcmm"} {
		if !IsKnownPlaneGroup(tag) {
			t.Errorf("IsKnownPlaneGroup(%q) = false, want true", tag)
		}
	}
	for _, tag := range []string{"", "p7", "unknown", "P4"} {
		if IsKnownPlaneGroup(tag) {
			t.Errorf("IsKnownPlaneGroup(%q) = true, want false", tag)
		}
	}
}
