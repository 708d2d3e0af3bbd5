package lattice

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestAngle(t *testing.T) {
	tests := []struct {
		name   string
		v1, v2 [2]float64
		want   float64
	}{
		{"orthogonal right-handed", [2]float64{1, 0}, [2]float64{0, 1}, math.Pi / 2},
		{"orthogonal left-handed", [2]float64{0, 1}, [2]float64{1, 0}, -math.Pi / 2},
		{"parallel", [2]float64{2, 0}, [2]float64{5, 0}, 0},
		{"hexagonal", [2]float64{1, 0}, [2]float64{-0.5, math.Sqrt(3) / 2}, 2 * math.Pi / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Angle(tt.v1, tt.v2)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Angle(%v, %v) = %g, want %g", tt.v1, tt.v2, got, tt.want)
			}
		})
	}
}

func TestRotationMatrixOrder(t *testing.T) {
	// Applying an order-4 rotation four times must give the identity.
	m := RotationMatrixOrder(4)
	acc := Mat2{{1, 0}, {0, 1}}
	for i := 0; i < 4; i++ {
		acc = m.Mul(acc)
	}
	want := Mat2{{1, 0}, {0, 1}}
	if diff := cmp.Diff(want, acc, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("order-4 rotation applied 4 times (-want +got):\n%s", diff)
	}
}

func TestReflectionMatrix(t *testing.T) {
	// Reflecting across the diagonal swaps the axes.
	m := ReflectionMatrix([2]float64{1, 1})
	got := m.MulVec([2]float64{1, 0})
	if math.Abs(got[0]) > 1e-12 || math.Abs(got[1]-1) > 1e-12 {
		t.Errorf("diagonal reflection of (1,0) = %v, want (0,1)", got)
	}
	// A reflection is an involution.
	got = m.MulVec(got)
	if math.Abs(got[0]-1) > 1e-12 || math.Abs(got[1]) > 1e-12 {
		t.Errorf("double reflection of (1,0) = %v, want (1,0)", got)
	}
}

func TestReduce(t *testing.T) {
	tests := []struct {
		name string
		cell Cell2
		want Cell2
	}{
		{
			name: "already reduced",
			cell: Cell2{{4, 0}, {0, 4}},
			want: Cell2{{4, 0}, {0, 4}},
		},
		{
			name: "skewed basis",
			cell: Cell2{{4, 0}, {12, 4}},
			want: Cell2{{4, 0}, {0, 4}},
		},
		{
			name: "long second vector",
			cell: Cell2{{1, 0}, {5, 1}},
			want: Cell2{{1, 0}, {0, 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, tr := Reduce(tt.cell)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
				t.Errorf("Reduce(%v) (-want +got):\n%s", tt.cell, diff)
			}
			// The integer transform must reproduce the reduced cell.
			var rebuilt Cell2
			for k := 0; k < 2; k++ {
				for i := 0; i < 2; i++ {
					rebuilt[k][i] = float64(tr[k][0])*tt.cell[0][i] + float64(tr[k][1])*tt.cell[1][i]
				}
			}
			if diff := cmp.Diff(got, rebuilt, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
				t.Errorf("transform does not rebuild reduced cell (-want +got):\n%s", diff)
			}
			// Area is preserved.
			if math.Abs(got.Area()-tt.cell.Area()) > 1e-12 {
				t.Errorf("area changed: %g -> %g", tt.cell.Area(), got.Area())
			}
		})
	}
}

func TestReduceShortestVectors(t *testing.T) {
	// The reduced basis must consist of the two shortest independent
	// lattice vectors: no integer combination may be shorter.
	cell := Cell2{{6, 1}, {8, 3}}
	red, _ := Reduce(cell)
	shortest := math.Min(Norm(red[0]), Norm(red[1]))
	for i := -3; i <= 3; i++ {
		for j := -3; j <= 3; j++ {
			if i == 0 && j == 0 {
				continue
			}
			v := [2]float64{
				float64(i)*cell[0][0] + float64(j)*cell[1][0],
				float64(i)*cell[0][1] + float64(j)*cell[1][1],
			}
			if Norm(v) < shortest-1e-12 {
				t.Fatalf("lattice vector %v (i=%d, j=%d) shorter than reduced basis (%g < %g)",
					v, i, j, Norm(v), shortest)
			}
		}
	}
}

func TestShapeOf(t *testing.T) {
	tests := []struct {
		name string
		cell Cell2
		want Shape
	}{
		{"square", Cell2{{4, 0}, {0, 4}}, Square},
		{"rectangular", Cell2{{4, 0}, {0, 6}}, Rectangular},
		{"hexagonal", Cell2{{4, 0}, {-2, 2 * math.Sqrt(3)}}, Hexagonal},
		{"rhombic", Cell2{{4, 0}, {3, math.Sqrt(7)}}, Rhombic},
		{"oblique", Cell2{{4, 0}, {1, 6}}, Oblique},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShapeOf(tt.cell, 1e-3); got != tt.want {
				t.Errorf("ShapeOf(%v) = %q, want %q", tt.cell, got, tt.want)
			}
		})
	}
}
