package lattice

import "math"

// Shape classifies the geometry of a 2D unit cell.
type Shape string

const (
	Oblique     Shape = "oblique"
	Rhombic     Shape = "rhombic"
	Rectangular Shape = "rectangular"
	Square      Shape = "square"
	Hexagonal   Shape = "hexagonal"
)

// ShapeOf classifies a 2D cell by the lengths of its vectors and the angle
// between them, within tolerance eps (same length units as the vectors).
func ShapeOf(cell Cell2, eps float64) Shape {
	na, nb := Norm(cell[0]), Norm(cell[1])
	sameLen := math.Abs(na-nb) < eps
	cosAngle := Dot(cell[0], cell[1]) / (na * nb)
	// Angular tolerance scaled by the shorter vector length.
	cosEps := eps / math.Min(na, nb)
	switch {
	case sameLen && math.Abs(cosAngle) < cosEps:
		return Square
	case sameLen && math.Abs(math.Abs(cosAngle)-0.5) < cosEps:
		return Hexagonal
	case math.Abs(cosAngle) < cosEps:
		return Rectangular
	case sameLen:
		return Rhombic
	default:
		return Oblique
	}
}
