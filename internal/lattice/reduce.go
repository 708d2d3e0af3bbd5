package lattice

import "math"

// Reduce performs a Lagrange-Gauss (Minkowski) reduction of the 2D cell,
// returning a basis of the two shortest lattice vectors spanning the same
// lattice, together with the integer transform T such that
// reduced = T · cell. The cell area is unchanged up to sign.
func Reduce(cell Cell2) (Cell2, [2][2]int) {
	t := [2][2]int{{1, 0}, {0, 1}}
	u, v := cell[0], cell[1]
	tu, tv := t[0], t[1]
	for {
		if Dot(u, u) > Dot(v, v) {
			u, v = v, u
			tu, tv = tv, tu
		}
		// |u| <= |v|: shorten v by an integer multiple of u.
		r := math.Round(Dot(u, v) / Dot(u, u))
		if r == 0 {
			break
		}
		v[0] -= r * u[0]
		v[1] -= r * u[1]
		ri := int(r)
		tv[0] -= ri * tu[0]
		tv[1] -= ri * tu[1]
	}
	if Dot(u, u) > Dot(v, v) {
		u, v = v, u
		tu, tv = tv, tu
	}
	return Cell2{u, v}, [2][2]int{tu, tv}
}
