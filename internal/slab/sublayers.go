package slab

import (
	"math"
	"sort"
)

// CreateSublayers groups the atoms into sublayers of one chemical element
// and one z-height cluster within epsZ.
//
// Within each element, z-sorted atoms are first split wherever the
// Cartesian z gap between consecutive atoms exceeds epsZ; any surviving
// cluster whose overall span still exceeds epsZ is then split at its
// single largest internal gap. The second pass is greedy, not a globally
// eps-consistent clustering, and a cluster following a singleton is
// skipped by the cursor arithmetic; downstream symmetry results are
// defined relative to this exact behaviour, so it is preserved as is.
//
// Clusters of different elements are merged into a shared height position
// when their reference z values agree within epsZ. The result is ordered
// topmost first, by element name within a shared height. Each sublayer's
// reference z is the z of its first atom, not an average.
func (s *Slab) CreateSublayers(epsZ float64) error {
	if err := s.ensureCartesian(); err != nil {
		return err
	}
	s.SortByZ()

	zOf := func(ai int) float64 { return s.Atoms[ai].Cart[2] }

	var subl []SubLayer
	for _, el := range s.Elements() {
		var sublists [][]int
		var all []int
		for i := range s.Atoms {
			if s.Atoms[i].Element == el {
				all = append(all, i)
			}
		}
		sublists = append(sublists, all)

		// First pass: split at every consecutive gap larger than epsZ.
		i := 0
		for i < len(sublists) {
			split := false
			if len(sublists[i]) > 1 {
				lst := sublists[i]
				for j := 1; j < len(lst); j++ {
					if math.Abs(zOf(lst[j])-zOf(lst[j-1])) > epsZ {
						sublists = append(sublists, lst[:j:j], lst[j:])
						sublists = append(sublists[:i], sublists[i+1:]...)
						split = true
						break
					}
				}
				if !split {
					i++
				}
			} else {
				i++
			}
		}

		// Second pass: clusters still thicker than epsZ overall are split
		// at their largest internal gap; halves are re-examined.
		i = 0
		for i < len(sublists) {
			split := false
			if len(sublists[i]) > 1 {
				lst := sublists[i]
				if math.Abs(zOf(lst[0])-zOf(lst[len(lst)-1])) > epsZ {
					maxDist := math.Abs(zOf(lst[1]) - zOf(lst[0]))
					maxAt := 1
					for j := 2; j < len(lst); j++ {
						if d := math.Abs(zOf(lst[j]) - zOf(lst[j-1])); d > maxDist {
							maxDist = d
							maxAt = j
						}
					}
					sublists = append(sublists, lst[:maxAt:maxAt], lst[maxAt:])
					sublists = append(sublists[:i], sublists[i+1:]...)
					split = true
				}
			} else {
				i++
			}
			if !split {
				i++
			}
		}

		for _, lst := range sublists {
			if len(lst) == 0 {
				continue
			}
			sl := SubLayer{Layer: Layer{AtomIdx: lst}}
			sl.CartBotZ = zOf(lst[0])
			subl = append(subl, sl)
		}
	}

	// Merge across elements: accumulate clusters sharing a reference z
	// within epsZ, topmost (smallest Cartesian z) first, element name
	// ascending within one height.
	sort.SliceStable(subl, func(a, b int) bool {
		return subl[a].CartBotZ > subl[b].CartBotZ
	})
	s.SubLayers = s.SubLayers[:0]
	for len(subl) > 0 {
		acc := []SubLayer{subl[len(subl)-1]}
		subl = subl[:len(subl)-1]
		for len(subl) > 0 {
			if math.Abs(subl[len(subl)-1].CartBotZ-acc[0].CartBotZ) < epsZ {
				acc = append(acc, subl[len(subl)-1])
				subl = subl[:len(subl)-1]
			} else {
				break
			}
		}
		sort.SliceStable(acc, func(a, b int) bool {
			return s.Atoms[acc[a].AtomIdx[0]].Element < s.Atoms[acc[b].AtomIdx[0]].Element
		})
		s.SubLayers = append(s.SubLayers, acc...)
	}
	for i := range s.SubLayers {
		s.SubLayers[i].Num = i
	}
	return nil
}
