package slab

import (
	"log"
	"sort"
)

// CreateLayers partitions the atoms into layers at the given fractional-z
// cutoffs, optionally seeding externally detected bulk-layer boundaries.
// The first nBulkLayers layers (counting from the bottom of the slab) are
// marked as bulk. Existing layers are overwritten. Empty layers are
// removed with a diagnostic, passing their bulk flag to the layer above.
// After removal, layers are renumbered so index 0 is the layer closest to
// the vacuum interface. Returns the effective sorted cutoff list.
//
// Cutoffs arrive as plain floats: parsing of textual cutoff
// specifications is a collaborator concern.
func (s *Slab) CreateLayers(cutoffs []float64, nBulkLayers int, bulkCuts []float64) ([]float64, error) {
	if err := s.Cell.CheckABInPlane(); err != nil {
		return nil, err
	}
	if err := s.ensureCartesian(); err != nil {
		return nil, err
	}
	if s.Kind == Bulk {
		bulkCuts = nil
	}
	ct := append([]float64(nil), cutoffs...)
	if len(bulkCuts) > 0 {
		maxBulk := bulkCuts[0]
		for _, v := range bulkCuts[1:] {
			if v > maxBulk {
				maxBulk = v
			}
		}
		kept := ct[:0]
		for _, v := range ct {
			if v > maxBulk+1e-6 {
				kept = append(kept, v)
			}
		}
		ct = append(kept, bulkCuts...)
	}
	sort.Float64s(ct)

	order := s.zOrder() // bottom to top
	layers := []Layer{{Num: 0, IsBulk: nBulkLayers > 0}}
	layNum := 0
	for _, ai := range order {
		// Only check for a new layer while below the top layer. An atom
		// may jump several cutoffs at once, leaving empty layers behind.
		for layNum < len(ct) && s.Atoms[ai].Pos[2] > ct[layNum] {
			layNum++
			layers = append(layers, Layer{Num: layNum, IsBulk: nBulkLayers > layNum})
		}
		layers[layNum].AtomIdx = append(layers[layNum].AtomIdx, ai)
	}

	filtered := layers[:0]
	for i := range layers {
		if len(layers[i].AtomIdx) == 0 {
			log.Printf("a layer containing no atoms was found; layer will be deleted. Check the layer cutoffs.")
			if layers[i].IsBulk && i+1 < len(layers) {
				layers[i+1].IsBulk = true
			}
			continue
		}
		filtered = append(filtered, layers[i])
	}
	// Construction runs bottom to top; layer 0 must be the topmost.
	for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	}
	s.Layers = filtered
	for i := range s.Layers {
		s.Layers[i].Num = i
		if err := s.Layers[i].UpdatePosition(s); err != nil {
			return nil, err
		}
		for _, ai := range s.Layers[i].AtomIdx {
			s.Atoms[ai].LayerIdx = i
		}
	}
	s.LayersInitialized = true
	return ct, nil
}
