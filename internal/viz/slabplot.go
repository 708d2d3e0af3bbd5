// Package viz renders diagnostic images of slab geometry. The plots are a
// debugging aid for layer cutoffs and symmetry searches, not a publication
// output.
package viz

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/AJPfleger/viperleed/internal/slab"
)

// PlotTopView saves a top-down scatter of the slab's atoms, one color per
// element, with the in-plane unit cell drawn as an outline. The image
// format follows the file extension (.png, .pdf, .svg).
func PlotTopView(s *slab.Slab, path string) error {
	p := plot.New()
	p.Title.Text = "Slab top view"
	p.X.Label.Text = "x (Å)"
	p.Y.Label.Text = "y (Å)"

	ab := s.Cell.AB()
	outline := plotter.XYs{
		{X: 0, Y: 0},
		{X: ab[0][0], Y: ab[0][1]},
		{X: ab[0][0] + ab[1][0], Y: ab[0][1] + ab[1][1]},
		{X: ab[1][0], Y: ab[1][1]},
		{X: 0, Y: 0},
	}
	cellLine, err := plotter.NewLine(outline)
	if err != nil {
		return fmt.Errorf("cell outline: %w", err)
	}
	cellLine.Color = color.Gray{Y: 128}
	cellLine.Width = vg.Points(1)
	p.Add(cellLine)

	elements := s.Elements()
	colors := generateColors(len(elements))
	for i, el := range elements {
		var pts plotter.XYs
		for ai := range s.Atoms {
			if s.Atoms[ai].Element == el {
				pts = append(pts, plotter.XY{X: s.Atoms[ai].Cart[0], Y: s.Atoms[ai].Cart[1]})
			}
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("scatter for %s: %w", el, err)
		}
		sc.GlyphStyle.Color = colors[i]
		sc.GlyphStyle.Radius = vg.Points(3)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		p.Legend.Add(el, sc)
	}
	p.Legend.Top = true
	p.Legend.XOffs = -10

	if err := p.Save(7*vg.Inch, 7*vg.Inch, path); err != nil {
		return fmt.Errorf("save top view: %w", err)
	}
	return nil
}

// PlotLayerProfile saves a plot of atom count against Cartesian depth,
// with one vertical marker per layer boundary. Useful when choosing layer
// cutoffs.
func PlotLayerProfile(s *slab.Slab, binWidth float64, path string) error {
	if binWidth <= 0 {
		return fmt.Errorf("bin width must be positive, got %g", binWidth)
	}
	p := plot.New()
	p.Title.Text = "Atom depth profile"
	p.X.Label.Text = "z (Å, into solid)"
	p.Y.Label.Text = "atoms per bin"

	minZ, maxZ := math.Inf(1), math.Inf(-1)
	for i := range s.Atoms {
		z := s.Atoms[i].Cart[2]
		minZ = math.Min(minZ, z)
		maxZ = math.Max(maxZ, z)
	}
	if minZ > maxZ {
		return fmt.Errorf("slab has no atoms")
	}
	nBins := int((maxZ-minZ)/binWidth) + 1
	counts := make([]float64, nBins)
	for i := range s.Atoms {
		counts[int((s.Atoms[i].Cart[2]-minZ)/binWidth)]++
	}
	pts := make(plotter.XYs, nBins)
	for i, c := range counts {
		pts[i] = plotter.XY{X: minZ + (float64(i)+0.5)*binWidth, Y: c}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("profile line: %w", err)
	}
	line.Width = vg.Points(1)
	p.Add(line)

	for li := range s.Layers {
		marker := plotter.XYs{
			{X: s.Layers[li].CartBotZ, Y: 0},
			{X: s.Layers[li].CartBotZ, Y: maxFloat(counts)},
		}
		ml, err := plotter.NewLine(marker)
		if err != nil {
			return fmt.Errorf("layer marker: %w", err)
		}
		ml.Color = color.RGBA{R: 200, A: 255}
		ml.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
		p.Add(ml)
	}

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save depth profile: %w", err)
	}
	return nil
}

func maxFloat(vs []float64) float64 {
	m := 0.0
	for _, v := range vs {
		if v > m {
			m = v
		}
	}
	return m
}

// generateColors returns n visually distinct colors spread around the hue
// circle.
func generateColors(n int) []color.Color {
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(max(n, 1))
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return q
	}
}
