package report

import (
	"bytes"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"

	"geneflow_go/gene_flow"
)

// TrajectorySVG draws the allele frequency trajectory as an inline SVG document.
func TrajectorySVG(points []gene_flow.ProjectionPoint) (string, error) {
	p := plot.New()
	p.Title.Text = "Allele Frequency Trajectory"
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Frequency"

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.Generation)
		xys[i].Y = pt.Frequency
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return "", err
	}
	line.LineStyle.Color = color.RGBA{R: 50, G: 100, B: 200, A: 255}
	line.LineStyle.Width = vg.Points(2)
	p.Add(line, plotter.NewGrid())
	p.Legend.Add("Frequency", line)
	p.Legend.Top = true

	// Write to SVG
	c := vgsvg.New(10*vg.Inch, 4*vg.Inch)
	p.Draw(draw.New(c))
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
