// Package heatmap renders the trait distribution heatmap: a random grid drawn
// through a fixed color map with a color-scale legend, encoded as PNG.
package heatmap

import (
	"bytes"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"geneflow_go/apperr"
)

const (
	GridSize        = 10
	Title           = "Trait Distribution Heatmap"
	MediaType       = "image/png"
	DefaultColorMap = "blackbody"

	paletteSize = 256
	legendWidth = 0.9 * vg.Inch
)

// Default canvas size, matching an 8x6 inch figure.
var (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

var colorMaps = map[string]func() palette.ColorMap{
	"blackbody":          moreland.BlackBody,
	"extended_blackbody": moreland.ExtendedBlackBody,
	"kindlmann":          moreland.Kindlmann,
	"extended_kindlmann": moreland.ExtendedKindlmann,
	"smooth_blue_red":    func() palette.ColorMap { return moreland.SmoothBlueRed() },
}

// ColorMapNames lists the accepted color map names in sorted order.
func ColorMapNames() []string {
	names := make([]string, 0, len(colorMaps))
	for n := range colorMaps {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewColorMap returns a fresh color map spanning [0, 1].
func NewColorMap(name string) (palette.ColorMap, error) {
	build, ok := colorMaps[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown color map %q (valid: %s)", name, strings.Join(ColorMapNames(), ", "))
	}
	cm := build()
	cm.SetMin(0)
	cm.SetMax(1)
	return cm, nil
}

// Grid is a row-major matrix of cell values.
type Grid [][]float64

// RandomGrid draws an n x n grid from next, which must return values in [0, 1).
func RandomGrid(n int, next func() float64) Grid {
	g := make(Grid, n)
	for r := range g {
		g[r] = make([]float64, n)
		for c := range g[r] {
			g[r][c] = next()
		}
	}
	return g
}

// Dims, Z, X and Y satisfy plotter.GridXYZ. Row 0 is drawn at the top.
func (g Grid) Dims() (c, r int) {
	if len(g) == 0 {
		return 0, 0
	}
	return len(g[0]), len(g)
}
func (g Grid) Z(c, r int) float64 { return g[r][c] }
func (g Grid) X(c int) float64    { return float64(c) }
func (g Grid) Y(r int) float64    { return float64(len(g) - 1 - r) }

// Image is a rendered heatmap.
type Image struct {
	Grid      Grid   `json:"grid"`
	MediaType string `json:"media_type"`
	Data      []byte `json:"data"`
}

// Options configures a Renderer. Zero values fall back to the defaults.
type Options struct {
	ColorMap string
	Width    vg.Length
	Height   vg.Length
}

// Renderer draws heatmaps. It holds no per-render state and is safe for concurrent use.
type Renderer struct {
	colorMap string
	width    vg.Length
	height   vg.Length
	next     func() float64
}

// NewRenderer validates opts and returns a Renderer drawing unseeded uniform values.
func NewRenderer(opts Options) (*Renderer, error) {
	r := &Renderer{
		colorMap: opts.ColorMap,
		width:    opts.Width,
		height:   opts.Height,
		next:     rand.Float64,
	}
	if r.colorMap == "" {
		r.colorMap = DefaultColorMap
	}
	if r.width <= 0 {
		r.width = DefaultWidth
	}
	if r.height <= 0 {
		r.height = DefaultHeight
	}
	if r.width <= legendWidth {
		return nil, fmt.Errorf("heatmap width %v leaves no room for the color bar", r.width)
	}
	if _, err := NewColorMap(r.colorMap); err != nil {
		return nil, err
	}
	return r, nil
}

// Render draws a fresh GridSize x GridSize grid and encodes it.
func (r *Renderer) Render() (*Image, error) {
	grid := RandomGrid(GridSize, r.next)
	data, err := r.Encode(grid)
	if err != nil {
		return nil, err
	}
	return &Image{Grid: grid, MediaType: MediaType, Data: data}, nil
}

// Encode renders grid as a titled heatmap with a vertical color bar and returns PNG bytes.
func (r *Renderer) Encode(grid Grid) (data []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = apperr.New("heatmap.encode", apperr.KindImageEncoding, "plot panicked: %v", rec)
		}
	}()

	cols, rows := grid.Dims()
	if cols == 0 || rows == 0 {
		return nil, apperr.New("heatmap.encode", apperr.KindImageEncoding, "empty grid")
	}

	cm, err := NewColorMap(r.colorMap)
	if err != nil {
		return nil, apperr.Wrap("heatmap.encode", apperr.KindImageEncoding, err)
	}

	// A. Heat map panel
	p := plot.New()
	p.Title.Text = Title
	p.X.Label.Text = "Column"
	p.Y.Label.Text = "Row"
	p.X.Tick.Marker = integerTicks{}
	p.Y.Tick.Marker = rowTicks{rows: rows}

	hm := plotter.NewHeatMap(grid, cm.Palette(paletteSize))
	hm.Min, hm.Max = 0, 1
	p.Add(hm)

	// B. Color scale legend
	bar := plot.New()
	bar.HideX()
	bar.Y.Padding = 0
	bar.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true})

	// C. Compose both panels on a single canvas
	img := vgimg.New(r.width, r.height)
	dc := draw.New(img)
	p.Draw(draw.Crop(dc, 0, -legendWidth, 0, 0))
	barLeft := dc.Max.X - dc.Min.X - legendWidth + 0.2*vg.Inch
	bar.Draw(draw.Crop(dc, barLeft, 0, 0.45*vg.Inch, -0.45*vg.Inch))

	// D. Export PNG
	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, apperr.Wrap("heatmap.encode", apperr.KindImageEncoding, err)
	}
	return buf.Bytes(), nil
}

// integerTicks labels every whole grid index.
type integerTicks struct{}

func (integerTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for i := int(math.Ceil(min)); i <= int(math.Floor(max)); i++ {
		ticks = append(ticks, plot.Tick{
			Value: float64(i),
			Label: fmt.Sprintf("%d", i),
		})
	}
	return ticks
}

// rowTicks labels plot positions with the grid row drawn there.
type rowTicks struct{ rows int }

func (t rowTicks) Ticks(min, max float64) []plot.Tick {
	ticks := integerTicks{}.Ticks(min, max)
	for i := range ticks {
		ticks[i].Label = fmt.Sprintf("%d", t.rows-1-int(ticks[i].Value))
	}
	return ticks
}
