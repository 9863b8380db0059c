package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"log"
	"math/rand"
	"time"

	"solardash/domain/dataset"
	"solardash/ports"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	_ "gonum.org/v1/plot/vg/vgimg"
	_ "gonum.org/v1/plot/vg/vgsvg"
)

// Config controls chart dimensions and labels
type Config struct {
	Width    vg.Length
	Height   vg.Length
	BoxWidth vg.Length
	XLabel   string
	// MaxPoints caps the jittered points drawn over each box; negative draws none
	MaxPoints int
}

// DefaultConfig returns the dashboard chart layout
func DefaultConfig() Config {
	return Config{
		Width:    9 * vg.Inch,
		Height:   5 * vg.Inch,
		BoxWidth:  vg.Points(28),
		XLabel:    "Country",
		MaxPoints: 500,
	}
}

// BoxPlotRenderer renders per-group boxplots with gonum/plot
type BoxPlotRenderer struct {
	config Config
}

var _ ports.ChartRenderer = (*BoxPlotRenderer)(nil)

// NewBoxPlotRenderer creates a renderer
func NewBoxPlotRenderer(config Config) *BoxPlotRenderer {
	def := DefaultConfig()
	if config.Width <= 0 {
		config.Width = def.Width
	}
	if config.Height <= 0 {
		config.Height = def.Height
	}
	if config.BoxWidth <= 0 {
		config.BoxWidth = def.BoxWidth
	}
	if config.XLabel == "" {
		config.XLabel = def.XLabel
	}
	if config.MaxPoints == 0 {
		config.MaxPoints = def.MaxPoints
	}
	return &BoxPlotRenderer{config: config}
}

// Title is the chart heading for a metric
func Title(metric string) string {
	return fmt.Sprintf("%s Distribution by Country", metric)
}

// RenderBoxPlot draws one box per series in the given order. With no series
// the chart is an empty frame carrying only the title.
func (r *BoxPlotRenderer) RenderBoxPlot(series []dataset.GroupSeries, metric, format string) ([]byte, error) {
	start := time.Now()
	if format == "" {
		format = ports.ChartSVG
	}
	if format != ports.ChartSVG && format != ports.ChartPNG {
		return nil, fmt.Errorf("unsupported chart format %q", format)
	}

	p := plot.New()
	p.Title.Text = Title(metric)
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = r.config.XLabel
	p.Y.Label.Text = metric
	p.Add(plotter.NewGrid())

	names := make([]string, 0, len(series))
	for i, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(r.config.BoxWidth, float64(len(names)), plotter.Values(s.Values))
		if err != nil {
			return nil, fmt.Errorf("failed to build box for %s: %w", s.Group, err)
		}
		box.FillColor = withAlpha(plotutil.Color(i), 0x99)
		p.Add(box)

		if r.config.MaxPoints > 0 {
			rng := rand.New(rand.NewSource(int64(len(names)) + 1))
			points, err := plotter.NewScatter(pointsFor(s.Values, float64(len(names)), r.config.MaxPoints, rng))
			if err != nil {
				return nil, fmt.Errorf("failed to build points for %s: %w", s.Group, err)
			}
			points.GlyphStyle.Shape = draw.CircleGlyph{}
			points.GlyphStyle.Radius = vg.Points(1.5)
			points.GlyphStyle.Color = withAlpha(plotutil.Color(i), 0xcc)
			p.Add(points)
		}
		names = append(names, s.Group)
	}

	if len(names) == 0 {
		p.X.Min, p.X.Max = 0, 1
		p.Y.Min, p.Y.Max = 0, 1
		p.HideAxes()
	} else {
		p.NominalX(names...)
		p.X.Tick.Label.XAlign = draw.XCenter
	}

	wt, err := p.WriterTo(r.config.Width, r.config.Height, format)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s canvas: %w", format, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write chart: %w", err)
	}

	log.Printf("[Chart] %s boxplot rendered in %.2fms (%d groups, %d bytes)",
		format, float64(time.Since(start).Nanoseconds())/1e6, len(names), buf.Len())
	return buf.Bytes(), nil
}

// pointJitter is the largest horizontal offset of a point from its box center
const pointJitter = 0.2

// pointsFor places every value at center plus a small random x offset. Groups
// larger than max are thinned to an even stride of max values.
func pointsFor(values []float64, center float64, max int, rng *rand.Rand) plotter.XYs {
	step := 1
	if max > 0 && len(values) > max {
		step = (len(values) + max - 1) / max
	}
	xys := make(plotter.XYs, 0, (len(values)+step-1)/step)
	for i := 0; i < len(values); i += step {
		xys = append(xys, plotter.XY{
			X: center + (rng.Float64()*2-1)*pointJitter,
			Y: values[i],
		})
	}
	return xys
}

func withAlpha(c color.Color, a uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: a}
}
