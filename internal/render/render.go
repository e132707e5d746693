// Package render draws derived telemetry charts as PNG images.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/telemetry"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 400

	minWidth  = 200
	minHeight = 120
)

// Options controls the image size.
type Options struct {
	Width  int
	Height int
}

func (o Options) normalized() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Width < minWidth {
		o.Width = minWidth
	}
	if o.Height < minHeight {
		o.Height = minHeight
	}
	return o
}

// PNG renders the chart as a line chart keyed by frame index. Charts without
// any point produce a blank image of the requested size.
func PNG(w io.Writer, c telemetry.Chart, opts Options) error {
	opts = opts.normalized()

	series := buildSeries(c)
	if len(series) == 0 {
		return blank(w, opts.Width, opts.Height)
	}

	ch := chart.Chart{
		Title:      c.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           telemetry.FrameIndexKey,
			ValueFormatter: frameFormatter,
		},
		YAxis: chart.YAxis{
			Name:  c.Unit,
			Range: yRange(c),
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("render chart %s: %w", c.ID, err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write chart %s: %w", c.ID, err)
	}
	return nil
}

// Blank writes an empty white image, used when a chart cannot be drawn.
func Blank(w io.Writer, opts Options) error {
	opts = opts.normalized()
	return blank(w, opts.Width, opts.Height)
}

func buildSeries(c telemetry.Chart) []chart.Series {
	out := make([]chart.Series, 0, len(c.Series))
	for _, s := range c.Series {
		if len(s.Points) == 0 {
			continue
		}
		xs := make([]float64, 0, len(s.Points)+1)
		ys := make([]float64, 0, len(s.Points)+1)
		for _, p := range s.Points {
			xs = append(xs, float64(p.Frame))
			ys = append(ys, p.Value)
		}
		// go-chart needs two distinct X values to compute a range.
		if len(xs) == 1 {
			xs = append(xs, xs[0]+1)
			ys = append(ys, ys[0])
		}
		out = append(out, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
		})
	}
	return out
}

// yRange widens flat charts so the renderer does not reject a zero delta.
func yRange(c telemetry.Chart) chart.Range {
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range c.Series {
		for _, p := range s.Points {
			minY = math.Min(minY, p.Value)
			maxY = math.Max(maxY, p.Value)
		}
	}
	if math.IsInf(minY, 0) || minY != maxY {
		return nil
	}
	return &chart.ContinuousRange{Min: minY - 1, Max: maxY + 1}
}

func frameFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatInt(int64(math.Round(f)), 10)
	}
	return ""
}

func blank(w io.Writer, width, height int) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode blank chart: %w", err)
	}
	return nil
}
