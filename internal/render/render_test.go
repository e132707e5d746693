package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/telemetry"
)

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestPNGRendersSeries(t *testing.T) {
	t.Parallel()

	c := telemetry.Chart{
		ID:    "memory",
		Title: "Memory Usage (MB)",
		Unit:  "MB",
		Series: []telemetry.Series{
			{Name: "Allocated", Points: []telemetry.Point{{Frame: 1, Value: 200}, {Frame: 2, Value: 201}, {Frame: 3, Value: 202}}},
			{Name: "Reserved", Points: []telemetry.Point{{Frame: 1, Value: 300}, {Frame: 2, Value: 300}, {Frame: 3, Value: 310}}},
		},
	}

	var buf bytes.Buffer
	if err := PNG(&buf, c, Options{Width: 640, Height: 320}); err != nil {
		t.Fatalf("PNG returned error: %v", err)
	}
	if w, h := decodeSize(t, buf.Bytes()); w != 640 || h != 320 {
		t.Fatalf("unexpected image size %dx%d", w, h)
	}
}

func TestPNGSinglePoint(t *testing.T) {
	t.Parallel()

	c := telemetry.Chart{
		ID:     "fps",
		Title:  "FPS Over Time",
		Series: []telemetry.Series{{Name: "FPS", Points: []telemetry.Point{{Frame: 1, Value: 60}}}},
	}

	var buf bytes.Buffer
	if err := PNG(&buf, c, Options{}); err != nil {
		t.Fatalf("PNG returned error: %v", err)
	}
	if w, h := decodeSize(t, buf.Bytes()); w != DefaultWidth || h != DefaultHeight {
		t.Fatalf("unexpected image size %dx%d", w, h)
	}
}

func TestPNGEmptyChartIsBlank(t *testing.T) {
	t.Parallel()

	c := telemetry.Chart{ID: "gc", Title: "GC Allocated Memory (KB)", Series: []telemetry.Series{{Name: "GC Allocated"}}}

	var buf bytes.Buffer
	if err := PNG(&buf, c, Options{Width: 300, Height: 150}); err != nil {
		t.Fatalf("PNG returned error: %v", err)
	}
	if w, h := decodeSize(t, buf.Bytes()); w != 300 || h != 150 {
		t.Fatalf("unexpected blank size %dx%d", w, h)
	}
}

func TestOptionsNormalized(t *testing.T) {
	t.Parallel()

	got := Options{Width: 10, Height: -1}.normalized()
	if got.Width != minWidth || got.Height != DefaultHeight {
		t.Fatalf("unexpected normalized options %+v", got)
	}
}

func TestFrameFormatter(t *testing.T) {
	t.Parallel()

	if got := frameFormatter(41.9999); got != "42" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := frameFormatter("x"); got != "" {
		t.Fatalf("unexpected label for non-float %q", got)
	}
}

func TestBlankUsesNormalizedSize(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Blank(&buf, Options{}); err != nil {
		t.Fatalf("Blank returned error: %v", err)
	}
	if w, h := decodeSize(t, buf.Bytes()); w != DefaultWidth || h != DefaultHeight {
		t.Fatalf("unexpected blank size %dx%d", w, h)
	}
}
