package telemetry

import (
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

func TestFPS(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		frameTime float64
		want      float64
		ok        bool
	}{
		{16.6667, 1000 / 16.6667, true},
		{33.3333, 1000 / 33.3333, true},
		{0, 0, false},
		{-5, 0, false},
		{1e-320, 0, false},
	}
	for _, tc := range testCases {
		got, ok := FPS(tc.frameTime)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("FPS(%v) = %v, %v; want %v, %v", tc.frameTime, got, ok, tc.want, tc.ok)
		}
	}
}

func TestBuildChartsScenario(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`{"frames":[{"frame":1,"frameTime_ms":16.6667}]}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	charts := BuildCharts(doc.Frames, Selection{GroupFPS: true})
	if len(charts) != 1 || charts[0].ID != "fps" {
		t.Fatalf("expected only the fps chart, got %+v", charts)
	}
	points := charts[0].Series[0].Points
	if len(points) != 1 || points[0].Frame != 1 {
		t.Fatalf("unexpected points %+v", points)
	}
	if math.Abs(points[0].Value-60.0) > 0.01 {
		t.Fatalf("expected ~60 fps, got %v", points[0].Value)
	}
}

func TestBuildChartsTinyFrameTimeEncodes(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`{"frames":[{"frame":1,"frameTime_ms":1e-320},{"frame":2,"frameTime_ms":20}]}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	charts := BuildCharts(doc.Frames, AllGroups())
	points := charts[0].Series[0].Points
	if diff := cmp.Diff([]Point{{Frame: 2, Value: 50}}, points); diff != "" {
		t.Fatalf("fps points mismatch (-want +got):\n%s", diff)
	}
	if _, err := json.Marshal(charts); err != nil {
		t.Fatalf("charts must encode as JSON: %v", err)
	}
}

func TestBuildChartsFixture(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)
	charts := BuildCharts(doc.Frames, AllGroups())

	var ids []string
	for _, chart := range charts {
		ids = append(ids, chart.ID)
	}
	if diff := cmp.Diff(ChartIDs(), ids); diff != "" {
		t.Fatalf("chart order mismatch (-want +got):\n%s", diff)
	}

	// Zero frame time on frame 3 leaves a gap in the FPS series.
	fpsChart := charts[0]
	var fpsFrames []int64
	for _, p := range fpsChart.Series[0].Points {
		fpsFrames = append(fpsFrames, p.Frame)
	}
	if diff := cmp.Diff([]int64{1, 2}, fpsFrames); diff != "" {
		t.Fatalf("fps frames mismatch (-want +got):\n%s", diff)
	}

	// Invalid main thread value on frame 3 is omitted, absent GPU values chart as 0.
	frameTimes, ok := BuildChart("frametimes", doc.Frames, AllGroups())
	if !ok {
		t.Fatalf("frametimes chart missing")
	}
	want := []Series{
		{Name: "Main Thread", Points: []Point{{1, 8.5}, {2, 20}}},
		{Name: "Render Thread", Points: []Point{{1, 4.25}, {2, 0}, {3, 0}}},
		{Name: "GPU", Points: []Point{{1, 12}, {2, 0}, {3, 0}}},
	}
	if diff := cmp.Diff(want, frameTimes.Series); diff != "" {
		t.Fatalf("frame time series mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryChartMegabytes(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)
	chart, ok := BuildChart("memory", doc.Frames, Selection{GroupMemory: true})
	if !ok {
		t.Fatalf("memory chart missing")
	}

	allocated := chart.Series[0]
	if allocated.Name != "Allocated" {
		t.Fatalf("unexpected first series %q", allocated.Name)
	}
	for i, point := range allocated.Points {
		kb := doc.Frames[i].Value(TotalAllocatedMemoryKB)
		if point.Value != kb/1024 {
			t.Fatalf("frame %d: got %v MB, want %v", point.Frame, point.Value, kb/1024)
		}
		if point.Frame != doc.Frames[i].Index {
			t.Fatalf("frame order not preserved at %d", i)
		}
	}
	if allocated.Points[0].Value != 200 {
		t.Fatalf("expected 200 MB, got %v", allocated.Points[0].Value)
	}
}

func TestToggleRemovesOnlyItsSeries(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)

	both := BuildCharts(doc.Frames, Selection{GroupCPU: true, GroupGPU: true, GroupGC: true})
	gpuOff := BuildCharts(doc.Frames, Selection{GroupCPU: true, GroupGC: true})

	if len(both) != 2 || len(gpuOff) != 2 {
		t.Fatalf("unexpected chart counts %d/%d", len(both), len(gpuOff))
	}
	if len(both[0].Series) != 3 || len(gpuOff[0].Series) != 2 {
		t.Fatalf("gpu toggle should drop one series: %d -> %d", len(both[0].Series), len(gpuOff[0].Series))
	}
	if diff := cmp.Diff(both[1], gpuOff[1]); diff != "" {
		t.Fatalf("gc chart changed by unrelated toggle:\n%s", diff)
	}

	none := BuildCharts(doc.Frames, Selection{GroupGC: true})
	if len(none) != 1 || none[0].ID != "gc" {
		t.Fatalf("frame time chart should disappear with both groups off: %+v", none)
	}
}

func TestBuildChartsDeterministic(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)
	first := BuildCharts(doc.Frames, AllGroups())
	second := BuildCharts(doc.Frames, AllGroups())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("derivation is not deterministic:\n%s", diff)
	}
	if doc.Frames[0].Value(TotalAllocatedMemoryKB) != 204800 {
		t.Fatalf("frames mutated by derivation")
	}
}

func TestParseSelection(t *testing.T) {
	t.Parallel()

	sel, err := ParseSelection([]string{"fps, memory", "GPU", ""})
	if err != nil {
		t.Fatalf("ParseSelection returned error: %v", err)
	}
	if diff := cmp.Diff([]Group{GroupFPS, GroupGPU, GroupMemory}, sel.IDs()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}

	if _, err := ParseSelection([]string{"fps,bogus"}); err == nil {
		t.Fatalf("expected error for unknown group")
	}
}
