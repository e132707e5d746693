package telemetry

import (
	"fmt"
	"math"
	"strings"
)

const (
	kilobytesPerMegabyte = 1024
	millisPerSecond      = 1000
)

// Group is an independently toggleable chart group of the dashboard.
type Group string

const (
	GroupFPS       Group = "fps"
	GroupCPU       Group = "cpu"
	GroupGPU       Group = "gpu"
	GroupMemory    Group = "memory"
	GroupGC        Group = "gc"
	GroupAudio     Group = "audio"
	GroupDraw      Group = "draw"
	GroupPhysics   Group = "physics"
	GroupUI        Group = "ui"
	GroupAnimation Group = "animation"
)

// GroupInfo describes one entry of the toggle menu.
type GroupInfo struct {
	ID    Group  `json:"id"`
	Label string `json:"label"`
}

var groupMenu = []GroupInfo{
	{ID: GroupFPS, Label: "FPS"},
	{ID: GroupCPU, Label: "CPU/Main/Render Threads"},
	{ID: GroupGPU, Label: "GPU Frame Time"},
	{ID: GroupMemory, Label: "Memory Usage"},
	{ID: GroupGC, Label: "GC Allocated"},
	{ID: GroupAudio, Label: "Audio Stats"},
	{ID: GroupDraw, Label: "Draw/Render Stats"},
	{ID: GroupPhysics, Label: "Physics"},
	{ID: GroupUI, Label: "UI Stats"},
	{ID: GroupAnimation, Label: "Animation"},
}

// Groups returns the toggle menu in display order.
func Groups() []GroupInfo {
	return append([]GroupInfo(nil), groupMenu...)
}

// Selection is the set of enabled chart groups.
type Selection map[Group]bool

// ParseSelection validates group ids. Comma separated entries are split.
func ParseSelection(ids []string) (Selection, error) {
	sel := make(Selection, len(ids))
	for _, entry := range ids {
		for _, id := range strings.Split(entry, ",") {
			id = strings.ToLower(strings.TrimSpace(id))
			if id == "" {
				continue
			}
			if !knownGroup(Group(id)) {
				return nil, fmt.Errorf("unknown chart group %q", id)
			}
			sel[Group(id)] = true
		}
	}
	return sel, nil
}

// AllGroups selects every chart group.
func AllGroups() Selection {
	sel := make(Selection, len(groupMenu))
	for _, info := range groupMenu {
		sel[info.ID] = true
	}
	return sel
}

// IDs lists the enabled groups in menu order.
func (s Selection) IDs() []Group {
	out := make([]Group, 0, len(s))
	for _, info := range groupMenu {
		if s[info.ID] {
			out = append(out, info.ID)
		}
	}
	return out
}

func knownGroup(g Group) bool {
	for _, info := range groupMenu {
		if info.ID == g {
			return true
		}
	}
	return false
}

// Chart is a set of series keyed by frame index.
type Chart struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Unit   string   `json:"unit,omitempty"`
	Series []Series `json:"series"`
}

// Series is one named line of a chart.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Point is a derived value for one frame.
type Point struct {
	Frame int64   `json:"frame"`
	Value float64 `json:"value"`
}

// Empty reports whether the chart has no points at all.
func (c Chart) Empty() bool {
	for _, s := range c.Series {
		if len(s.Points) > 0 {
			return false
		}
	}
	return true
}

type derivation func(frame Frame) (float64, bool)

type seriesSpec struct {
	group  Group
	name   string
	derive derivation
}

type chartSpec struct {
	id     string
	title  string
	unit   string
	series []seriesSpec
}

// raw passes the counter through. Absent values chart as 0, values of the
// wrong type are left out.
func raw(field Field) derivation {
	return func(frame Frame) (float64, bool) {
		if frame.Invalid(field) {
			return 0, false
		}
		return frame.Value(field), true
	}
}

func megabytes(field Field) derivation {
	return func(frame Frame) (float64, bool) {
		if frame.Invalid(field) {
			return 0, false
		}
		return KilobytesToMegabytes(frame.Value(field)), true
	}
}

func fps(frame Frame) (float64, bool) {
	frameTime, ok := frame.Lookup(FrameTimeMS)
	if !ok {
		return 0, false
	}
	return FPS(frameTime)
}

// FPS converts a frame time in milliseconds to frames per second. Frame
// times that are zero, negative or so small the rate overflows have no
// defined rate.
func FPS(frameTimeMS float64) (float64, bool) {
	if frameTimeMS <= 0 {
		return 0, false
	}
	if fps := millisPerSecond / frameTimeMS; !math.IsInf(fps, 0) {
		return fps, true
	}
	return 0, false
}

// KilobytesToMegabytes converts KB counters to MB.
func KilobytesToMegabytes(kb float64) float64 {
	return kb / kilobytesPerMegabyte
}

var chartLayout = []chartSpec{
	{
		id:    "fps",
		title: "FPS Over Time",
		series: []seriesSpec{
			{group: GroupFPS, name: "FPS", derive: fps},
		},
	},
	{
		id:    "frametimes",
		title: "Frame Times (ms)",
		unit:  "ms",
		series: []seriesSpec{
			{group: GroupCPU, name: "Main Thread", derive: raw(MainThreadTimeMS)},
			{group: GroupCPU, name: "Render Thread", derive: raw(RenderThreadTimeMS)},
			{group: GroupGPU, name: "GPU", derive: raw(GPUFrameTimeMS)},
		},
	},
	{
		id:    "memory",
		title: "Memory Usage (MB)",
		unit:  "MB",
		series: []seriesSpec{
			{group: GroupMemory, name: "Allocated", derive: megabytes(TotalAllocatedMemoryKB)},
			{group: GroupMemory, name: "Reserved", derive: megabytes(TotalReservedMemoryKB)},
			{group: GroupMemory, name: "GC Reserved", derive: megabytes(GCReservedMemoryKB)},
			{group: GroupMemory, name: "System Used", derive: megabytes(SystemUsedMemoryKB)},
		},
	},
	{
		id:    "gc",
		title: "GC Allocated Memory (KB)",
		unit:  "KB",
		series: []seriesSpec{
			{group: GroupGC, name: "GC Allocated", derive: raw(GCAllocatedMemoryKB)},
		},
	},
	{
		id:    "draw",
		title: "Rendering Stats",
		series: []seriesSpec{
			{group: GroupDraw, name: DrawCalls.Key(), derive: raw(DrawCalls)},
			{group: GroupDraw, name: TriangleCount.Key(), derive: raw(TriangleCount)},
			{group: GroupDraw, name: VertexCount.Key(), derive: raw(VertexCount)},
			{group: GroupDraw, name: BatchCount.Key(), derive: raw(BatchCount)},
			{group: GroupDraw, name: ShadowCasterCount.Key(), derive: raw(ShadowCasterCount)},
		},
	},
	{
		id:    "physics",
		title: "Physics Queries & Memory (MB)",
		series: []seriesSpec{
			{group: GroupPhysics, name: "3D Queries", derive: raw(PhysicsQueries)},
			{group: GroupPhysics, name: "2D Queries", derive: raw(Physics2DQueries)},
			{group: GroupPhysics, name: "3D Memory", derive: megabytes(PhysicsUsedMemoryKB)},
			{group: GroupPhysics, name: "2D Memory", derive: megabytes(Physics2DUsedMemoryKB)},
		},
	},
	{
		id:    "audio",
		title: "Audio Stats",
		series: []seriesSpec{
			{group: GroupAudio, name: "Reserved", derive: megabytes(AudioReservedMemoryKB)},
			{group: GroupAudio, name: "Used", derive: megabytes(AudioUsedMemoryKB)},
			{group: GroupAudio, name: "Clip Memory", derive: megabytes(AudioClipMemoryKB)},
			{group: GroupAudio, name: "Clip Count", derive: raw(AudioClipCount)},
			{group: GroupAudio, name: "Reads", derive: raw(AudioReads)},
		},
	},
	{
		id:    "ui",
		title: "UI Render & Layout Times (ms)",
		unit:  "ms",
		series: []seriesSpec{
			{group: GroupUI, name: "Layout Time", derive: raw(UILayoutMS)},
			{group: GroupUI, name: "Render Time", derive: raw(UIRenderMS)},
		},
	},
	{
		id:    "animation",
		title: "Animation Stats",
		series: []seriesSpec{
			{group: GroupAnimation, name: "Clip Memory (MB)", derive: megabytes(AnimationClipMemoryKB)},
			{group: GroupAnimation, name: "Clip Count", derive: raw(AnimationClipCount)},
			{group: GroupAnimation, name: "Update Time (ms)", derive: raw(AnimationUpdateMS)},
		},
	},
}

// ChartIDs lists every chart id in display order.
func ChartIDs() []string {
	out := make([]string, 0, len(chartLayout))
	for _, spec := range chartLayout {
		out = append(out, spec.id)
	}
	return out
}

// BuildCharts derives the charts of the enabled groups. Frames are read only;
// every call recomputes the series from scratch.
func BuildCharts(frames []Frame, sel Selection) []Chart {
	charts := make([]Chart, 0, len(chartLayout))
	for _, spec := range chartLayout {
		chart, ok := buildChart(spec, frames, sel)
		if ok {
			charts = append(charts, chart)
		}
	}
	return charts
}

// BuildChart derives a single chart by id. The chart is reported missing when
// none of its groups is enabled.
func BuildChart(id string, frames []Frame, sel Selection) (Chart, bool) {
	for _, spec := range chartLayout {
		if spec.id == id {
			return buildChart(spec, frames, sel)
		}
	}
	return Chart{}, false
}

func buildChart(spec chartSpec, frames []Frame, sel Selection) (Chart, bool) {
	chart := Chart{ID: spec.id, Title: spec.title, Unit: spec.unit}
	for _, s := range spec.series {
		if !sel[s.group] {
			continue
		}
		chart.Series = append(chart.Series, deriveSeries(s, frames))
	}
	if len(chart.Series) == 0 {
		return Chart{}, false
	}
	return chart, true
}

func deriveSeries(spec seriesSpec, frames []Frame) Series {
	series := Series{Name: spec.name, Points: make([]Point, 0, len(frames))}
	for _, frame := range frames {
		value, ok := spec.derive(frame)
		if !ok {
			continue
		}
		series.Points = append(series.Points, Point{Frame: frame.Index, Value: value})
	}
	return series
}
