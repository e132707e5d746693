package telemetry

import (
	"strconv"

	"github.com/goccy/go-json"
)

// rawPrecision prints the number in its shortest form instead of a fixed precision.
const rawPrecision = -1

const invalidText = "n/a"

// Summary is the formatted form of an Analysis.
type Summary struct {
	Grade           string           `json:"grade"`
	Bottleneck      string           `json:"bottleneck"`
	Sections        []SummarySection `json:"sections"`
	Recommendations []string         `json:"recommendations"`
}

// SummarySection groups the fields of one category.
type SummarySection struct {
	Title  string         `json:"title"`
	Fields []SummaryField `json:"fields"`
}

// SummaryField is one labeled figure of the summary.
type SummaryField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

func (f SummaryField) String() string {
	if f.Unit == "" || f.Value == invalidText {
		return f.Label + ": " + f.Value
	}
	return f.Label + ": " + f.Value + " " + f.Unit
}

type summaryFieldSpec struct {
	key       string
	label     string
	precision int
	unit      string
	divisor   float64
}

type summarySectionSpec struct {
	title  string
	fields []summaryFieldSpec
}

var summaryLayout = []summarySectionSpec{
	{
		title: "FPS",
		fields: []summaryFieldSpec{
			{key: "averageFPS", label: "Average FPS", precision: 2},
			{key: "minFPS", label: "Min FPS", precision: 2},
			{key: "maxFPS", label: "Max FPS", precision: 2},
			{key: "fpsStandardDeviation", label: "FPS Std. Dev", precision: 2},
		},
	},
	{
		title: "CPU / GPU",
		fields: []summaryFieldSpec{
			{key: "averageMainThreadTimeMs", label: "Avg CPU Main Thread Time", precision: 3, unit: "ms"},
			{key: "averageRenderThreadTimeMs", label: "Avg CPU Render Thread Time", precision: 3, unit: "ms"},
			{key: "averageGpuFrameTimeMs", label: "Avg GPU Time", precision: 3, unit: "ms"},
			{key: "maxGpuFrameTimeMs", label: "Max GPU Time", precision: 3, unit: "ms"},
		},
	},
	{
		title: "Memory",
		fields: []summaryFieldSpec{
			{key: "maxMemoryUsageKB", label: "Max Memory Usage", precision: 2, unit: "MB", divisor: kilobytesPerMegabyte},
			{key: "averageGcAllocatedInFrameKB", label: "Avg GC Allocated / Frame", precision: 2, unit: "KB"},
			{key: "averageGcReservedMB", label: "Avg GC Reserved", precision: 2, unit: "MB"},
			{key: "averageSystemUsedMB", label: "Avg System Used", precision: 2, unit: "MB"},
		},
	},
	{
		title: "Rendering",
		fields: []summaryFieldSpec{
			{key: "averageDrawCalls", label: "Avg Draw Calls", precision: 2},
			{key: "averageBatchCount", label: "Avg Batches", precision: 2},
			{key: "averageTriangleCount", label: "Avg Triangles", precision: 2},
			{key: "averageVertexCount", label: "Avg Vertices", precision: 2},
			{key: "averageShadowCasterCount", label: "Avg Shadow Casters", precision: 2},
		},
	},
	{
		title: "Audio",
		fields: []summaryFieldSpec{
			{key: "averageAudioUsedMemoryMB", label: "Avg Audio Used Memory", precision: 2, unit: "MB"},
			{key: "averageAudioReservedMemoryMB", label: "Avg Audio Reserved Memory", precision: 2, unit: "MB"},
			{key: "averageAudioClipMemoryMB", label: "Avg Audio Clip Memory", precision: 2, unit: "MB"},
			{key: "averageAudioClipCount", label: "Avg Audio Clip Count", precision: 2},
			{key: "averageAudioReads", label: "Avg Audio Reads", precision: rawPrecision},
		},
	},
	{
		title: "UI",
		fields: []summaryFieldSpec{
			{key: "averageUILayoutMs", label: "Avg UI Layout Time", precision: 3, unit: "ms"},
			{key: "averageUIRenderMs", label: "Avg UI Render Time", precision: 3, unit: "ms"},
		},
	},
	{
		title: "Physics",
		fields: []summaryFieldSpec{
			{key: "averagePhysicsQueries", label: "Avg Physics Queries", precision: 2},
			{key: "averagePhysics2DQueries", label: "Avg 2D Physics Queries", precision: 2},
			{key: "averagePhysicsUsedMemoryMB", label: "Avg Physics Memory (3D)", precision: 3, unit: "MB"},
			{key: "averagePhysics2DUsedMemoryMB", label: "Avg Physics Memory (2D)", precision: 3, unit: "MB"},
		},
	},
	{
		title: "Animation",
		fields: []summaryFieldSpec{
			{key: "averageAnimationClipMemoryMB", label: "Avg Animation Clip Memory", precision: 3, unit: "MB"},
			{key: "averageAnimationClipCount", label: "Avg Animation Clip Count", precision: rawPrecision},
			{key: "averageAnimationUpdateMs", label: "Avg Animation Update Time", precision: 3, unit: "ms"},
		},
	},
}

// Summarize formats the analysis into fixed, ordered sections. Absent keys
// fall back to 0 or "-"; a value of the wrong type only affects its own field.
func Summarize(analysis Analysis) Summary {
	summary := Summary{
		Grade:           analysis.text("grade"),
		Bottleneck:      analysis.text("bottleneck"),
		Sections:        make([]SummarySection, 0, len(summaryLayout)),
		Recommendations: analysis.recommendations(),
	}

	for _, sectionSpec := range summaryLayout {
		section := SummarySection{
			Title:  sectionSpec.title,
			Fields: make([]SummaryField, 0, len(sectionSpec.fields)),
		}
		for _, spec := range sectionSpec.fields {
			section.Fields = append(section.Fields, SummaryField{
				Key:   spec.key,
				Label: spec.label,
				Value: analysis.formatNumber(spec),
				Unit:  spec.unit,
			})
		}
		summary.Sections = append(summary.Sections, section)
	}

	return summary
}

// Field returns the formatted field with the given analysis key.
func (s Summary) Field(key string) (SummaryField, bool) {
	for _, section := range s.Sections {
		for _, field := range section.Fields {
			if field.Key == key {
				return field, true
			}
		}
	}
	return SummaryField{}, false
}

func (a Analysis) text(key string) string {
	raw, ok := a[key]
	if !ok || isNull(raw) {
		return missingText
	}
	return scalarText(raw)
}

func (a Analysis) formatNumber(spec summaryFieldSpec) string {
	value := 0.0
	if raw, ok := a[spec.key]; ok && !isNull(raw) {
		parsed, err := parseNumber(raw)
		if err != nil {
			return invalidText
		}
		value = parsed
	}
	if spec.divisor != 0 {
		value /= spec.divisor
	}
	return strconv.FormatFloat(value, 'f', spec.precision, 64)
}

func (a Analysis) recommendations() []string {
	raw, ok := a["recommendations"]
	if !ok || isNull(raw) {
		return []string{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{scalarText(raw)}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, scalarText(item))
	}
	return out
}
