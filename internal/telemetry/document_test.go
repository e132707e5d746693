package telemetry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func loadFixture(t *testing.T) *Document {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", "session.json"))
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()

	doc, err := Load(f)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	return doc
}

func TestLoadFixture(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)

	wantMeta := Metadata{
		GameName:  "Sky Runner",
		SessionID: "a1b2c3",
		StartTime: "2025-03-01T10:00:00Z",
		EndTime:   "2025-03-01T10:05:00Z",
	}
	if diff := cmp.Diff(wantMeta, doc.Metadata); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}

	if len(doc.Frames) != 3 || len(doc.Records) != 3 {
		t.Fatalf("expected 3 frames and records, got %d/%d", len(doc.Frames), len(doc.Records))
	}
	for i, frame := range doc.Frames {
		if frame.Index != int64(i+1) {
			t.Fatalf("frame %d has index %d", i, frame.Index)
		}
	}

	if v, ok := doc.Frames[0].Lookup(GPUFrameTimeMS); !ok || v != 12 {
		t.Fatalf("unexpected gpu frame time %v (ok=%v)", v, ok)
	}
	if _, ok := doc.Frames[1].Lookup(GPUFrameTimeMS); ok {
		t.Fatalf("expected gpu frame time to be absent on frame 2")
	}
	if doc.Frames[1].Value(GPUFrameTimeMS) != 0 {
		t.Fatalf("absent field must default to 0")
	}
	if !doc.Frames[2].Invalid(MainThreadTimeMS) {
		t.Fatalf("expected string main thread time to be flagged invalid")
	}

	wantIssues := []Issue{{Frame: 2, Field: "mainThreadTime_ms", Reason: "not a number"}}
	if diff := cmp.Diff(wantIssues, doc.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}

	if doc.Analysis == nil {
		t.Fatalf("expected analysis to be loaded")
	}
}

func TestParseDefaults(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`{"frames":[{"frameTime_ms":10},{"frameTime_ms":20}]}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	want := Metadata{GameName: "-", SessionID: "-", StartTime: "-", EndTime: "-"}
	if diff := cmp.Diff(want, doc.Metadata); diff != "" {
		t.Fatalf("metadata defaults mismatch (-want +got):\n%s", diff)
	}
	if doc.Analysis != nil {
		t.Fatalf("expected nil analysis when absent")
	}
	if len(doc.Device.Rows) != 0 {
		t.Fatalf("expected empty device rows, got %+v", doc.Device.Rows)
	}
	// Frames without an index fall back to their position.
	if doc.Frames[0].Index != 0 || doc.Frames[1].Index != 1 {
		t.Fatalf("unexpected fallback indices %d, %d", doc.Frames[0].Index, doc.Frames[1].Index)
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		input         string
		missingFrames bool
	}{
		{"Empty", "", false},
		{"InvalidJSON", `{"frames": [`, false},
		{"TopLevelArray", `[{"frame":1}]`, false},
		{"NoFrames", `{"gameName":"x"}`, true},
		{"NullFrames", `{"frames":null}`, true},
		{"FramesNotArray", `{"frames":{"frame":1}}`, false},
		{"FrameNotObject", `{"frames":[1,2]}`, false},
		{"NullFrame", `{"frames":[null]}`, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tc.input))
			if err == nil {
				t.Fatalf("expected error for %q", tc.input)
			}
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
			if got := errors.Is(err, ErrMissingFrames); got != tc.missingFrames {
				t.Fatalf("errors.Is(ErrMissingFrames) = %v, want %v", got, tc.missingFrames)
			}
		})
	}
}

func TestParseZeroFrames(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`{"frames":[]}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(doc.Frames) != 0 {
		t.Fatalf("expected no frames, got %d", len(doc.Frames))
	}

	charts := BuildCharts(doc.Frames, AllGroups())
	for _, chart := range charts {
		if !chart.Empty() {
			t.Fatalf("chart %s should be empty", chart.ID)
		}
	}

	table := BuildTable(doc.Records)
	if len(table.Columns) != 0 || len(table.Rows) != 0 {
		t.Fatalf("expected empty table, got %+v", table)
	}
}

func TestDeviceRows(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`{"deviceInfo":{"model":"Pixel7"},"frames":[]}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(doc.Device.Rows) != 1 {
		t.Fatalf("expected exactly one device row, got %d", len(doc.Device.Rows))
	}
	if got := doc.Device.Rows[0].String(); got != "model: Pixel7" {
		t.Fatalf("unexpected device row %q", got)
	}
	if _, _, ok := doc.Device.GraphicsDeviceIDs(); ok {
		t.Fatalf("expected no graphics ids")
	}
}

func TestDeviceGraphicsIDs(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)

	vendor, device, ok := doc.Device.GraphicsDeviceIDs()
	if !ok {
		t.Fatalf("expected graphics ids to be present")
	}
	if vendor != 0x10de || device != 0x2208 {
		t.Fatalf("unexpected ids %#x/%#x", vendor, device)
	}

	var keys []string
	for _, row := range doc.Device.Rows {
		keys = append(keys, row.Key)
	}
	want := "model,systemMemorySize,graphicsDeviceVendorID,graphicsDeviceID"
	if strings.Join(keys, ",") != want {
		t.Fatalf("device rows out of document order: %v", keys)
	}
}

func TestDeviceRowsKeepDocumentOrder(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`{"deviceInfo":{"model":"Pixel7","os":"Android 14","extra":{"a":[1,{"b":2}]},"cpu":"Tensor"},"frames":[]}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	var rows []string
	for _, row := range doc.Device.Rows {
		rows = append(rows, row.String())
	}
	want := []string{"model: Pixel7", "os: Android 14", `extra: {"a":[1,{"b":2}]}`, "cpu: Tensor"}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("device rows mismatch (-want +got):\n%s", diff)
	}
}

func TestFrameIndexOutOfRange(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`{"frames":[{"frame":9223372036854775808,"drawCalls":1},{"frame":7}]}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if doc.Frames[0].Index != 0 {
		t.Fatalf("expected positional index for out of range frame, got %d", doc.Frames[0].Index)
	}
	if doc.Frames[1].Index != 7 {
		t.Fatalf("expected index 7, got %d", doc.Frames[1].Index)
	}
	want := []Issue{{Frame: 0, Field: "frame", Reason: "not an integer"}}
	if diff := cmp.Diff(want, doc.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestParseWrongTypedSections(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`{"deviceInfo":"phone","analysis":[1],"frames":[{"frame":"one","drawCalls":5}]}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if doc.Analysis != nil {
		t.Fatalf("expected analysis to be dropped")
	}
	if doc.Frames[0].Index != 0 {
		t.Fatalf("expected positional index, got %d", doc.Frames[0].Index)
	}
	if doc.Frames[0].Value(DrawCalls) != 5 {
		t.Fatalf("other fields of the frame must survive")
	}

	want := []Issue{
		{Frame: -1, Field: "deviceInfo", Reason: "not an object"},
		{Frame: -1, Field: "analysis", Reason: "not an object"},
		{Frame: 0, Field: "frame", Reason: "not a number"},
	}
	if diff := cmp.Diff(want, doc.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadReadError(t *testing.T) {
	t.Parallel()

	_, err := Load(failingReader{})
	if err == nil {
		t.Fatalf("expected read error")
	}
	if errors.Is(err, ErrMalformed) {
		t.Fatalf("read failures are not malformed documents: %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}
