package telemetry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildTable(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`{"frames":[
		{"frame":2,"zeta":"x","drawCalls":10,"frameTime_ms":16.50},
		{"frame":1,"alpha":true,"frameTime_ms":"bad"}
	]}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	table := BuildTable(doc.Records)

	want := Table{
		Columns: []string{"frame", "zeta", "drawCalls", "frameTime_ms", "alpha"},
		Rows: [][]string{
			{"2", "x", "10", "16.5", ""},
			{"1", "", "", "bad", "true"},
		},
	}
	if diff := cmp.Diff(want, table); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildView(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)

	var gotVendor, gotDevice uint32
	view := BuildView(doc, func(vendorID, deviceID uint32) string {
		gotVendor, gotDevice = vendorID, deviceID
		return "GA102 [GeForce RTX 3080 Ti]"
	})

	if gotVendor != 0x10de || gotDevice != 0x2208 {
		t.Fatalf("namer called with %#x/%#x", gotVendor, gotDevice)
	}
	if view.Device.GPUName != "GA102 [GeForce RTX 3080 Ti]" {
		t.Fatalf("unexpected gpu name %q", view.Device.GPUName)
	}
	if view.Summary == nil {
		t.Fatalf("expected summary")
	}
	if view.FrameCount != 3 {
		t.Fatalf("unexpected frame count %d", view.FrameCount)
	}
	if len(view.Groups) != 10 {
		t.Fatalf("expected 10 toggle groups, got %d", len(view.Groups))
	}

	bare, err := Parse([]byte(`{"frames":[]}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	bareView := BuildView(bare, nil)
	if bareView.Summary != nil {
		t.Fatalf("summary must be nil without analysis")
	}
	if bareView.Device.Rows == nil || bareView.Issues == nil {
		t.Fatalf("empty collections should encode as []")
	}
}
