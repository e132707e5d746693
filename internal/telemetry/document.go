// Package telemetry loads Unity performance captures and derives the summary,
// chart series and raw table shown by the dashboard.
package telemetry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

const missingText = "-"

var (
	// ErrMalformed reports a document that cannot be presented at all.
	ErrMalformed = errors.New("malformed telemetry document")
	// ErrMissingFrames reports a document without a frames collection.
	ErrMissingFrames = fmt.Errorf("%w: frames collection is missing", ErrMalformed)
)

// Document is the in-memory form of one uploaded capture.
type Document struct {
	Metadata Metadata
	Device   Device
	// Analysis is nil when the capture carries no pre-computed analysis.
	Analysis Analysis
	Frames   []Frame
	Records  []Record
	Issues   []Issue
}

// Metadata describes the captured session.
type Metadata struct {
	GameName  string `json:"game_name"`
	SessionID string `json:"session_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Record is one frame exactly as it appeared in the document.
type Record struct {
	keys   []string
	values map[string]json.RawMessage
}

// Keys returns the field names of the record in document order.
func (r Record) Keys() []string {
	return r.keys
}

// Get returns the raw value stored under key.
func (r Record) Get(key string) (json.RawMessage, bool) {
	raw, ok := r.values[key]
	return raw, ok
}

// Analysis is the flat metric-name to value mapping computed by the capture tool.
type Analysis map[string]json.RawMessage

// Issue reports a field present with the wrong type. Frame is the ordinal of
// the record, or -1 for document-level fields.
type Issue struct {
	Frame  int    `json:"frame"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type fieldState uint8

const (
	fieldAbsent fieldState = iota
	fieldValid
	fieldInvalid
)

// Frame holds the numeric counters of one captured frame.
type Frame struct {
	Index  int64
	values [fieldCount]float64
	state  [fieldCount]fieldState
}

// Lookup returns the field value and whether it was present with a numeric type.
func (f Frame) Lookup(field Field) (float64, bool) {
	if field < 0 || field >= fieldCount || f.state[field] != fieldValid {
		return 0, false
	}
	return f.values[field], true
}

// Value returns the field value, or 0 when it is absent or invalid.
func (f Frame) Value(field Field) float64 {
	v, _ := f.Lookup(field)
	return v
}

// Invalid reports whether the field was present with a non-numeric type.
func (f Frame) Invalid(field Field) bool {
	return field >= 0 && field < fieldCount && f.state[field] == fieldInvalid
}

// Set stores a numeric value for the field.
func (f *Frame) Set(field Field, value float64) {
	if field < 0 || field >= fieldCount {
		return
	}
	f.values[field] = value
	f.state[field] = fieldValid
}

type rawDocument struct {
	GameName   json.RawMessage `json:"gameName"`
	SessionID  json.RawMessage `json:"sessionId"`
	StartTime  json.RawMessage `json:"startTime"`
	EndTime    json.RawMessage `json:"endTime"`
	DeviceInfo json.RawMessage `json:"deviceInfo"`
	Analysis   json.RawMessage `json:"analysis"`
	Frames     json.RawMessage `json:"frames"`
}

// Load reads and parses a capture document.
func Load(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Parse(data)
}

// Parse decodes a capture document. Only the frames collection is required;
// every other field falls back to a neutral default.
func Parse(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformed)
	}

	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if isNull(raw.Frames) {
		return nil, ErrMissingFrames
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw.Frames, &elements); err != nil {
		return nil, fmt.Errorf("%w: frames must be an array", ErrMalformed)
	}

	doc := &Document{
		Metadata: Metadata{
			GameName:  scalarOrMissing(raw.GameName),
			SessionID: scalarOrMissing(raw.SessionID),
			StartTime: scalarOrMissing(raw.StartTime),
			EndTime:   scalarOrMissing(raw.EndTime),
		},
		Frames:  make([]Frame, 0, len(elements)),
		Records: make([]Record, 0, len(elements)),
	}

	if !isNull(raw.DeviceInfo) {
		var entries map[string]json.RawMessage
		if err := json.Unmarshal(raw.DeviceInfo, &entries); err != nil {
			doc.Issues = append(doc.Issues, Issue{Frame: -1, Field: "deviceInfo", Reason: "not an object"})
		} else {
			doc.Device = newDevice(orderedKeys(raw.DeviceInfo, entries), entries)
		}
	}

	if !isNull(raw.Analysis) {
		var analysis Analysis
		if err := json.Unmarshal(raw.Analysis, &analysis); err != nil {
			doc.Issues = append(doc.Issues, Issue{Frame: -1, Field: "analysis", Reason: "not an object"})
		} else {
			doc.Analysis = analysis
		}
	}

	for i, element := range elements {
		var values map[string]json.RawMessage
		if isNull(element) {
			return nil, fmt.Errorf("%w: frame %d is not an object", ErrMalformed, i)
		}
		if err := json.Unmarshal(element, &values); err != nil {
			return nil, fmt.Errorf("%w: frame %d is not an object", ErrMalformed, i)
		}
		record := Record{keys: orderedKeys(element, values), values: values}
		frame, issues := decodeFrame(i, record)
		doc.Frames = append(doc.Frames, frame)
		doc.Records = append(doc.Records, record)
		doc.Issues = append(doc.Issues, issues...)
	}

	return doc, nil
}

func decodeFrame(ordinal int, record Record) (Frame, []Issue) {
	var (
		frame  = Frame{Index: int64(ordinal)}
		issues []Issue
	)

	if raw, ok := record.Get(FrameIndexKey); ok && !isNull(raw) {
		index, err := parseNumber(raw)
		switch {
		case err != nil:
			issues = append(issues, Issue{Frame: ordinal, Field: FrameIndexKey, Reason: "not a number"})
		case index != math.Trunc(index) || math.Abs(index) >= math.MaxInt64:
			issues = append(issues, Issue{Frame: ordinal, Field: FrameIndexKey, Reason: "not an integer"})
		default:
			frame.Index = int64(index)
		}
	}

	for f, key := range fieldKeys {
		raw, ok := record.Get(key)
		if !ok || isNull(raw) {
			continue
		}
		value, err := parseNumber(raw)
		if err != nil {
			frame.state[f] = fieldInvalid
			issues = append(issues, Issue{Frame: ordinal, Field: key, Reason: "not a number"})
			continue
		}
		frame.Set(Field(f), value)
	}

	return frame, issues
}

func parseNumber(raw json.RawMessage) (float64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] == '"' || trimmed[0] == '{' || trimmed[0] == '[' {
		return 0, fmt.Errorf("not a number: %s", trimmed)
	}
	var value float64
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return 0, err
	}
	return value, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// scalarText renders a raw JSON value the way it is shown to the user:
// strings without quotes, numbers in shortest form, anything else verbatim.
func scalarText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if v, err := strconv.ParseFloat(string(trimmed), 64); err == nil {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return string(trimmed)
}

func scalarOrMissing(raw json.RawMessage) string {
	if isNull(raw) {
		return missingText
	}
	return scalarText(raw)
}

// Device holds the free-form device description of the capture.
type Device struct {
	Rows []DeviceRow `json:"rows"`
	// GPUName is resolved from the graphics PCI ids when they are present.
	GPUName string `json:"gpu_name,omitempty"`

	entries map[string]json.RawMessage
}

// DeviceRow is one key/value pair of the device panel.
type DeviceRow struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (r DeviceRow) String() string {
	return r.Key + ": " + r.Value
}

const (
	graphicsVendorKey = "graphicsDeviceVendorID"
	graphicsDeviceKey = "graphicsDeviceID"
)

func newDevice(keys []string, entries map[string]json.RawMessage) Device {
	rows := make([]DeviceRow, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, DeviceRow{Key: key, Value: scalarText(entries[key])})
	}
	return Device{Rows: rows, entries: entries}
}

// GraphicsDeviceIDs returns the PCI vendor and device ids reported by the engine.
func (d Device) GraphicsDeviceIDs() (vendorID, deviceID uint32, ok bool) {
	vendor, okVendor := d.uint32Entry(graphicsVendorKey)
	device, okDevice := d.uint32Entry(graphicsDeviceKey)
	if !okVendor || !okDevice || vendor == 0 {
		return 0, 0, false
	}
	return vendor, device, true
}

func (d Device) uint32Entry(key string) (uint32, bool) {
	raw, ok := d.entries[key]
	if !ok {
		return 0, false
	}
	value, err := parseNumber(raw)
	if err != nil || value < 0 || value > math.MaxUint32 || value != math.Trunc(value) {
		return 0, false
	}
	return uint32(value), true
}
