package telemetry

// GPUNamer resolves a PCI vendor/device pair to a marketing name.
type GPUNamer func(vendorID, deviceID uint32) string

// View is everything the dashboard shows for a document before charts are toggled.
type View struct {
	Metadata   Metadata    `json:"metadata"`
	Device     Device      `json:"device"`
	Summary    *Summary    `json:"summary"`
	Groups     []GroupInfo `json:"groups"`
	Charts     []string    `json:"charts"`
	FrameCount int         `json:"frame_count"`
	Issues     []Issue     `json:"issues"`
}

// BuildView assembles the static panes of a document. namer may be nil.
func BuildView(doc *Document, namer GPUNamer) View {
	view := View{
		Metadata:   doc.Metadata,
		Device:     doc.Device,
		Groups:     Groups(),
		Charts:     ChartIDs(),
		FrameCount: len(doc.Frames),
		Issues:     doc.Issues,
	}
	if view.Device.Rows == nil {
		view.Device.Rows = []DeviceRow{}
	}
	if view.Issues == nil {
		view.Issues = []Issue{}
	}
	if doc.Analysis != nil {
		summary := Summarize(doc.Analysis)
		view.Summary = &summary
	}
	if namer != nil {
		if vendorID, deviceID, ok := doc.Device.GraphicsDeviceIDs(); ok {
			view.Device.GPUName = namer(vendorID, deviceID)
		}
	}
	return view
}
