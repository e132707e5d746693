package telemetry

// Field identifies one numeric per-frame counter of a capture.
type Field int

const (
	FrameTimeMS Field = iota
	MainThreadTimeMS
	RenderThreadTimeMS
	GPUFrameTimeMS
	TotalAllocatedMemoryKB
	TotalReservedMemoryKB
	GCReservedMemoryKB
	GCAllocatedMemoryKB
	SystemUsedMemoryKB
	DrawCalls
	TriangleCount
	VertexCount
	BatchCount
	ShadowCasterCount
	PhysicsQueries
	Physics2DQueries
	PhysicsUsedMemoryKB
	Physics2DUsedMemoryKB
	AudioReservedMemoryKB
	AudioUsedMemoryKB
	AudioClipMemoryKB
	AudioClipCount
	AudioReads
	UILayoutMS
	UIRenderMS
	AnimationClipMemoryKB
	AnimationClipCount
	AnimationUpdateMS

	fieldCount
)

// FrameIndexKey is the document key holding the frame number.
const FrameIndexKey = "frame"

var fieldKeys = [fieldCount]string{
	FrameTimeMS:            "frameTime_ms",
	MainThreadTimeMS:       "mainThreadTime_ms",
	RenderThreadTimeMS:     "renderThreadTime_ms",
	GPUFrameTimeMS:         "gpuFrameTime_ms",
	TotalAllocatedMemoryKB: "totalAllocatedMemory_kb",
	TotalReservedMemoryKB:  "totalReservedMemory_kb",
	GCReservedMemoryKB:     "gcReservedMemory_kb",
	GCAllocatedMemoryKB:    "gcAllocatedMemory_kb",
	SystemUsedMemoryKB:     "systemUsedMemory_kb",
	DrawCalls:              "drawCalls",
	TriangleCount:          "triangleCount",
	VertexCount:            "vertexCount",
	BatchCount:             "batchCount",
	ShadowCasterCount:      "shadowCasterCount",
	PhysicsQueries:         "physicsQueries",
	Physics2DQueries:       "physics2DQueries",
	PhysicsUsedMemoryKB:    "physicsUsedMemory_kb",
	Physics2DUsedMemoryKB:  "physics2DUsedMemory_kb",
	AudioReservedMemoryKB:  "audioReservedMemory_kb",
	AudioUsedMemoryKB:      "audioUsedMemory_kb",
	AudioClipMemoryKB:      "audioClipMemory_kb",
	AudioClipCount:         "audioClipCount",
	AudioReads:             "audioReads",
	UILayoutMS:             "uiLayout_ms",
	UIRenderMS:             "uiRender_ms",
	AnimationClipMemoryKB:  "animationClipMemory_kb",
	AnimationClipCount:     "animationClipCount",
	AnimationUpdateMS:      "animationUpdate_ms",
}

var fieldsByKey = func() map[string]Field {
	out := make(map[string]Field, fieldCount)
	for f, key := range fieldKeys {
		out[key] = Field(f)
	}
	return out
}()

// Key returns the document key of the field.
func (f Field) Key() string {
	if f < 0 || f >= fieldCount {
		return ""
	}
	return fieldKeys[f]
}

func (f Field) String() string {
	return f.Key()
}

// FieldByKey resolves a document key to its Field.
func FieldByKey(key string) (Field, bool) {
	f, ok := fieldsByKey[key]
	return f, ok
}

// Fields lists every per-frame counter in document order.
func Fields() []Field {
	out := make([]Field, fieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}
