package api

import (
	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/telemetry"
)

// HelloMessage is the initial payload sent on WebSocket connection.
type HelloMessage struct {
	Type     string                `json:"type"`
	Groups   []telemetry.GroupInfo `json:"groups"`
	Features map[string]bool       `json:"features"`
}

// NewHelloMessage constructs a hello payload.
func NewHelloMessage(groups []telemetry.GroupInfo, features map[string]bool) HelloMessage {
	return HelloMessage{
		Type:     "hello",
		Groups:   groups,
		Features: features,
	}
}

// SubscribedMessage confirms which document the connection is bound to.
type SubscribedMessage struct {
	Type       string `json:"type"`
	SessionID  string `json:"session_id"`
	FrameCount int    `json:"frame_count"`
}

// NewSubscribedMessage constructs a subscribed payload.
func NewSubscribedMessage(sessionID string, frameCount int) SubscribedMessage {
	return SubscribedMessage{
		Type:       "subscribed",
		SessionID:  sessionID,
		FrameCount: frameCount,
	}
}

// ChartsMessage carries the charts of the currently enabled groups.
type ChartsMessage struct {
	Type      string            `json:"type"`
	SessionID string            `json:"session_id"`
	Groups    []telemetry.Group `json:"groups"`
	Charts    []telemetry.Chart `json:"charts"`
}

// NewChartsMessage constructs a charts payload.
func NewChartsMessage(sessionID string, groups []telemetry.Group, charts []telemetry.Chart) ChartsMessage {
	return ChartsMessage{
		Type:      "charts",
		SessionID: sessionID,
		Groups:    groups,
		Charts:    charts,
	}
}

// ErrorMessage communicates an error condition to the client.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ClientMessage is a generic envelope used for decoding inbound client messages.
type ClientMessage struct {
	Type string `json:"type"`
}

// SubscribeMessage binds the connection to an uploaded document.
type SubscribeMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

// ToggleMessage replaces the set of enabled chart groups.
type ToggleMessage struct {
	Type   string   `json:"type"`
	Groups []string `json:"groups"`
}

// PongMessage is the response to a ping.
type PongMessage struct {
	Type string `json:"type"`
}
