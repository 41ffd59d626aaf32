// Package frame implements the tagged message protocol spoken between
// the heatmap browser and the toolbar embedded in the target page. The
// protocol is fire-and-forget: tagged events with JSON payloads and no
// reply correlation. Inbound messages are accepted only from origins on
// the authorized-URL allowlist, checked before any handler runs.
package frame

import (
	"encoding/json"
	"fmt"
)

// Message types exchanged during the embed handshake. The parent sends
// app-init and config; the toolbar answers with ready and close.
const (
	TypeAppInit        = "ph-app-init"
	TypeToolbarReady   = "ph-toolbar-ready"
	TypeHeatmapsConfig = "ph-heatmaps-config"
	TypeToolbarClose   = "ph-toolbar-close"
)

// Message is the wire envelope: a type tag and an opaque payload.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage builds an envelope with the payload marshalled in.
func NewMessage(msgType string, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: msgType}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode %s payload: %w", msgType, err)
	}
	return Message{Type: msgType, Payload: raw}, nil
}

// Decode unmarshals the payload into out.
func (m Message) Decode(out any) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("message %s has no payload", m.Type)
	}
	if err := json.Unmarshal(m.Payload, out); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", m.Type, err)
	}
	return nil
}

// AppInit is the parent's opening message: where the embedded toolbar
// should report back and which API host to talk to.
type AppInit struct {
	APIHost string `json:"apiURL"`
	Token   string `json:"temporaryToken,omitempty"`
}

// HeatmapConfig configures the heatmap overlay rendered by the toolbar.
type HeatmapConfig struct {
	// Type selects the interaction kind: click, rageclick, mousemove
	// or scrolldepth.
	Type string `json:"type"`

	// AggregationType is total_count or unique_visitors.
	AggregationType string `json:"aggregation_type"`

	// ViewportMin/Max bound the viewport widths included, in pixels.
	ViewportMin int `json:"viewport_min"`
	ViewportMax int `json:"viewport_max"`

	// FixedPositioning keeps elements positioned against the viewport
	// rather than the document.
	FixedPositioning bool `json:"fixed_positioning"`

	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`
}
