// Package remote mirrors the edits of a sceneedit.Editor to a collaboration
// server over a websocket and applies the edits other clients broadcast.
package remote

import "encoding/json"

// Message is the envelope of every frame on the wire.
type Message struct {
	Type      string          `json:"type"`
	ProjectID string          `json:"projectId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// AckPayload answers an op.submit.
type AckPayload struct {
	Seq    int64  `json:"seq"`
	OpID   string `json:"opId"`
	Reason string `json:"reason,omitempty"`
}

const (
	TypeWelcome     = "welcome"
	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"
	TypeError       = "error"
)
