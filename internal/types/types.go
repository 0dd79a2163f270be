package types

import "encoding/json"

// ClientMessage is the inbound envelope. ID is opaque and echoed back on the
// ack for join and hint.
type ClientMessage struct {
	Type string          `json:"type"` // "game:join" | "game:start" | "game:hint" | "game:guess" | "game:giveup"
	ID   json.RawMessage `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type ServerMessage struct {
	Type string          `json:"type"`
	ID   json.RawMessage `json:"id,omitempty"`
	Data any             `json:"data,omitempty"`
}
