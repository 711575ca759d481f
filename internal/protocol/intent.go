package protocol

import (
	"encoding/json"
	"fmt"
)

const IntentRequestRun = "RequestRun"

type IntentEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RequestRun asks the server to replay Script on a rope of RopeLength
// segments. A zero RopeLength means the server default.
type RequestRun struct {
	Script     string `json:"script"`
	RopeLength int    `json:"ropeLength,omitempty"`
	// Steps selects whether RopeStepped patches are streamed back.
	Steps bool `json:"steps,omitempty"`
}

// DecodeRequestRun unpacks a RequestRun intent.
func DecodeRequestRun(data []byte) (RequestRun, error) {
	var env IntentEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return RequestRun{}, fmt.Errorf("decode intent: %w", err)
	}
	if env.Type != IntentRequestRun {
		return RequestRun{}, fmt.Errorf("unsupported intent %q", env.Type)
	}
	var req RequestRun
	if err := json.Unmarshal(env.Payload, &req); err != nil {
		return RequestRun{}, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return req, nil
}
