// Package telemetry decodes telemetry frames and resolves dotted telemetry
// keys into tagged routes.
package telemetry

import (
	"encoding/json"
	"errors"
	"strings"
)

// FrameType is the only frame type carried to the router.
const FrameType = "telemetry"

var (
	// ErrMalformedFrame is returned for frames that are not JSON objects or
	// carry no key.
	ErrMalformedFrame = errors.New("telemetry: malformed frame")

	// ErrIgnoredFrame is returned for well-formed frames of another type.
	ErrIgnoredFrame = errors.New("telemetry: ignored frame type")
)

// Event is a single key/value telemetry update.
type Event struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type frame struct {
	Type  string `json:"type"`
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// DecodeFrame parses one websocket frame. Values keep their JSON shape:
// nil, bool, float64, string, []any or map[string]any.
func DecodeFrame(data []byte) (Event, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Event{}, errors.Join(ErrMalformedFrame, err)
	}
	if f.Type != FrameType {
		return Event{}, ErrIgnoredFrame
	}
	key := strings.TrimSpace(f.Key)
	if key == "" {
		return Event{}, ErrMalformedFrame
	}
	return Event{Key: key, Value: f.Value}, nil
}

// EncodeFrame is the inverse of DecodeFrame, used by test servers and the
// host metrics source.
func EncodeFrame(ev Event) ([]byte, error) {
	return json.Marshal(frame{Type: FrameType, Key: ev.Key, Value: ev.Value})
}
