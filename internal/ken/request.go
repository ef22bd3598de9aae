package ken

import (
	"encoding/json"
	"fmt"

	"github.com/j-tyler/ken/internal/kenerr"
)

// RequestType is the closed tag of the Request union.
type RequestType string

const (
	RequestComplete      RequestType = "complete"
	RequestSleep         RequestType = "sleep"
	RequestSpawnAndSleep RequestType = "spawn_and_sleep"
)

// ChildRequest is one entry of a spawn_and_sleep request's children list.
type ChildRequest struct {
	Ken  string `json:"ken"`
	Task string `json:"task"`
}

// Request is a single JSON request emitted by an agent at the end of its
// turn. Exactly one request is applied per invocation of the handler.
type Request struct {
	Type       RequestType
	SessionID  string
	Result     string
	Trigger    Trigger
	Checkpoint string
	Children   []ChildRequest

	// triggerRaw carries the unparsed trigger JSON for spawn_and_sleep,
	// where parsing must be deferred until after placeholder resolution.
	triggerRaw string
}

// rawRequest mirrors the wire shape before type-directed validation.
type rawRequest struct {
	Type       RequestType     `json:"type"`
	SessionID  string          `json:"session_id"`
	Result     string          `json:"result"`
	Trigger    json.RawMessage `json:"trigger"`
	Checkpoint string          `json:"checkpoint"`
	Children   []ChildRequest  `json:"children"`
}

// ParseRequest decodes and validates a raw request payload.
func ParseRequest(data []byte) (Request, error) {
	var raw rawRequest
	if err := json.Unmarshal(data, &raw); err != nil {
		return Request{}, kenerr.Wrap(kenerr.InvalidRequest, "malformed request JSON", err)
	}
	if raw.SessionID == "" {
		return Request{}, kenerr.New(kenerr.InvalidRequest, "request is missing session_id")
	}

	req := Request{Type: raw.Type, SessionID: raw.SessionID, Checkpoint: raw.Checkpoint}

	switch raw.Type {
	case RequestComplete:
		req.Result = raw.Result
		return req, nil
	case RequestSleep:
		if raw.Trigger == nil {
			return Request{}, kenerr.New(kenerr.InvalidRequest, "sleep request is missing trigger")
		}
		var t Trigger
		if err := json.Unmarshal(raw.Trigger, &t); err != nil {
			return Request{}, kenerr.Wrap(kenerr.InvalidRequest, "sleep request has invalid trigger", err)
		}
		req.Trigger = t
		return req, nil
	case RequestSpawnAndSleep:
		if len(raw.Children) == 0 {
			return Request{}, kenerr.New(kenerr.InvalidRequest, "spawn_and_sleep request must list at least one child")
		}
		if raw.Trigger == nil {
			return Request{}, kenerr.New(kenerr.InvalidRequest, "spawn_and_sleep request is missing trigger")
		}
		// The trigger is parsed only after __CHILDREN__ resolution, once
		// child ids are known (see handleSpawnAndSleep); stash the raw
		// bytes for that step.
		req.Children = raw.Children
		req.Trigger = Trigger{} // resolved downstream
		req.triggerRaw = string(raw.Trigger)
		return req, nil
	default:
		return Request{}, kenerr.New(kenerr.InvalidRequest, fmt.Sprintf("unknown request type %q", raw.Type))
	}
}
