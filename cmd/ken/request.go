package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/j-tyler/ken/internal/ken"
	"github.com/j-tyler/ken/internal/telemetry"
)

// RequestCmd applies a single JSON request emitted by an agent.
type RequestCmd struct {
	JSON string `arg:"" help:"The request envelope, e.g. {\"type\":\"complete\",\"session_id\":\"...\",\"result\":\"...\"}"`
}

func (c *RequestCmd) Run(g *Globals) error {
	store, err := openStore(g)
	if err != nil {
		return err
	}
	defer store.Close()

	req, err := ken.ParseRequest([]byte(c.JSON))
	if err != nil {
		return err
	}

	_, span := telemetry.StartSpan(context.Background(), "request.apply")

	resp, err := ken.Handle(store, req, time.Now())
	telemetry.EndSpan(span, err)
	if err != nil {
		return err
	}

	if resp.OK {
		g.Logger.Info("request applied", map[string]interface{}{"type": string(req.Type), "session_id": req.SessionID})
	} else {
		g.Logger.Warn("request rejected", map[string]interface{}{"type": string(req.Type), "session_id": req.SessionID, "error": resp.Error})
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
