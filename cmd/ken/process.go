package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/j-tyler/ken/internal/ken"
	"github.com/j-tyler/ken/internal/render"
	"github.com/j-tyler/ken/internal/telemetry"
)

// spawnPayload is the JSON object printed on a successful activation.
type spawnPayload struct {
	Action  string        `json:"action"`
	Session *spawnSession `json:"session,omitempty"`
}

type spawnSession struct {
	ID         string  `json:"id"`
	Ken        string  `json:"ken"`
	Task       string  `json:"task"`
	Checkpoint *string `json:"checkpoint"`
}

// ProcessCmd runs one tick: a wake scan followed by at most one activation.
type ProcessCmd struct{}

func (c *ProcessCmd) Run(g *Globals) error {
	store, err := openStore(g)
	if err != nil {
		return err
	}
	defer store.Close()

	_, span := telemetry.StartSpan(context.Background(), "tick.run")

	result, err := ken.Tick(store, time.Now())
	telemetry.EndSpan(span, err)
	if err != nil {
		return err
	}

	if result.Spawned == nil {
		g.Logger.Info("tick complete", map[string]interface{}{"action": "none"})
		fmt.Fprintln(os.Stderr, render.None())
		fmt.Println(`{"action":"none"}`)
		return nil
	}

	s := result.Spawned
	g.Logger.Info("tick complete", map[string]interface{}{"action": "spawn", "session_id": s.ID})
	fmt.Fprintln(os.Stderr, render.Spawn(s))

	out, err := json.Marshal(spawnPayload{
		Action: "spawn",
		Session: &spawnSession{
			ID:         s.ID,
			Ken:        s.Ken,
			Task:       s.Task,
			Checkpoint: s.Checkpoint,
		},
	})
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
