package main

import (
	"fmt"
	"time"

	"github.com/j-tyler/ken/internal/ken"
)

// WakeCmd creates a new pending root session.
type WakeCmd struct {
	Ken  string `arg:"" help:"Opaque label identifying the body of knowledge/prompt to load."`
	Task string `short:"t" required:"" help:"Free-form task description passed to the agent."`
}

func (c *WakeCmd) Run(g *Globals) error {
	store, err := openStore(g)
	if err != nil {
		return err
	}
	defer store.Close()

	sess, err := ken.Wake(store, c.Ken, c.Task, time.Now())
	if err != nil {
		return err
	}

	g.Logger.Info("session woken", map[string]interface{}{"session_id": sess.ID, "ken": c.Ken})
	fmt.Println(sess.ID)
	return nil
}
