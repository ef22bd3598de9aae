package main

import (
	"fmt"

	"github.com/j-tyler/ken/internal/render"
)

// StatusCmd prints a human-readable, depth-first summary of every session.
// It is read-only and never touches the store's status columns.
type StatusCmd struct{}

func (c *StatusCmd) Run(g *Globals) error {
	store, err := openStore(g)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.GetAllSessions()
	if err != nil {
		return err
	}

	fmt.Print(render.Tree(sessions))
	return nil
}
