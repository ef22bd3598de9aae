package main

import (
	"fmt"
	"os"

	"github.com/j-tyler/ken/internal/ken"
	"github.com/j-tyler/ken/internal/kenstore/sqlite"
)

// InitCmd materializes an empty durable store at .ken/ken.db in the
// current directory.
type InitCmd struct{}

func (c *InitCmd) Run(g *Globals) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	storeDir, err := ken.InitStoreDir(cwd)
	if err != nil {
		return err
	}

	store, err := sqlite.Create(ken.DBPath(storeDir))
	if err != nil {
		return err
	}
	defer store.Close()

	g.Logger.Info("store initialized", map[string]interface{}{"path": storeDir})
	fmt.Printf("initialized empty ken store in %s\n", storeDir)
	return nil
}
