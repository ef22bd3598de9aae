package main

import (
	"fmt"
	"os"

	"github.com/j-tyler/ken/internal/config"
	"github.com/j-tyler/ken/internal/ken"
	"github.com/j-tyler/ken/internal/kenerr"
	"github.com/j-tyler/ken/internal/kenstore/sqlite"
	"github.com/j-tyler/ken/internal/logging"
)

// Globals carries cross-command dependencies resolved once in main, then
// injected into every command's Run method via kong's ctx.Run.
type Globals struct {
	Cfg              *config.Config
	Logger           *logging.Logger
	StoreDirOverride string
}

// openStore locates (or uses the --store-dir override for) the .ken
// directory and opens its database.
func openStore(g *Globals) (ken.Store, error) {
	dir := g.StoreDirOverride
	if dir == "" {
		dir = g.Cfg.Store.Dir
	}

	var storeDir string
	var err error
	if dir != "" {
		storeDir = dir
	} else {
		cwd, wdErr := os.Getwd()
		if wdErr != nil {
			return nil, kenerr.Wrap(kenerr.Io, "failed to get working directory", wdErr)
		}
		storeDir, err = ken.FindStoreDir(cwd)
		if err != nil {
			return nil, err
		}
	}

	return sqlite.Open(ken.DBPath(storeDir))
}

// exitCodeFor maps a Go error returned from a command's Run to a process
// exit code. Every error that reaches this point is structural (protocol
// failures are carried inside a Response, not returned as errors), so the
// propagation policy in spec.md §7 calls for a uniform non-zero exit.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// fail prints err to stderr and returns the exit code main should use.
func fail(g *Globals, err error) int {
	if g != nil && g.Logger != nil {
		g.Logger.SetOutput(os.Stderr)
		g.Logger.Error(err.Error())
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	return exitCodeFor(err)
}
