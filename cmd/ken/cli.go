// Package main is the ken CLI: a short-lived dispatcher around the session
// orchestration engine in internal/ken. Each invocation opens the durable
// store, performs one bounded unit of work, and exits.
package main

import (
	"fmt"

	"github.com/alecthomas/kong"
)

// CLI defines the five-verb command-line interface, plus a version command.
type CLI struct {
	StoreDir string `help:"Override the .ken directory location instead of walking up from the current directory." type:"path" name:"store-dir"`
	Config   string `help:"Path to the ken.toml configuration file." default:"ken.toml"`

	Init    InitCmd    `cmd:"" help:"Create a new .ken store in the current directory."`
	Wake    WakeCmd    `cmd:"" help:"Create a new root session."`
	Request RequestCmd `cmd:"" help:"Apply one agent response to the store."`
	Process ProcessCmd `cmd:"" help:"Run one tick: wake satisfied sleepers, activate a pending session."`
	Status  StatusCmd  `cmd:"" help:"Print a summary of every session."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// VersionCmd prints the build version.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	fmt.Println("ken version " + version)
	return nil
}

// kongVars supplies variables referenced by help text.
func kongVars() kong.Vars {
	return kong.Vars{"version": version}
}
