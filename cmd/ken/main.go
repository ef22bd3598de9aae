package main

import (
	"context"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/j-tyler/ken/internal/config"
	"github.com/j-tyler/ken/internal/logging"
	"github.com/j-tyler/ken/internal/telemetry"
)

var version = "dev"

func init() {
	_ = godotenv.Load()
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("ken"),
		kong.Description("Durable, single-node workflow coordinator for hierarchical agent-driven tasks."),
		kongVars(),
	)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		ctx.FatalIfErrorf(err)
	}

	logger := logging.New().WithComponent("cli." + ctx.Command())
	logger.SetLevel(logging.ParseLevel(cfg.Log.Level))

	shutdownTelemetry, err := telemetry.Setup(cfg.Telemetry)
	if err != nil {
		logger.Warn("telemetry setup failed, continuing without span export", map[string]interface{}{"error": err.Error()})
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	globals := &Globals{Cfg: cfg, Logger: logger, StoreDirOverride: cli.StoreDir}

	runErr := ctx.Run(globals)
	shutdownTelemetry(context.Background())
	if runErr != nil {
		os.Exit(fail(globals, runErr))
	}
}
