// Command sleeved runs the sleeve HTTP daemon: the cover art search API
// and the JSON-RPC tool endpoint, guarded by a single-instance lock.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sleeve/internal/api"
	"sleeve/internal/config"
	"sleeve/internal/daemon"
	"sleeve/internal/logging"
)

func main() {
	configPath, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	service, err := api.FromConfig(cfg, logger)
	if err != nil {
		logger.Error("assemble pipeline", logging.Error(err))
		os.Exit(1)
	}

	d, err := daemon.New(cfg, service, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("sleeved shutting down")
}

// parseFlags reads the daemon flags from args. Parse errors have
// already been reported on stderr by the flag set.
func parseFlags(args []string) (string, error) {
	fs := flag.NewFlagSet("sleeved", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to the configuration file")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	return *configPath, nil
}
