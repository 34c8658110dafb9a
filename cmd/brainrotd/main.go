// Command brainrotd runs the brainrot daemon in the foreground. It is the
// standalone equivalent of `brainrot daemon` for service managers that
// supervise the process directly.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/andigenesis/brainrot-generator/internal/config"
	"github.com/andigenesis/brainrot-generator/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	if err := run(*configPath, *logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, logLevel string) error {
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}

	return daemonrun.Run(context.Background(), cfg, daemonrun.Options{
		LogLevel: level,
	})
}
