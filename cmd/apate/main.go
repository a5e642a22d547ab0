// apate is a hot-swappable HTTP mocking server: point it at one or more
// TOML spec files and it serves the routes they describe, with an admin
// surface to inspect and replace the active specification at runtime.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustrum/apate/pkg/admin"
	"github.com/rustrum/apate/pkg/config"
	"github.com/rustrum/apate/pkg/dispatcher"
	"github.com/rustrum/apate/pkg/logging"
	"github.com/rustrum/apate/pkg/registry"
	"github.com/rustrum/apate/pkg/server"
	"github.com/rustrum/apate/pkg/spec"
	"github.com/rustrum/apate/pkg/store"
)

var (
	flagPort     int
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "apate [spec files...]",
	Short: "apate is a hot-swappable HTTP mocking server",
	Long: `apate serves HTTP routes described by one or more TOML spec files and
exposes an admin surface under /apate to inspect or replace the active
specification while the server keeps running.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args)
	},
}

func init() {
	rootCmd.Flags().IntVarP(&flagPort, "port", "p", 0, "HTTP server port (default 8228, or $APATHE_PORT)")
	rootCmd.Flags().StringVarP(&flagLogLevel, "log-level", "l", "", "log level: debug, info, warn, error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(specArgs []string) error {
	cfg, err := config.Resolve(config.Options{
		Port:     flagPort,
		LogLevel: flagLogLevel,
		SpecArgs: specArgs,
	})
	if err != nil {
		return err
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	initial, err := spec.LoadFiles(cfg.SpecFiles)
	if err != nil {
		return fmt.Errorf("apate: load spec files: %w", err)
	}
	if err := registry.ValidateAndWrap(initial); err != nil {
		return fmt.Errorf("apate: invalid initial spec: %w", err)
	}

	reg := registry.New(initial)
	sharedStore := store.New()
	dispatch := dispatcher.New(reg, sharedStore, log.With("component", "dispatcher"))
	adminHandler := admin.New(reg, log.With("component", "admin"))
	srv := server.New(cfg.Port, adminHandler, dispatch, log.With("component", "server"))

	if err := srv.Start(); err != nil {
		return fmt.Errorf("apate: %w", err)
	}
	log.Info("apate started", "port", cfg.Port, "deceits", len(initial.Deceits))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	if err := srv.Stop(); err != nil {
		return fmt.Errorf("apate: shutdown: %w", err)
	}
	return nil
}
