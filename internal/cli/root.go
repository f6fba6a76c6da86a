// Package cli defines Cobra command definitions for the tars CLI.
// This file contains the root command, version flag, and help output.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tars-dev/tars/internal/config"
	"github.com/tars-dev/tars/internal/contextload"
	"github.com/tars-dev/tars/internal/engine"
	"github.com/tars-dev/tars/internal/log"
	"github.com/tars-dev/tars/internal/report"
	"github.com/tars-dev/tars/internal/session"
	"github.com/tars-dev/tars/internal/tui"
)

var (
	verbose   bool
	sessionID string
	version   = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "tars",
	Short: "Phase-gated AI development workflow",
	Long: `TARS gates an AI coding assistant's progress through fixed phases:
intake research, planning, and approved execution. Nothing executes
without a validated, approved plan preceding it.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !tui.IsTTY() {
			return cmd.Help()
		}

		projectRoot, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}

		eng, store, err := buildEngine(projectRoot)
		if err != nil {
			return err
		}
		if store != nil {
			defer func() { _ = store.Close() }()
		}

		// Reopen a specific session, or the latest active one.
		var resumed *session.Session
		if store != nil {
			var sess *session.Session
			if sessionID != "" {
				sess, err = store.GetSession(sessionID)
				if err != nil {
					return fmt.Errorf("loading session %s: %w", sessionID, err)
				}
				if sess == nil {
					return fmt.Errorf("no session %s", sessionID)
				}
			} else {
				cfg, cfgErr := config.ReadConfig(projectRoot)
				if cfgErr != nil {
					cfg = config.DefaultConfig()
				}
				sess, _ = store.GetLatestActive(cfg.Project.Name)
			}
			if sess != nil {
				if err := eng.Resume(cmd.Context(), sess); err == nil {
					resumed = sess
				} else if sessionID != "" {
					return fmt.Errorf("resuming session %s: %w", sessionID, err)
				}
			}
		}

		return tui.Run(tui.NewReplModel(eng, resumed))
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildEngine wires the engine from the project working tree: config
// (defaults when uninitialized), SQLite store, JSONL logger, report
// writer, and the file/git context loader.
func buildEngine(projectRoot string) (*engine.Engine, *session.Store, error) {
	cfg, err := config.ReadConfig(projectRoot)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	var store *session.Store
	if cfg.Store.Path != "" {
		dbPath := filepath.Join(projectRoot, ".tars", cfg.Store.Path)
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, nil, fmt.Errorf("creating .tars directory: %w", err)
		}
		store, err = session.NewStore(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening session store: %w", err)
		}
	}

	logger, err := log.NewLogger(projectRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("opening event log: %w", err)
	}

	eng, err := engine.New(engine.Options{
		Project: cfg.Project.Name,
		Config:  cfg,
		Loader:  contextload.NewProjectLoader(projectRoot),
		Store:   store,
		Logger:  logger,
		Reports: report.NewWriter(filepath.Join(projectRoot, ".tars", cfg.Reports.Dir)),
	})
	if err != nil {
		return nil, nil, err
	}

	return eng, store, nil
}

// openStore opens the session store for read-oriented subcommands.
func openStore(projectRoot string) (*session.Store, error) {
	cfg, err := config.ReadConfig(projectRoot)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	dbPath := filepath.Join(projectRoot, ".tars", cfg.Store.Path)
	return session.NewStore(dbPath)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Print engine responses in full")
	rootCmd.Flags().StringVar(&sessionID, "session", "", "Resume a specific session by id")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(doneCmd)
}
