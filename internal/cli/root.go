// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cli implements the apipoll command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gogama/apipoll"
	"github.com/gogama/apipoll/httplog"
	"github.com/gogama/apipoll/internal/config"
	"github.com/gogama/apipoll/internal/logging"
)

var version = "0.1.0"

// app is the state shared by the subcommands once the configuration
// has been loaded.
type app struct {
	configFile string
	logLevel   string

	cfg *config.Config
	log zerolog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:     "apipoll",
		Short:   "Poll JSON APIs with retries and persist the results",
		Version: version,
		Long: `apipoll sends HTTP requests with bounded retries and exponential
backoff, saves successful responses as JSON snapshots and CSV rows, and
includes a mock API for local testing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "YAML configuration file (default ./"+config.DefaultFile+" if present)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level, overriding the configuration")

	root.AddCommand(
		newGetCmd(a),
		newPostCmd(a),
		newPollCmd(a),
		newScheduleCmd(a),
		newMockCmd(a),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func (a *app) load(logOut io.Writer) error {
	cfg, err := config.Load(config.Options{File: a.configFile})
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	a.log = logging.New(logOut, cfg.Log.Level, cfg.Log.Pretty).
		With().
		Str("env", cfg.App.Env).
		Logger()
	return nil
}

// client builds a retrying client with the configured defaults whose
// progress is logged.
func (a *app) client() (*apipoll.Client, error) {
	return apipoll.NewClient(a.cfg.ClientDefaults(), apipoll.WithHandlers(httplog.Handlers(a.log)))
}
