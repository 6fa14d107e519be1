// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogama/apipoll/internal/config"
	"github.com/gogama/apipoll/internal/mockapi"
	"github.com/gogama/apipoll/internal/poller"
)

func jobNames() string {
	var names []string
	for name := range poller.Builtin(&config.Config{}) {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func (a *app) runner() (*poller.Runner, error) {
	c, err := a.client()
	if err != nil {
		return nil, err
	}
	return &poller.Runner{Client: c, Log: a.log}, nil
}

func newPollCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "poll [job...]",
		Short: "Run poll jobs once",
		Long:  "Run the named poll jobs once, concurrently. With no arguments every job runs. Jobs: " + jobNames() + ".",
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := poller.Select(poller.Builtin(a.cfg), args...)
			if err != nil {
				return err
			}
			r, err := a.runner()
			if err != nil {
				return err
			}
			return r.RunAll(cmd.Context(), jobs...)
		},
	}
}

func newScheduleCmd(a *app) *cobra.Command {
	var every time.Duration
	cmd := &cobra.Command{
		Use:   "schedule [job...]",
		Short: "Run poll jobs repeatedly until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			interval := a.cfg.Schedule.Every
			if cmd.Flags().Changed("every") {
				interval = every
			}
			jobs, err := poller.Select(poller.Builtin(a.cfg), args...)
			if err != nil {
				return err
			}
			r, err := a.runner()
			if err != nil {
				return err
			}
			s, err := poller.NewScheduler(r, interval)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return s.Run(ctx, jobs...)
		},
	}
	cmd.Flags().DurationVar(&every, "every", 0, "Interval between runs, e.g. 30s or 5m (default from configuration)")
	return cmd
}

func newMockCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve the mock API until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Mock.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := mockapi.New(a.log).Run(ctx, addr); err != nil {
				return fmt.Errorf("mock API: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from configuration)")
	return cmd
}
