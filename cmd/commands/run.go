// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/classifyrc/cmd/opts"
	"github.com/walteh/classifyrc/pkg/console"
	"github.com/walteh/classifyrc/pkg/instance"
	"github.com/walteh/classifyrc/pkg/operation"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// runnerBuffer bounds how many hand-offs may queue behind a slow command.
const runnerBuffer = 16

// NewRunCmd starts the interactive tool, or hands off to the live instance.
func NewRunCmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the interactive shell (the default)",
		Long: `Run claims the tool's single instance. When another instance is already
running, the given files (or a bring-to-front request) are handed to it and
this process exits without output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), ro, cmd.InOrStdin(), args)
		},
	}
	if ro.Tool.AcceptsFiles {
		cmd.Use = "run [FILE...]"
		cmd.Args = cobra.ArbitraryArgs
	}
	return cmd
}

func run(ctx context.Context, ro *opts.RootOpts, in io.Reader, args []string) error {
	logger := zerolog.Ctx(ctx)

	files := absolute(args)
	msg := instance.Raise()
	if len(files) > 0 {
		msg = instance.Add(files...)
	}

	coord := instance.New(ro.Tool.LockName(), ro.Tool.Port)
	st, err := coord.Claim(ctx, msg)
	if st != instance.Authoritative {
		if err != nil {
			logger.Warn().Err(err).Msg("live instance unreachable, exiting")
		}
		return nil
	}
	defer coord.Close()

	sess, err := operation.New(ctx, operation.Options{Config: ro.Config})
	if err != nil {
		return errors.Errorf("creating session: %w", err)
	}
	if len(files) > 0 {
		sess.AddFiles(ctx, files...)
	}

	runner := operation.NewRunner(runnerBuffer)
	sh := console.New(console.Options{
		Tool:    ro.Tool.Shell,
		Title:   ro.Tool.Name,
		Session: sess,
		Runner:  runner,
		User:    ro.UserLogger,
		In:      in,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runner.Run(gctx)
	})
	g.Go(func() error {
		return coord.Serve(gctx, operation.Dispatch(runner, sess, sh.Added, sh.Raise))
	})
	g.Go(func() error {
		defer cancel()
		return sh.Run(gctx)
	})

	return g.Wait()
}

// absolute makes hand-off paths independent of this process's working dir.
func absolute(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = os.ExpandEnv(p)
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out = append(out, p)
	}
	return out
}
