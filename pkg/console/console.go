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

package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/classifyrc/pkg/history"
	"github.com/walteh/classifyrc/pkg/log"
	"github.com/walteh/classifyrc/pkg/operation"
	"github.com/walteh/classifyrc/pkg/state"
	"github.com/walteh/classifyrc/pkg/status"
	"github.com/walteh/classifyrc/pkg/template"
	"gitlab.com/tozd/go/errors"
)

// errQuit ends the read loop.
var errQuit = errors.Base("quit")

// Tool selects which command set the shell offers.
type Tool int

const (
	// Classify offers the pending list, classification and undo/redo.
	Classify Tool = iota
	// Checklist offers the read-mostly checklist with not-applicable marks.
	Checklist
)

// 🐚 Shell is the line-oriented front end standing in for the window
type Shell struct {
	tool   Tool
	title  string
	sess   *operation.Session
	runner *operation.Runner
	user   *log.UserLogger
	in     io.Reader
}

// Options configures a Shell.
type Options struct {
	Tool    Tool
	Title   string
	Session *operation.Session
	Runner  *operation.Runner
	User    *log.UserLogger
	In      io.Reader
}

// New builds a shell. Every session access goes through opts.Runner.
func New(opts Options) *Shell {
	return &Shell{
		tool:   opts.Tool,
		title:  opts.Title,
		sess:   opts.Session,
		runner: opts.Runner,
		user:   opts.User,
		in:     opts.In,
	}
}

// 🏃 Run reads commands until quit, end of input, or ctx is done.
func (sh *Shell) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(sh.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	if err := sh.Exec(ctx, "checklist"); err != nil && !errors.Is(err, errQuit) {
		sh.user.Failure(sh.sess.Formatter().Error(err), nil)
	}
	sh.promptAsync(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if err != nil {
				return errors.Errorf("reading input: %w", err)
			}
			return nil
		case line := <-lines:
			err := sh.Exec(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				sh.user.Failure(sh.sess.Formatter().Error(err), nil)
			}
			sh.promptAsync(ctx)
		}
	}
}

// Exec runs one command line.
func (sh *Shell) Exec(ctx context.Context, line string) error {
	args, err := Split(strings.TrimSpace(line))
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}

	root := sh.commands()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// Raise answers a bring-to-front request by redrawing. It must run on the
// session goroutine.
func (sh *Shell) Raise(ctx context.Context) {
	sh.user.Status(sh.title)
	if err := sh.renderChecklist(ctx, false); err != nil {
		sh.user.Failure(sh.sess.Formatter().Error(err), nil)
	}
	sh.prompt()
}

// Added reports files handed off by a late invocation. It must run on the
// session goroutine.
func (sh *Shell) Added(ctx context.Context, n int) {
	sh.user.Success(sh.sess.Formatter().Added(n))
	sh.prompt()
}

// promptAsync prints the prompt from the session goroutine.
func (sh *Shell) promptAsync(ctx context.Context) {
	err := sh.do(ctx, func(context.Context) error {
		sh.prompt()
		return nil
	})
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("redrawing prompt")
	}
}

func (sh *Shell) prompt() {
	fmt.Fprintf(sh.user.Writer(), "%s [%s]> ", sh.title, sh.sess.Period().Key())
}

// do runs fn on the session goroutine.
func (sh *Shell) do(ctx context.Context, fn func(ctx context.Context) error) error {
	return sh.runner.Do(ctx, fn)
}

func (sh *Shell) commands() *cobra.Command {
	root := &cobra.Command{
		Use:           sh.title,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(sh.user.Writer())
	root.SetErr(sh.user.Writer())
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		sh.checklistCmd(),
		sh.periodCmd(),
		sh.openCmd(),
		&cobra.Command{
			Use:     "quit",
			Aliases: []string{"q", "exit"},
			Short:   "Leave the shell",
			RunE:    func(*cobra.Command, []string) error { return errQuit },
		},
	)

	switch sh.tool {
	case Classify:
		root.AddCommand(
			sh.listCmd(),
			sh.addCmd(),
			sh.removeCmd(),
			sh.clearCmd(),
			sh.assignCmd(),
			sh.undoCmd(),
			sh.redoCmd(),
		)
	case Checklist:
		root.AddCommand(sh.toggleCmd())
	}

	return root
}

func (sh *Shell) checklistCmd() *cobra.Command {
	var dirs bool
	cmd := &cobra.Command{
		Use:     "checklist",
		Aliases: []string{"c", "refresh"},
		Short:   "Show every category for the period",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sh.do(cmd.Context(), func(ctx context.Context) error {
				return sh.renderChecklist(ctx, dirs)
			})
		},
	}
	cmd.Flags().BoolVarP(&dirs, "dirs", "d", false, "show target directories")
	return cmd
}

func (sh *Shell) renderChecklist(ctx context.Context, dirs bool) error {
	return Report(ctx, sh.sess, sh.user, dirs)
}

// 📋 Report prints the root hint, the checklist table and the refresh summary.
// Not-applicable marks do not count towards the satisfied total.
func Report(ctx context.Context, sess *operation.Session, user *log.UserLogger, dirs bool) error {
	if hint, err := sess.RootHint(); err == nil {
		fmt.Fprintln(user.Writer(), hint)
	}

	entries, err := sess.Checklist(ctx)
	if err != nil {
		return err
	}

	rows := make([]status.Row, 0, len(entries))
	ok := 0
	for i, e := range entries {
		rows = append(rows, status.Row{
			Index: i + 1,
			Key:   e.Key,
			Group: e.Group,
			Count: e.Count,
			State: e.State,
			Dir:   e.Dir,
		})
		if e.Satisfied {
			ok++
		}
	}

	if err := status.RenderChecklist(user.Writer(), rows, dirs); err != nil {
		return err
	}
	user.Success(sess.Formatter().Refreshed(ok, len(entries)))
	return nil
}

func (sh *Shell) periodCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "period [YYYY-MM]",
		Aliases: []string{"p"},
		Short:   "Show or select the operating month",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sh.do(cmd.Context(), func(ctx context.Context) error {
				if len(args) == 0 {
					sh.user.Status(sh.sess.Period().Key())
					return nil
				}
				p, err := template.ParsePeriod(args[0])
				if err != nil {
					return err
				}
				sh.sess.SetPeriod(p)
				return sh.renderChecklist(ctx, false)
			})
		},
	}
}

func (sh *Shell) openCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "open CATEGORY",
		Aliases: []string{"o"},
		Short:   "Create and reveal the category folder",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sh.do(cmd.Context(), func(ctx context.Context) error {
				key, err := sh.category(args[0])
				if err != nil {
					return err
				}
				dir, err := sh.sess.OpenFolder(ctx, key)
				if err != nil {
					return err
				}
				sh.user.Status(dir)
				return nil
			})
		},
	}
}

func (sh *Shell) toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "toggle CATEGORY",
		Aliases: []string{"na", "t"},
		Short:   "Mark or unmark a category as not applicable this month",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sh.do(cmd.Context(), func(ctx context.Context) error {
				key, err := sh.category(args[0])
				if err != nil {
					return err
				}
				f := sh.sess.Formatter()
				on, err := sh.sess.ToggleOverride(ctx, key)
				switch {
				case errors.Is(err, state.ErrSatisfied):
					sh.user.Warning(f.OverrideRefused(key))
					return nil
				case err != nil:
					return err
				case on:
					sh.user.Success(f.OverrideSet(key))
				default:
					sh.user.Success(f.OverrideCleared(key))
				}
				return sh.renderChecklist(ctx, false)
			})
		},
	}
}

func (sh *Shell) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show pending files",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sh.do(cmd.Context(), func(ctx context.Context) error {
				return status.RenderPending(sh.user.Writer(), sh.sess.Pending())
			})
		},
	}
}

func (sh *Shell) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add PATH...",
		Short: "Add files to the pending list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sh.do(cmd.Context(), func(ctx context.Context) error {
				sh.user.Success(sh.sess.Formatter().Added(sh.sess.AddFiles(ctx, args...)))
				return nil
			})
		},
	}
}

func (sh *Shell) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove INDEX...",
		Aliases: []string{"rm"},
		Short:   "Drop pending files by index",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			indices, err := parseIndices(args)
			if err != nil {
				return err
			}
			return sh.do(cmd.Context(), func(ctx context.Context) error {
				sh.sess.RemoveAt(indices...)
				return status.RenderPending(sh.user.Writer(), sh.sess.Pending())
			})
		},
	}
}

func (sh *Shell) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the pending list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sh.do(cmd.Context(), func(ctx context.Context) error {
				sh.sess.Clear()
				return nil
			})
		},
	}
}

func (sh *Shell) assignCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "assign CATEGORY [INDEX...]",
		Aliases: []string{"a"},
		Short:   "Classify pending files (all when no index is given)",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			indices, err := parseIndices(args[1:])
			if err != nil {
				return err
			}
			return sh.do(cmd.Context(), func(ctx context.Context) error {
				key, err := sh.category(args[0])
				if err != nil {
					return err
				}
				f := sh.sess.Formatter()
				sum, err := sh.sess.Assign(ctx, key, indices...)
				if errors.Is(err, operation.ErrNothingToClassify) {
					sh.user.Warning(f.NothingToClassify())
					return nil
				}
				if err != nil {
					return err
				}

				msg := f.Assigned(sum.Key, sum.Succeeded, sum.SkippedExtension, sum.SkippedMissing, sum.Failed)
				if sum.Failed > 0 {
					sh.user.Failure(msg, errors.Join(sum.Errors...))
				} else if sum.SkippedExtension+sum.SkippedMissing > 0 {
					sh.user.Warning(msg)
				} else {
					sh.user.Success(msg)
				}
				return nil
			})
		},
	}
}

func (sh *Shell) undoCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "undo",
		Aliases: []string{"u", "z"},
		Short:   "Move the last classified file back",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sh.do(cmd.Context(), func(ctx context.Context) error {
				f := sh.sess.Formatter()
				_, err := sh.sess.Undo(ctx)
				switch {
				case errors.Is(err, history.ErrNothingToUndo):
					sh.user.Warning(f.NothingToUndo())
				case errors.Is(err, history.ErrStale):
					sh.user.Warning(f.UndoSkipped())
				case err != nil:
					return err
				default:
					sh.user.Success(f.Undone())
				}
				return nil
			})
		},
	}
}

func (sh *Shell) redoCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "redo",
		Aliases: []string{"r", "y"},
		Short:   "Classify the last undone file again",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sh.do(cmd.Context(), func(ctx context.Context) error {
				f := sh.sess.Formatter()
				_, err := sh.sess.Redo(ctx)
				switch {
				case errors.Is(err, history.ErrNothingToRedo):
					sh.user.Warning(f.NothingToRedo())
				case errors.Is(err, history.ErrStale):
					sh.user.Warning(f.RedoSkipped())
				case err != nil:
					return err
				default:
					sh.user.Success(f.Redone())
				}
				return nil
			})
		},
	}
}

// category accepts a 1-based checklist number or an exact key.
func (sh *Shell) category(arg string) (string, error) {
	items := sh.sess.Config().Items
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(items) {
			return "", errors.Errorf("%w: #%d", operation.ErrUnknownCategory, n)
		}
		return items[n-1].Key, nil
	}
	if _, ok := sh.sess.Config().Rule(arg); !ok {
		return "", errors.Errorf("%w: %q", operation.ErrUnknownCategory, arg)
	}
	return arg, nil
}

func parseIndices(args []string) ([]int, error) {
	out := make([]int, 0, len(args))
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, errors.Errorf("index %q: %w", a, err)
		}
		out = append(out, n)
	}
	return out, nil
}
