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

package operation

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/classifyrc/pkg/checklist"
	"github.com/walteh/classifyrc/pkg/config"
	"github.com/walteh/classifyrc/pkg/history"
	"github.com/walteh/classifyrc/pkg/move"
	"github.com/walteh/classifyrc/pkg/pending"
	"github.com/walteh/classifyrc/pkg/state"
	"github.com/walteh/classifyrc/pkg/status"
	"github.com/walteh/classifyrc/pkg/template"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrUnknownCategory is returned for a key that is not in the configuration.
	ErrUnknownCategory = errors.Base("unknown category")

	// ErrNothingToClassify is returned by Assign when no files are pending.
	ErrNothingToClassify = errors.Base("no files to classify")
)

// 🔧 Options contains what a session is built from
type Options struct {
	// Config is the loaded configuration
	Config *config.Config
	// Store persists the not-applicable marks. Loaded from Config.OverridesPath() when nil.
	Store *state.Store
	// Opener reveals a folder. Defaults to the platform file manager.
	Opener Opener
	// Now is the clock for the default period and {DD}. Defaults to time.Now.
	Now func() time.Time
}

// 🎮 Session owns every piece of mutable engine state. It is not safe for
// concurrent use: callers funnel access through a Runner.
type Session struct {
	cfg       *config.Config
	store     *state.Store
	opener    Opener
	mover     *move.Mover
	pending   *pending.Set
	history   *history.History
	formatter status.Formatter
	period    template.Period
}

// 📊 Summary is the outcome of one classification batch
type Summary struct {
	Key              string
	Succeeded        int
	SkippedExtension int
	SkippedMissing   int
	Failed           int

	Records []*move.Record
	Errors  []error
}

// 📋 Entry is one category of the composed checklist
type Entry struct {
	checklist.Result
	Override bool
	State    checklist.DisplayState
}

// 🏭 New creates a session for the current month
func New(ctx context.Context, opts Options) (*Session, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	store := opts.Store
	if store == nil {
		store = state.Load(ctx, opts.Config.OverridesPath())
	}

	opener := opts.Opener
	if opener == nil {
		opener = SystemOpener{}
	}

	mover := move.NewMover(opts.Config)
	mover.Now = now

	return &Session{
		cfg:       opts.Config,
		store:     store,
		opener:    opener,
		mover:     mover,
		pending:   pending.New(opts.Config.Ignored),
		history:   history.New(),
		formatter: status.NewFormatter(opts.Config.Locale),
		period:    template.PeriodOf(now()),
	}, nil
}

// Config returns the configuration the session was built from.
func (s *Session) Config() *config.Config { return s.cfg }

// Formatter returns the status-line catalog for the configured locale.
func (s *Session) Formatter() status.Formatter { return s.formatter }

// Period is the (year, month) every template expands against.
func (s *Session) Period() template.Period { return s.period }

// SetPeriod selects the operating month.
func (s *Session) SetPeriod(p template.Period) { s.period = p }

// CanUndo reports whether there is a move to undo.
func (s *Session) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether there is an undone move to redo.
func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// AddFiles merges paths into the pending set and returns how many were new.
func (s *Session) AddFiles(ctx context.Context, paths ...string) int {
	n := s.pending.Add(ctx, paths...)
	zerolog.Ctx(ctx).Debug().Int("added", n).Int("pending", s.pending.Len()).Msg("files added")
	return n
}

// RemoveAt drops pending entries by index.
func (s *Session) RemoveAt(indices ...int) []string { return s.pending.RemoveAt(indices...) }

// Clear empties the pending set.
func (s *Session) Clear() { s.pending.Clear() }

// Pending lists the files waiting to be classified.
func (s *Session) Pending() []string { return s.pending.List() }

// 🎯 Assign classifies the selected pending files into the category key. An
// empty selection means every pending file. Files are handled in ascending
// index order and one file's failure never stops the batch.
func (s *Session) Assign(ctx context.Context, key string, selection ...int) (Summary, error) {
	logger := zerolog.Ctx(ctx)

	rule, ok := s.cfg.Rule(key)
	if !ok {
		return Summary{}, errors.Errorf("%w: %q", ErrUnknownCategory, key)
	}

	paths := s.pending.Select(selection...)
	if len(paths) == 0 {
		return Summary{Key: key}, ErrNothingToClassify
	}

	sum := Summary{Key: key}
	for _, src := range paths {
		rec, err := s.mover.Move(ctx, rule, s.period, src)
		switch {
		case err == nil:
			s.pending.Remove(src)
			s.history.Push(rec)
			sum.Succeeded++
			sum.Records = append(sum.Records, rec)

		case errors.Is(err, move.ErrSourceMissing):
			s.pending.Remove(src)
			sum.SkippedMissing++
			logger.Info().Str("src", src).Msg("source vanished, dropped from pending")

		case errors.Is(err, move.ErrExtensionMismatch):
			sum.SkippedExtension++
			logger.Info().Str("src", src).Str("key", key).Msg("extension not allowed, kept pending")

		default:
			sum.Failed++
			sum.Errors = append(sum.Errors, err)
			logger.Error().Err(err).Str("src", src).Msg("classifying file")
		}
	}

	return sum, nil
}

// ⏪ Undo reverts the most recent move.
func (s *Session) Undo(ctx context.Context) (*move.Record, error) {
	return s.history.Undo(ctx, s.pending)
}

// ⏩ Redo reapplies the most recently undone move.
func (s *Session) Redo(ctx context.Context) (*move.Record, error) {
	return s.history.Redo(ctx, s.pending)
}

// 🔍 Checklist evaluates every category for the period and composes the
// display state with the stored overrides. Overrides of categories that are
// now satisfied are purged from the store.
func (s *Session) Checklist(ctx context.Context) ([]Entry, error) {
	period := s.period.Key()
	s.store.Reload(ctx)
	results := checklist.Evaluate(ctx, s.cfg, s.period)

	entries := make([]Entry, 0, len(results))
	satisfied := make(map[string]bool, len(results))
	for _, r := range results {
		override := s.store.IsSet(period, r.Key)
		entries = append(entries, Entry{
			Result:   r,
			Override: override && !r.Satisfied,
			State:    checklist.Compose(r.Satisfied, override),
		})
		if r.Satisfied {
			satisfied[r.Key] = true
		}
	}

	if _, err := s.store.Purge(ctx, period, satisfied); err != nil {
		return entries, errors.Errorf("purging stale overrides: %w", err)
	}

	return entries, nil
}

// 🔄 ToggleOverride flips the not-applicable mark of key for the period.
// It fails with state.ErrSatisfied when the category is already satisfied.
func (s *Session) ToggleOverride(ctx context.Context, key string) (bool, error) {
	rule, ok := s.cfg.Rule(key)
	if !ok {
		return false, errors.Errorf("%w: %q", ErrUnknownCategory, key)
	}

	satisfied, err := s.satisfied(rule)
	if err != nil {
		return false, err
	}

	return s.store.Toggle(ctx, s.period.Key(), key, satisfied)
}

func (s *Session) satisfied(rule config.CategoryRule) (bool, error) {
	dir, err := s.cfg.Resolver().TargetDir(rule.Template(), s.period)
	if err != nil {
		return false, errors.Errorf("resolving directory for %q: %w", rule.Key, err)
	}
	n, err := checklist.Count(dir, template.ExpectedPrefix(rule.Template(), s.period), rule)
	if err != nil {
		return false, err
	}
	return rule.Presence().Satisfied(n), nil
}

// 📂 OpenFolder creates the category directory for the period and reveals it.
func (s *Session) OpenFolder(ctx context.Context, key string) (string, error) {
	rule, ok := s.cfg.Rule(key)
	if !ok {
		return "", errors.Errorf("%w: %q", ErrUnknownCategory, key)
	}

	dir, err := s.cfg.Resolver().TargetDir(rule.Template(), s.period)
	if err != nil {
		return "", errors.Errorf("resolving directory for %q: %w", key, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return dir, errors.Errorf("%w: %s: %w", move.ErrDestinationCreate, dir, err)
	}

	if err := s.opener.Open(ctx, dir); err != nil {
		return dir, errors.Errorf("opening %s: %w", dir, err)
	}
	return dir, nil
}

// RootHint is the period's root directory shown above the checklist.
func (s *Session) RootHint() (string, error) {
	return s.cfg.Resolver().RootHint(s.period)
}
