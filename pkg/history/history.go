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

package history

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/classifyrc/pkg/move"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrStale means the file of the entry is no longer where it was left.
	// The entry has been moved to the opposite stack.
	ErrStale = errors.Base("file no longer exists")

	ErrNothingToUndo = errors.Base("nothing to undo")
	ErrNothingToRedo = errors.Base("nothing to redo")
)

// Pending is the part of the pending file set the history updates.
type Pending interface {
	Restore(path string)
	Remove(path string) bool
}

// ⏪ History is the two-stack undo/redo log over move records
type History struct {
	undo []*move.Record
	redo []*move.Record
}

// New returns an empty history.
func New() *History { return &History{} }

// Push records a fresh classification. Any undone future is discarded.
func (h *History) Push(rec *move.Record) {
	h.undo = append(h.undo, rec)
	h.redo = nil
}

// CanUndo reports whether Undo has an entry to work on.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo has an entry to work on.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Len returns the sizes of the undo and redo stacks.
func (h *History) Len() (undo, redo int) { return len(h.undo), len(h.redo) }

// ⏪ Undo moves the most recent file back next to its original location and
// returns it to the pending set.
func (h *History) Undo(ctx context.Context, pending Pending) (*move.Record, error) {
	if len(h.undo) == 0 {
		return nil, ErrNothingToUndo
	}
	rec := pop(&h.undo)

	if !regular(rec.CurrentPath) {
		h.redo = append(h.redo, rec)
		zerolog.Ctx(ctx).Warn().Str("path", rec.CurrentPath).Msg("undo skipped, file missing")
		return rec, errors.Errorf("%w: %s", ErrStale, rec.CurrentPath)
	}

	final, err := move.Relocate(ctx, rec.CurrentPath, rec.OriginalPath, move.UndoMarker)
	if err != nil {
		h.undo = append(h.undo, rec)
		return rec, errors.Errorf("undoing %s: %w", rec.CurrentPath, err)
	}

	rec.CurrentPath = final
	pending.Restore(final)
	h.redo = append(h.redo, rec)
	return rec, nil
}

// ⏩ Redo moves the most recently undone file to its destination again, with
// the same collision policy as a fresh move.
func (h *History) Redo(ctx context.Context, pending Pending) (*move.Record, error) {
	if len(h.redo) == 0 {
		return nil, ErrNothingToRedo
	}
	rec := pop(&h.redo)

	if !regular(rec.CurrentPath) {
		h.undo = append(h.undo, rec)
		zerolog.Ctx(ctx).Warn().Str("path", rec.CurrentPath).Msg("redo skipped, file missing")
		return rec, errors.Errorf("%w: %s", ErrStale, rec.CurrentPath)
	}

	old := rec.CurrentPath
	final, err := move.Relocate(ctx, old, rec.DestinationPath, move.CollisionMarker)
	if err != nil {
		h.redo = append(h.redo, rec)
		return rec, errors.Errorf("redoing %s: %w", old, err)
	}

	rec.CurrentPath = final
	pending.Remove(old)
	h.undo = append(h.undo, rec)
	return rec, nil
}

func pop(stack *[]*move.Record) *move.Record {
	s := *stack
	rec := s[len(s)-1]
	*stack = s[:len(s)-1]
	return rec
}

func regular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
