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
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/classifyrc/pkg/config"
	"github.com/walteh/classifyrc/pkg/move"
	"github.com/walteh/classifyrc/pkg/pending"
	"github.com/walteh/classifyrc/pkg/template"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

type fixture struct {
	ctx     context.Context
	root    string
	mover   *move.Mover
	rule    config.CategoryRule
	period  template.Period
	pending *pending.Set
	history *History
}

func newFixture(t *testing.T) *fixture {
	root := t.TempDir()
	return &fixture{
		ctx:     testContext(t),
		root:    root,
		mover:   &move.Mover{Resolver: template.Resolver{OutRoot: filepath.Join(root, "out")}},
		rule:    config.CategoryRule{Key: "rent", Rename: "rent{ext}"},
		period:  template.Period{Year: 2025, Month: 3},
		pending: pending.New(nil),
		history: New(),
	}
}

func (f *fixture) classify(t *testing.T, name string) *move.Record {
	src := filepath.Join(f.root, "in", name)
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0755))
	require.NoError(t, os.WriteFile(src, []byte(name), 0644))
	f.pending.Add(f.ctx, src)

	rec, err := f.mover.Move(f.ctx, f.rule, f.period, src)
	require.NoError(t, err)
	f.pending.Remove(src)
	f.history.Push(rec)
	return rec
}

func TestUndoRedoRoundTrip(t *testing.T) {
	f := newFixture(t)
	rec := f.classify(t, "a.pdf")
	before := rec.CurrentPath

	undone, err := f.history.Undo(f.ctx, f.pending)
	require.NoError(t, err)
	assert.Equal(t, rec.OriginalPath, undone.CurrentPath)
	assert.FileExists(t, rec.OriginalPath)
	assert.NoFileExists(t, before)
	assert.Equal(t, []string{rec.OriginalPath}, f.pending.List())

	redone, err := f.history.Redo(f.ctx, f.pending)
	require.NoError(t, err)
	assert.Equal(t, before, redone.CurrentPath)
	assert.FileExists(t, before)
	assert.Empty(t, f.pending.List(), "the pre-redo path leaves the pending set")

	u, r := f.history.Len()
	assert.Equal(t, 1, u)
	assert.Equal(t, 0, r)
}

func TestUndoCollisionUsesUndoSuffix(t *testing.T) {
	f := newFixture(t)
	rec := f.classify(t, "a.pdf")

	require.NoError(t, os.WriteFile(rec.OriginalPath, []byte("newcomer"), 0644))

	undone, err := f.history.Undo(f.ctx, f.pending)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.root, "in", "a-undo1.pdf"), undone.CurrentPath)
	assert.True(t, f.pending.Contains(undone.CurrentPath))
}

func TestFreshMoveClearsRedo(t *testing.T) {
	f := newFixture(t)
	f.classify(t, "a.pdf")

	_, err := f.history.Undo(f.ctx, f.pending)
	require.NoError(t, err)
	assert.True(t, f.history.CanRedo())

	f.classify(t, "b.pdf")
	assert.False(t, f.history.CanRedo())

	_, err = f.history.Redo(f.ctx, f.pending)
	assert.True(t, errors.Is(err, ErrNothingToRedo))
}

func TestStaleEntries(t *testing.T) {
	t.Run("undo_moves_stale_entry_to_redo", func(t *testing.T) {
		f := newFixture(t)
		rec := f.classify(t, "a.pdf")
		require.NoError(t, os.Remove(rec.CurrentPath))

		_, err := f.history.Undo(f.ctx, f.pending)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrStale))
		assert.False(t, f.history.CanUndo())
		assert.True(t, f.history.CanRedo())
		assert.Empty(t, f.pending.List())
	})

	t.Run("redo_moves_stale_entry_to_undo", func(t *testing.T) {
		f := newFixture(t)
		f.classify(t, "a.pdf")
		undone, err := f.history.Undo(f.ctx, f.pending)
		require.NoError(t, err)
		require.NoError(t, os.Remove(undone.CurrentPath))

		_, err = f.history.Redo(f.ctx, f.pending)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrStale))
		assert.True(t, f.history.CanUndo())
		assert.False(t, f.history.CanRedo())
	})
}

func TestEmptyStacks(t *testing.T) {
	h := New()
	_, err := h.Undo(testContext(t), pending.New(nil))
	assert.True(t, errors.Is(err, ErrNothingToUndo))
	_, err = h.Redo(testContext(t), pending.New(nil))
	assert.True(t, errors.Is(err, ErrNothingToRedo))
}
