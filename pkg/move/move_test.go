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

package move

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/classifyrc/pkg/config"
	"github.com/walteh/classifyrc/pkg/template"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func touch(t *testing.T, path string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(path), 0644))
}

func fixedClock(day int) func() time.Time {
	return func() time.Time { return time.Date(2030, 6, day, 12, 0, 0, 0, time.UTC) }
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "reserved_chars", in: `a<b>c:d"e/f\g|h?i*j`, want: "a_b_c_d_e_f_g_h_i_j"},
		{name: "trailing_spaces_and_dots", in: "report. . ", want: "report"},
		{name: "inner_dots_kept", in: "v1.2 final", want: "v1.2 final"},
		{name: "unicode_kept", in: "水电费 三月", want: "水电费 三月"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeName(tt.in))
		})
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in       string
		wantStem string
		wantExt  string
	}{
		{in: "a.pdf", wantStem: "a", wantExt: ".pdf"},
		{in: "a.tar.gz", wantStem: "a.tar", wantExt: ".gz"},
		{in: ".env", wantStem: ".env", wantExt: ""},
		{in: "a.", wantStem: "a.", wantExt: ""},
		{in: "noext", wantStem: "noext", wantExt: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			stem, ext := SplitName(tt.in)
			assert.Equal(t, tt.wantStem, stem)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestMoveCollisionOrder(t *testing.T) {
	ctx := testContext(t)
	root := t.TempDir()
	rule := config.CategoryRule{Key: "rent", Rename: "name{ext}"}
	m := &Mover{Resolver: template.Resolver{OutRoot: filepath.Join(root, "out")}, Now: fixedClock(5)}
	p := template.Period{Year: 2025, Month: 3}

	var got []string
	for _, dir := range []string{"a", "b", "c"} {
		src := filepath.Join(root, "in", dir, "scan.ext")
		touch(t, src)
		rec, err := m.Move(ctx, rule, p, src)
		require.NoError(t, err)
		assert.Equal(t, src, rec.OriginalPath)
		assert.Equal(t, filepath.Join(root, "out", "202503_Unclassified", "name.ext"), rec.DestinationPath)
		got = append(got, filepath.Base(rec.CurrentPath))

		_, err = os.Stat(src)
		assert.True(t, os.IsNotExist(err))
	}

	assert.Equal(t, []string{"name.ext", "name-1.ext", "name-2.ext"}, got)
}

func TestMoveFileName(t *testing.T) {
	ctx := testContext(t)
	root := t.TempDir()
	rule := config.CategoryRule{Key: "rent", Rename: "{YYYY}{MM}{DD}-{key}{orig}{ext}", DestSubdir: "{MM}"}
	m := &Mover{Resolver: template.Resolver{OutRoot: root, DefaultPathTemplate: "{YYYY}"}, Now: fixedClock(9)}

	src := filepath.Join(root, "inbox", "lease v2..pdf")
	touch(t, src)

	rec, err := m.Move(ctx, rule, template.Period{Year: 2025, Month: 3}, src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "2025", "03", "20250309-rent_lease v2.pdf"), rec.CurrentPath)
}

func TestMoveFailures(t *testing.T) {
	ctx := testContext(t)
	root := t.TempDir()
	p := template.Period{Year: 2025, Month: 3}

	t.Run("source_missing", func(t *testing.T) {
		m := &Mover{Resolver: template.Resolver{OutRoot: root}}
		_, err := m.Move(ctx, config.CategoryRule{Key: "k", Rename: "{orig}{ext}"}, p, filepath.Join(root, "gone.pdf"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrSourceMissing))
	})

	t.Run("extension_mismatch", func(t *testing.T) {
		src := filepath.Join(root, "pic.JPG")
		touch(t, src)
		m := &Mover{Resolver: template.Resolver{OutRoot: root}}
		_, err := m.Move(ctx, config.CategoryRule{Key: "k", Rename: "{orig}{ext}", Exts: []string{".pdf"}}, p, src)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrExtensionMismatch))
		assert.FileExists(t, src, "a skipped file stays where it was")
	})

	t.Run("destination_create", func(t *testing.T) {
		blocker := filepath.Join(root, "blocker")
		touch(t, blocker)
		src := filepath.Join(root, "doc.pdf")
		touch(t, src)
		m := &Mover{Resolver: template.Resolver{OutRoot: blocker}}
		_, err := m.Move(ctx, config.CategoryRule{Key: "k", Rename: "{orig}{ext}"}, p, src)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDestinationCreate))
		assert.FileExists(t, src)
	})
}

func TestFreePathUndoMarker(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a.pdf")
	assert.Equal(t, target, FreePath(target, UndoMarker))

	touch(t, target)
	touch(t, filepath.Join(dir, "a-undo1.pdf"))
	assert.Equal(t, filepath.Join(dir, "a-undo2.pdf"), FreePath(target, UndoMarker))
	assert.Equal(t, filepath.Join(dir, "a-1.pdf"), FreePath(target, CollisionMarker))
}

var errFakeXDev = errors.Base("cross-device link")

// crossDeviceRenames makes every rename look like it spans filesystems.
func crossDeviceRenames(t *testing.T) {
	origRename, origCross := renameFile, crossDevice
	t.Cleanup(func() { renameFile, crossDevice = origRename, origCross })

	renameFile = func(src, dst string) error {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: errFakeXDev}
	}
	crossDevice = func(err error) bool { return errors.Is(err, errFakeXDev) }
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.pdf")
	require.NoError(t, os.WriteFile(src, []byte("lease"), 0640))
	mtime := time.Date(2024, 12, 1, 8, 30, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	dst := filepath.Join(dir, "dst.pdf")
	require.NoError(t, copyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "lease", string(data))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime), "mtime is preserved")
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
	}

	t.Run("existing_destination_is_refused", func(t *testing.T) {
		taken := filepath.Join(dir, "taken.pdf")
		require.NoError(t, os.WriteFile(taken, []byte("keep"), 0644))

		require.Error(t, copyFile(src, taken))
		data, err := os.ReadFile(taken)
		require.NoError(t, err)
		assert.Equal(t, "keep", string(data), "an existing file is never overwritten")
	})
}

func TestRenameAcrossDevices(t *testing.T) {
	crossDeviceRenames(t)

	t.Run("copy_then_remove", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "a.pdf")
		dst := filepath.Join(dir, "out", "a.pdf")
		touch(t, src)
		require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0755))

		require.NoError(t, rename(src, dst))
		assert.NoFileExists(t, src)
		assert.FileExists(t, dst)
	})

	t.Run("partial_destination_removed", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "folder")
		require.NoError(t, os.MkdirAll(src, 0755))
		dst := filepath.Join(dir, "folder.copy")

		// reading a directory fails after the destination was created
		require.Error(t, rename(src, dst))
		assert.NoFileExists(t, dst)
		assert.DirExists(t, src)
	})

	t.Run("other_errors_pass_through", func(t *testing.T) {
		renameFile = func(src, dst string) error {
			return &os.LinkError{Op: "rename", Old: src, New: dst, Err: os.ErrPermission}
		}
		err := rename("a", "b")
		assert.True(t, errors.Is(err, os.ErrPermission))
	})

	t.Run("move_uses_fallback", func(t *testing.T) {
		crossDeviceRenames(t)
		ctx := testContext(t)
		dir := t.TempDir()
		src := filepath.Join(dir, "inbox", "scan.pdf")
		touch(t, src)

		got, err := Relocate(ctx, src, filepath.Join(dir, "out", "scan.pdf"), CollisionMarker)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "out", "scan.pdf"), got)
		assert.NoFileExists(t, src)
		assert.FileExists(t, got)
	})
}
