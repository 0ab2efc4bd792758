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
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/classifyrc/pkg/config"
	"github.com/walteh/classifyrc/pkg/template"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrSourceMissing means the pending file vanished before it was moved.
	ErrSourceMissing = errors.Base("source file missing")

	// ErrExtensionMismatch means the category does not accept the file's extension.
	ErrExtensionMismatch = errors.Base("extension not allowed")

	// ErrDestinationCreate means the destination directory could not be created.
	ErrDestinationCreate = errors.Base("cannot create destination")
)

const (
	// CollisionMarker separates a fresh or redone move's counter from the stem.
	CollisionMarker = "-"

	// UndoMarker separates an undone move's counter from the stem.
	UndoMarker = "-undo"
)

// 📦 Record is the reversible trace of one relocation
type Record struct {
	// OriginalPath is where the file was before it was classified.
	OriginalPath string
	// DestinationPath is the computed target before collision suffixes.
	DestinationPath string
	// CurrentPath is where the file sits now.
	CurrentPath string
}

// 🚚 Mover classifies files into the directory of their category
type Mover struct {
	Resolver template.Resolver

	// Now supplies the day of month for {DD}. Defaults to time.Now.
	Now func() time.Time
}

// NewMover builds a mover for cfg.
func NewMover(cfg *config.Config) *Mover {
	return &Mover{Resolver: cfg.Resolver(), Now: time.Now}
}

// Target computes the pre-collision destination of src for rule in period p.
func (m *Mover) Target(rule config.CategoryRule, p template.Period, src string) (string, error) {
	dir, err := m.Resolver.TargetDir(rule.Template(), p)
	if err != nil {
		return "", errors.Errorf("resolving target directory: %w", err)
	}

	name, err := template.FileName(rule.Template(), p, m.now().Day(), Orig(src), Ext(src))
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, name), nil
}

// 🎯 Move relocates src into rule's directory, never overwriting a file.
func (m *Mover) Move(ctx context.Context, rule config.CategoryRule, p template.Period, src string) (*Record, error) {
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("%w: %s", ErrSourceMissing, src)
		}
		return nil, errors.Errorf("checking source %s: %w", src, err)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.Errorf("%w: %s is not a regular file", ErrSourceMissing, src)
	}

	if !rule.AcceptsExt(Ext(src)) {
		return nil, errors.Errorf("%w: %s for %q", ErrExtensionMismatch, Ext(src), rule.Key)
	}

	dst, err := m.Target(rule, p, src)
	if err != nil {
		return nil, err
	}

	final, err := Relocate(ctx, src, dst, CollisionMarker)
	if err != nil {
		return nil, err
	}

	return &Record{
		OriginalPath:    src,
		DestinationPath: dst,
		CurrentPath:     final,
	}, nil
}

func (m *Mover) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

// 🔄 Relocate moves src to the first free variant of dst and returns the
// path actually used. Parent directories of dst are created as needed.
func Relocate(ctx context.Context, src, dst, marker string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", errors.Errorf("%w: %s: %w", ErrDestinationCreate, filepath.Dir(dst), err)
	}

	final := FreePath(dst, marker)
	if err := rename(src, final); err != nil {
		return "", errors.Errorf("moving %s to %s: %w", src, final, err)
	}

	zerolog.Ctx(ctx).Info().Str("src", src).Str("dst", final).Msg("moved")
	return final, nil
}

// rename falls back to copy and remove when src and dst are on different
// filesystems.
// swapped in tests to reach the cross-device path
var (
	renameFile  = os.Rename
	crossDevice = isCrossDevice
)

func rename(src, dst string) error {
	err := renameFile(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !crossDevice(linkErr.Err) {
		return err
	}

	if err := copyFile(src, dst); err != nil {
		return errors.Errorf("copying across devices: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return errors.Errorf("removing source after copy: %w", err)
	}
	return nil
}

// copyFile never overwrites dst and removes what it wrote on failure.
func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return errors.Errorf("stating source file: %w", err)
	}

	destination, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}

	if _, err := io.Copy(destination, source); err != nil {
		destination.Close()
		os.Remove(dst)
		return errors.Errorf("copying file: %w", err)
	}
	if err := destination.Close(); err != nil {
		os.Remove(dst)
		return errors.Errorf("closing destination file: %w", err)
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
