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

package pending

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
)

// 📋 Set is the ordered, de-duplicated list of files waiting to be classified
type Set struct {
	paths []string

	// Ignore, when set, rejects paths before they are added.
	Ignore func(path string) bool
}

// New returns an empty set that skips paths for which ignore reports true.
func New(ignore func(path string) bool) *Set {
	return &Set{Ignore: ignore}
}

// Add appends every path that names an existing regular file and is not
// already present. Environment variables in paths are expanded. It returns the
// number of paths added.
func (s *Set) Add(ctx context.Context, paths ...string) int {
	logger := zerolog.Ctx(ctx)
	added := 0
	for _, raw := range paths {
		path := normalize(raw)
		if path == "" || s.Contains(path) {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			logger.Debug().Str("path", raw).Msg("skipping non-file")
			continue
		}
		if s.Ignore != nil && s.Ignore(path) {
			logger.Debug().Str("path", path).Msg("skipping ignored file")
			continue
		}
		s.paths = append(s.paths, path)
		added++
	}
	return added
}

// Restore puts path back at the end of the set without checking the disk.
func (s *Set) Restore(path string) {
	path = filepath.Clean(path)
	if !s.Contains(path) {
		s.paths = append(s.paths, path)
	}
}

// Contains reports whether path is pending.
func (s *Set) Contains(path string) bool {
	return s.index(filepath.Clean(path)) >= 0
}

// Remove drops path and reports whether it was present.
func (s *Set) Remove(path string) bool {
	i := s.index(filepath.Clean(path))
	if i < 0 {
		return false
	}
	s.paths = append(s.paths[:i], s.paths[i+1:]...)
	return true
}

// RemoveAt drops the entries at the given indices and returns them in list
// order. Out-of-range and repeated indices are ignored.
func (s *Set) RemoveAt(indices ...int) []string {
	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(s.paths) {
			drop[i] = true
		}
	}
	var removed []string
	kept := s.paths[:0]
	for i, p := range s.paths {
		if drop[i] {
			removed = append(removed, p)
			continue
		}
		kept = append(kept, p)
	}
	s.paths = kept
	return removed
}

// Select resolves indices to paths in ascending index order. An empty
// selection means every pending file.
func (s *Set) Select(indices ...int) []string {
	if len(indices) == 0 {
		return s.List()
	}
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)

	var out []string
	last := -1
	for _, i := range sorted {
		if i == last || i < 0 || i >= len(s.paths) {
			continue
		}
		out = append(out, s.paths[i])
		last = i
	}
	return out
}

// Clear empties the set.
func (s *Set) Clear() { s.paths = nil }

// List returns a copy of the pending paths in insertion order.
func (s *Set) List() []string { return append([]string(nil), s.paths...) }

// Len is the number of pending files.
func (s *Set) Len() int { return len(s.paths) }

func (s *Set) index(path string) int {
	for i, p := range s.paths {
		if p == path {
			return i
		}
	}
	return -1
}

func normalize(raw string) string {
	if raw == "" {
		return ""
	}
	return filepath.Clean(os.ExpandEnv(raw))
}
