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

package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrSatisfied is returned when toggling a category that is already
// automatically satisfied for the period.
var ErrSatisfied = errors.Base("category is satisfied")

// Overrides maps a "YYYY-MM" period key to the category keys manually marked
// not applicable. Only true values are ever stored.
type Overrides map[string]map[string]bool

// 💾 Store persists the "not applicable" marks next to the configuration
type Store struct {
	path string

	mu        sync.Mutex
	overrides Overrides
}

// 📂 Load reads the store at path. A missing or unreadable file is not an
// error: the store starts empty and the problem is logged.
func Load(ctx context.Context, path string) *Store {
	s := &Store{path: path}
	s.overrides = s.read(ctx)
	zerolog.Ctx(ctx).Debug().Str("path", path).Int("periods", len(s.overrides)).Msg("overrides loaded")
	return s
}

// 🔄 Reload replaces the in-memory marks with the file's current content.
// Both tools write the same file, so callers reload before showing marks.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides = s.read(ctx)
}

// read decodes the file, an empty map on any failure.
func (s *Store) read(ctx context.Context) Overrides {
	logger := zerolog.Ctx(ctx)
	out := Overrides{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", s.path).Msg("reading overrides, starting empty")
		}
		return out
	}

	var raw map[string]map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn().Err(err).Str("path", s.path).Msg("decoding overrides, starting empty")
		return out
	}

	for period, keys := range raw {
		for key, on := range keys {
			if on {
				set(out, period, key)
			}
		}
	}
	return out
}

// Path is the file backing the store.
func (s *Store) Path() string { return s.path }

// IsSet reports whether key carries an override for the period.
func (s *Store) IsSet(period, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overrides[period][key]
}

// ForPeriod returns the overridden keys for a period in sorted order.
func (s *Store) ForPeriod(period string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.overrides[period]))
	for k := range s.overrides[period] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// 🔁 Toggle flips the override of key for period and saves the store. It
// refuses with ErrSatisfied when the category is automatically satisfied.
// The returned bool is the new override value.
func (s *Store) Toggle(ctx context.Context, period, key string, satisfied bool) (bool, error) {
	if satisfied {
		return false, errors.Errorf("%w: %s in %s", ErrSatisfied, key, period)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// read-modify-write so marks saved by the other tool survive
	s.overrides = s.read(ctx)
	on := !s.overrides[period][key]
	if on {
		set(s.overrides, period, key)
	} else {
		unset(s.overrides, period, key)
	}

	if err := s.save(ctx); err != nil {
		return on, err
	}

	zerolog.Ctx(ctx).Info().Str("period", period).Str("key", key).Bool("override", on).Msg("override toggled")
	return on, nil
}

// 🧹 Purge drops overrides of period whose key is in satisfied and saves the
// store when anything changed. It returns the removed keys.
func (s *Store) Purge(ctx context.Context, period string, satisfied map[string]bool) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overrides = s.read(ctx)
	var removed []string
	for key := range s.overrides[period] {
		if satisfied[key] {
			removed = append(removed, key)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}
	for _, key := range removed {
		unset(s.overrides, period, key)
	}
	sort.Strings(removed)

	zerolog.Ctx(ctx).Debug().Str("period", period).Strs("keys", removed).Msg("purging stale overrides")
	return removed, s.save(ctx)
}

// 💾 Save writes the whole store to a temp file and renames it into place.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx)
}

func (s *Store) save(ctx context.Context) error {
	data, err := json.MarshalIndent(s.overrides, "", "  ")
	if err != nil {
		return errors.Errorf("encoding overrides: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Errorf("creating overrides directory: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", s.path).Msg("overrides saved")
	return nil
}

func set(o Overrides, period, key string) {
	if o[period] == nil {
		o[period] = map[string]bool{}
	}
	o[period][key] = true
}

func unset(o Overrides, period, key string) {
	delete(o[period], key)
	if len(o[period]) == 0 {
		delete(o, period)
	}
}
