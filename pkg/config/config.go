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

package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/walteh/classifyrc/pkg/template"
	"gitlab.com/tozd/go/errors"
)

// ErrConfig marks an unreadable or structurally invalid configuration.
var ErrConfig = errors.Base("invalid configuration")

// OverridesFile is stored next to the configuration document.
const OverridesFile = "na_overrides.json"

// DefaultGroup holds categories whose key carries no 【group】 tag.
const DefaultGroup = "其他"

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// PresenceMode decides how a category counts as satisfied.
type PresenceMode string

const (
	PresenceAny          PresenceMode = "any"
	PresenceCountAtLeast PresenceMode = "count_at_least"
)

// ✅ PresenceRule is "any file present" or "count at least N"
type PresenceRule struct {
	Mode PresenceMode `json:"mode" yaml:"mode"`
	N    int          `json:"n,omitempty" yaml:"n,omitempty"`
}

// Satisfied applies the rule to a file count.
func (r PresenceRule) Satisfied(count int) bool {
	if r.Mode == PresenceCountAtLeast {
		n := r.N
		if n < 1 {
			n = 1
		}
		return count >= n
	}
	return count > 0
}

// 📦 CategoryRule is one classification target of the checklist
type CategoryRule struct {
	Key          string        `json:"key" yaml:"key"`
	Rename       string        `json:"rename" yaml:"rename"`
	PathTemplate string        `json:"path_template,omitempty" yaml:"path_template,omitempty"`
	DestSubdir   string        `json:"dest_subdir,omitempty" yaml:"dest_subdir,omitempty"`
	Exts         []string      `json:"exts,omitempty" yaml:"exts,omitempty"`
	PresentRule  *PresenceRule `json:"present_rule,omitempty" yaml:"present_rule,omitempty"`
}

// Template returns the fields the resolver needs.
func (c CategoryRule) Template() template.Rule {
	return template.Rule{
		Key:          c.Key,
		Rename:       c.Rename,
		PathTemplate: c.PathTemplate,
		DestSubdir:   c.DestSubdir,
	}
}

// Presence returns the configured rule, "any" when absent.
func (c CategoryRule) Presence() PresenceRule {
	if c.PresentRule == nil {
		return PresenceRule{Mode: PresenceAny}
	}
	return *c.PresentRule
}

// AcceptsExt reports whether ext (with leading dot) passes the allow-list.
// An empty list accepts everything.
func (c CategoryRule) AcceptsExt(ext string) bool {
	if len(c.Exts) == 0 {
		return true
	}
	ext = strings.ToLower(ext)
	for _, e := range c.Exts {
		if e == ext {
			return true
		}
	}
	return false
}

// Group extracts the text between 【 and 】 in the key.
func (c CategoryRule) Group() string {
	l := strings.Index(c.Key, "【")
	r := strings.Index(c.Key, "】")
	if l == -1 || r == -1 || r <= l {
		return DefaultGroup
	}
	g := strings.TrimSpace(c.Key[l+len("【") : r])
	if g == "" {
		return DefaultGroup
	}
	return g
}

// 📚 Config represents the complete configuration
type Config struct {
	OutRoot             string         `json:"out_root" yaml:"out_root"`
	DefaultPathTemplate string         `json:"default_path_template,omitempty" yaml:"default_path_template,omitempty"`
	IgnorePatterns      []string       `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty"`
	Locale              string         `json:"locale,omitempty" yaml:"locale,omitempty"`
	Items               []CategoryRule `json:"items" yaml:"items"`

	location string
}

// Resolver returns the template resolver for this layout.
func (cfg *Config) Resolver() template.Resolver {
	return template.Resolver{
		OutRoot:             cfg.OutRoot,
		DefaultPathTemplate: cfg.DefaultPathTemplate,
	}
}

// Rule finds a category by key.
func (cfg *Config) Rule(key string) (CategoryRule, bool) {
	for _, it := range cfg.Items {
		if it.Key == key {
			return it, true
		}
	}
	return CategoryRule{}, false
}

// Location is the path the configuration was loaded from, if any.
func (cfg *Config) Location() string { return cfg.location }

// Dir is the directory holding the configuration, "." when unknown.
func (cfg *Config) Dir() string {
	if cfg.location == "" {
		return "."
	}
	return filepath.Dir(cfg.location)
}

// OverridesPath is where the manual "not applicable" marks are persisted.
func (cfg *Config) OverridesPath() string {
	return filepath.Join(cfg.Dir(), OverridesFile)
}

// Ignored reports whether path matches one of the ignore patterns. Patterns
// are tried against the full slash path and the base name.
func (cfg *Config) Ignored(path string) bool {
	slashed := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, pattern := range cfg.IgnorePatterns {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("%w: reading config file: %w", ErrConfig, err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("%w: no parser found for file: %s", ErrConfig, path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("%w: parsing %s: %w", ErrConfig, path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cfg.location = abs

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("%w: validating %s: %w", ErrConfig, path, err)
	}

	logger.Debug().Str("path", abs).Int("items", len(cfg.Items)).Msg("configuration loaded")

	return cfg, nil
}

// 🔍 Validate normalizes the configuration and checks every rule
func (cfg *Config) Validate() error {
	if len(cfg.Items) == 0 {
		return errors.New("items must not be empty")
	}

	var err error
	if cfg.OutRoot, err = expand(cfg.OutRoot); err != nil {
		return errors.Errorf("out_root: %w", err)
	}
	if cfg.DefaultPathTemplate, err = expand(cfg.DefaultPathTemplate); err != nil {
		return errors.Errorf("default_path_template: %w", err)
	}
	if cfg.OutRoot != "" {
		cfg.OutRoot = filepath.Clean(cfg.OutRoot)
	}

	switch cfg.Locale {
	case "":
		cfg.Locale = "zh"
	case "zh", "en":
	default:
		return errors.Errorf("locale %q: want zh or en", cfg.Locale)
	}

	for _, pattern := range cfg.IgnorePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("ignore pattern %q is not a valid glob", pattern)
		}
	}

	seen := make(map[string]bool, len(cfg.Items))
	resolver := cfg.Resolver()
	for i := range cfg.Items {
		it := &cfg.Items[i]

		if strings.TrimSpace(it.Key) == "" {
			return errors.Errorf("items[%d]: key is required", i)
		}
		if seen[it.Key] {
			return errors.Errorf("items[%d]: duplicate key %q", i, it.Key)
		}
		seen[it.Key] = true

		if it.Rename == "" {
			return errors.Errorf("item %q: rename is required", it.Key)
		}
		if it.PathTemplate, err = expand(it.PathTemplate); err != nil {
			return errors.Errorf("item %q: path_template: %w", it.Key, err)
		}
		if it.PathTemplate == "" && cfg.DefaultPathTemplate == "" && cfg.OutRoot == "" {
			return errors.Errorf("item %q: out_root is required when no path template applies", it.Key)
		}

		for j, ext := range it.Exts {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				return errors.Errorf("item %q: exts[%d] is empty", it.Key, j)
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			it.Exts[j] = ext
		}

		if it.PresentRule != nil {
			switch it.PresentRule.Mode {
			case "", PresenceAny:
				it.PresentRule.Mode = PresenceAny
			case PresenceCountAtLeast:
				if it.PresentRule.N == 0 {
					it.PresentRule.N = 1
				}
				if it.PresentRule.N < 1 {
					return errors.Errorf("item %q: present_rule.n must be at least 1", it.Key)
				}
			default:
				return errors.Errorf("item %q: unknown present_rule.mode %q", it.Key, it.PresentRule.Mode)
			}
		}

		if err := resolver.Check(it.Template()); err != nil {
			return errors.Errorf("item %q: %w", it.Key, err)
		}
	}

	return nil
}

func expand(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	return homedir.Expand(path)
}

// GroupedItems clusters categories by group, preserving first-appearance order.
func (cfg *Config) GroupedItems() (order []string, groups map[string][]CategoryRule) {
	groups = make(map[string][]CategoryRule)
	for _, it := range cfg.Items {
		g := it.Group()
		if _, ok := groups[g]; !ok {
			order = append(order, g)
		}
		groups[g] = append(groups[g], it)
	}
	return order, groups
}
