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

package template

import (
	"fmt"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// UnclassifiedSuffix names the fallback directory <outRoot>/<YYYYMM>_Unclassified.
const UnclassifiedSuffix = "_Unclassified"

var unsafeChars = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", `"`, "_",
	"/", "_", `\`, "_", "|", "_", "?", "_", "*", "_",
)

// SafeName replaces characters that are invalid in Windows filenames with an
// underscore and strips trailing spaces and dots.
func SafeName(s string) string {
	return strings.TrimRight(unsafeChars.Replace(s), " .")
}

// prefixStops are the placeholders whose value is not known until move time.
var prefixStops = []string{Orig, Day, Ext, YearMonth}

// 📦 Rule is the subset of a category needed to resolve paths and names
type Rule struct {
	Key          string
	Rename       string
	PathTemplate string
	DestSubdir   string
}

// 🗺️ Resolver expands rules against a Period using the configured layout
type Resolver struct {
	OutRoot             string
	DefaultPathTemplate string
}

// activePath picks the rule template, then the default, then nothing.
func (r Resolver) activePath(rule Rule) string {
	if rule.PathTemplate != "" {
		return rule.PathTemplate
	}
	return r.DefaultPathTemplate
}

// TargetDir resolves the directory a rule classifies into for p.
func (r Resolver) TargetDir(rule Rule, p Period) (string, error) {
	tpl := r.activePath(rule)
	if tpl == "" {
		return filepath.Join(r.OutRoot, p.YYYYMM()+UnclassifiedSuffix), nil
	}

	prev := p.previousValues()
	cur := p.currentValues()

	sub := ""
	if rule.DestSubdir != "" {
		var err error
		sub, err = Parse(rule.DestSubdir).Bind(prev).Expand(cur)
		if err != nil {
			return "", errors.Errorf("expanding dest_subdir %q: %w", rule.DestSubdir, err)
		}
	}

	path := Parse(tpl).Bind(prev)
	dir, err := path.Expand(cur.merge(Values{DestSubdir: sub}))
	if err != nil {
		return "", errors.Errorf("expanding path template %q: %w", tpl, err)
	}

	if sub != "" && !path.Has(DestSubdir) {
		dir = filepath.Join(dir, sub)
	}

	return r.absolute(dir), nil
}

// RootHint is the directory shown as the period's root: the expanded default
// template, or the unclassified fallback.
func (r Resolver) RootHint(p Period) (string, error) {
	if r.DefaultPathTemplate == "" {
		return filepath.Join(r.OutRoot, p.YYYYMM()+UnclassifiedSuffix), nil
	}
	dir, err := Parse(r.DefaultPathTemplate).Bind(p.previousValues()).Expand(p.currentValues().merge(Values{DestSubdir: ""}))
	if err != nil {
		return "", errors.Errorf("expanding default path template: %w", err)
	}
	return r.absolute(dir), nil
}

func (r Resolver) absolute(dir string) string {
	if !filepath.IsAbs(dir) && r.OutRoot != "" {
		dir = filepath.Join(r.OutRoot, dir)
	}
	return filepath.Clean(dir)
}

// ExpectedPrefix is the static leading part of every filename the rule
// produces for p. Expansion stops at the first of {orig} {DD} {ext} {YYYYMM}.
func ExpectedPrefix(rule Rule, p Period) string {
	vals := p.previousValues().merge(Values{
		Year:  p.YYYY(),
		Month: p.MM(),
		Key:   SafeName(rule.Key),
	})
	return Parse(rule.Rename).Prefix(vals, prefixStops...)
}

// FileName expands the rename template at move time. orig must already be
// sanitized; ext carries its leading dot. The key is sanitized here so a key
// holding a separator never creates a subdirectory.
func FileName(rule Rule, p Period, day int, orig, ext string) (string, error) {
	vals := p.currentValues().merge(Values{
		Key:  SafeName(rule.Key),
		Day:  fmt.Sprintf("%02d", day),
		Orig: orig,
		Ext:  ext,
	})
	name, err := Parse(rule.Rename).Bind(p.previousValues()).Expand(vals)
	if err != nil {
		return "", errors.Errorf("expanding rename template %q: %w", rule.Rename, err)
	}
	return name, nil
}

// Check dry-runs every template of rule so configuration errors surface at
// load time instead of at the first move.
func (r Resolver) Check(rule Rule) error {
	p := Period{Year: 2000, Month: 1}
	if _, err := r.TargetDir(rule, p); err != nil {
		return err
	}
	if _, err := FileName(rule, p, 1, "_x", ".x"); err != nil {
		return err
	}
	return nil
}
