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

package checklist

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/classifyrc/pkg/config"
	"github.com/walteh/classifyrc/pkg/move"
	"github.com/walteh/classifyrc/pkg/template"
	"gitlab.com/tozd/go/errors"
)

// DisplayState is what the operator sees for a category.
type DisplayState int

const (
	Unsatisfied DisplayState = iota
	Satisfied
	NotApplicable
)

func (s DisplayState) String() string {
	switch s {
	case Satisfied:
		return "satisfied"
	case NotApplicable:
		return "not_applicable"
	default:
		return "unsatisfied"
	}
}

// Compose applies the precedence override > satisfied > default. An override
// only counts while the category is not automatically satisfied.
func Compose(satisfied, override bool) DisplayState {
	if override && !satisfied {
		return NotApplicable
	}
	if satisfied {
		return Satisfied
	}
	return Unsatisfied
}

// 📊 Result is the automatic status of one category for one period
type Result struct {
	Key       string
	Group     string
	Dir       string
	Prefix    string
	Count     int
	Satisfied bool

	// Err is set when the directory could not be resolved or read. Count is
	// zero in that case.
	Err error
}

// Evaluate counts matching files for every category of cfg in period p. It
// only reads the filesystem.
func Evaluate(ctx context.Context, cfg *config.Config, p template.Period) []Result {
	logger := zerolog.Ctx(ctx)
	resolver := cfg.Resolver()

	results := make([]Result, 0, len(cfg.Items))
	for _, it := range cfg.Items {
		rule := it.Template()
		res := Result{
			Key:    it.Key,
			Group:  it.Group(),
			Prefix: template.ExpectedPrefix(rule, p),
		}

		dir, err := resolver.TargetDir(rule, p)
		if err != nil {
			res.Err = errors.Errorf("resolving directory for %q: %w", it.Key, err)
			logger.Warn().Err(res.Err).Str("key", it.Key).Msg("skipping category")
			results = append(results, res)
			continue
		}
		res.Dir = dir

		res.Count, res.Err = Count(dir, res.Prefix, it)
		if res.Err != nil {
			logger.Warn().Err(res.Err).Str("dir", dir).Msg("counting files")
		}
		res.Satisfied = it.Presence().Satisfied(res.Count)

		results = append(results, res)
	}

	return results
}

// Count returns the number of regular files directly inside dir whose name
// starts with prefix and whose extension passes the rule. A missing directory
// counts as zero.
func Count(dir, prefix string, rule config.CategoryRule) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Errorf("reading %s: %w", dir, err)
	}

	n := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if !rule.AcceptsExt(move.Ext(name)) {
			continue
		}
		n++
	}
	return n, nil
}

// Summary returns how many results are satisfied out of the total.
func Summary(results []Result) (ok, total int) {
	for _, r := range results {
		if r.Satisfied {
			ok++
		}
	}
	return ok, len(results)
}
