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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Token
	}{
		{
			name: "mixed",
			in:   "{YYYY}{MM}-{orig}{ext}",
			want: []Token{
				{Kind: Placeholder, Text: "YYYY"},
				{Kind: Placeholder, Text: "MM"},
				{Kind: Literal, Text: "-"},
				{Kind: Placeholder, Text: "orig"},
				{Kind: Placeholder, Text: "ext"},
			},
		},
		{
			name: "unterminated_brace_is_literal",
			in:   "a{YYYY",
			want: []Token{{Kind: Literal, Text: "a{YYYY"}},
		},
		{
			name: "empty_braces_are_literal",
			in:   "x{}y",
			want: []Token{{Kind: Literal, Text: "x{}y"}},
		},
		{
			name: "nested_open_brace",
			in:   "{a{MM}",
			want: []Token{
				{Kind: Literal, Text: "{a"},
				{Kind: Placeholder, Text: "MM"},
			},
		},
		{
			name: "minus_one_is_its_own_token",
			in:   "{YYYYMM-1}_{YYYYMM}",
			want: []Token{
				{Kind: Placeholder, Text: "YYYYMM-1"},
				{Kind: Literal, Text: "_"},
				{Kind: Placeholder, Text: "YYYYMM"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.in)
			assert.Equal(t, tt.want, got.Tokens())
			assert.Equal(t, tt.in, got.String(), "rendering a parsed template should round trip")
		})
	}
}

func TestExpand(t *testing.T) {
	t.Run("unknown_placeholders_are_kept", func(t *testing.T) {
		out, err := Parse("{YYYY}/{custom}").Expand(Values{Year: "2025"})
		require.NoError(t, err)
		assert.Equal(t, "2025/{custom}", out)
	})

	t.Run("known_unbound_placeholder_fails", func(t *testing.T) {
		_, err := Parse("{YYYY}/{orig}").Expand(Values{Year: "2025"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnbound))
	})

	t.Run("bind_then_expand", func(t *testing.T) {
		tpl := Parse("{YYYY-1}{MM-1}-{YYYY}").Bind(Values{PrevYear: "2024", PrevMonth: "12"})
		assert.Equal(t, "202412-{YYYY}", tpl.String())
		out, err := tpl.Expand(Values{Year: "2025"})
		require.NoError(t, err)
		assert.Equal(t, "202412-2025", out)
	})
}

func TestPeriod(t *testing.T) {
	tests := []struct {
		name string
		in   Period
		want Period
	}{
		{name: "year_rollover", in: Period{Year: 2025, Month: 1}, want: Period{Year: 2024, Month: 12}},
		{name: "mid_year", in: Period{Year: 2025, Month: 7}, want: Period{Year: 2025, Month: 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Previous())
		})
	}

	p, err := ParsePeriod("2025-03")
	require.NoError(t, err)
	assert.Equal(t, Period{Year: 2025, Month: 3}, p)
	assert.Equal(t, "2025-03", p.Key())
	assert.Equal(t, "202503", p.YYYYMM())

	p, err = ParsePeriod("202511")
	require.NoError(t, err)
	assert.Equal(t, Period{Year: 2025, Month: 11}, p)

	_, err = ParsePeriod("2025-13")
	assert.Error(t, err)
	_, err = ParsePeriod("march")
	assert.Error(t, err)
}

func TestTargetDir(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "office", "out")

	tests := []struct {
		name     string
		resolver Resolver
		rule     Rule
		period   Period
		want     string
	}{
		{
			name:     "fallback_unclassified",
			resolver: Resolver{OutRoot: root},
			rule:     Rule{Key: "a", Rename: "{orig}{ext}"},
			period:   Period{Year: 2025, Month: 3},
			want:     filepath.Join(root, "202503_Unclassified"),
		},
		{
			name:     "default_template",
			resolver: Resolver{OutRoot: root, DefaultPathTemplate: root + "/{YYYY}/{MM}"},
			rule:     Rule{Key: "a"},
			period:   Period{Year: 2025, Month: 3},
			want:     filepath.Join(root, "2025", "03"),
		},
		{
			name:     "rule_template_overrides_default",
			resolver: Resolver{OutRoot: root, DefaultPathTemplate: root + "/{YYYY}"},
			rule:     Rule{Key: "a", PathTemplate: root + "/rule/{YYYYMM}"},
			period:   Period{Year: 2025, Month: 3},
			want:     filepath.Join(root, "rule", "202503"),
		},
		{
			name:     "subdir_appended_when_not_referenced",
			resolver: Resolver{OutRoot: root, DefaultPathTemplate: root + "/{YYYY}"},
			rule:     Rule{Key: "a", DestSubdir: "{MM}_bills"},
			period:   Period{Year: 2025, Month: 3},
			want:     filepath.Join(root, "2025", "03_bills"),
		},
		{
			name:     "subdir_placed_where_referenced",
			resolver: Resolver{OutRoot: root, DefaultPathTemplate: root + "/{dest_subdir}/{YYYY}"},
			rule:     Rule{Key: "a", DestSubdir: "bills"},
			period:   Period{Year: 2025, Month: 3},
			want:     filepath.Join(root, "bills", "2025"),
		},
		{
			name:     "previous_month_across_year",
			resolver: Resolver{OutRoot: root, DefaultPathTemplate: root + "/{YYYY-1}/{YYYYMM-1}"},
			rule:     Rule{Key: "a", DestSubdir: "{MM-1}"},
			period:   Period{Year: 2025, Month: 1},
			want:     filepath.Join(root, "2024", "202412", "12"),
		},
		{
			name:     "relative_template_under_out_root",
			resolver: Resolver{OutRoot: root, DefaultPathTemplate: "{YYYY}/docs"},
			rule:     Rule{Key: "a"},
			period:   Period{Year: 2025, Month: 3},
			want:     filepath.Join(root, "2025", "docs"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.resolver.TargetDir(tt.rule, tt.period)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTargetDirFallbackForAllPeriods(t *testing.T) {
	r := Resolver{OutRoot: "/out"}
	for y := 1999; y <= 2031; y += 4 {
		for m := 1; m <= 12; m++ {
			p := Period{Year: y, Month: m}
			got, err := r.TargetDir(Rule{Key: "k", Rename: "{orig}"}, p)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join("/out", p.YYYYMM()+"_Unclassified"), got)
		}
	}
}

func TestTargetDirUnboundPlaceholder(t *testing.T) {
	r := Resolver{OutRoot: "/out", DefaultPathTemplate: "/out/{orig}"}
	_, err := r.TargetDir(Rule{Key: "k"}, Period{Year: 2025, Month: 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnbound))
	assert.Error(t, r.Check(Rule{Key: "k", Rename: "{orig}"}))
}

func TestExpectedPrefix(t *testing.T) {
	tests := []struct {
		name   string
		rename string
		period Period
		want   string
	}{
		{name: "truncate_at_orig", rename: "{YYYY}{MM}-{orig}{ext}", period: Period{Year: 2025, Month: 3}, want: "202503-"},
		{name: "truncate_at_day", rename: "bill_{YYYY}{MM}{DD}{orig}", period: Period{Year: 2025, Month: 3}, want: "bill_202503"},
		{name: "truncate_at_yyyymm", rename: "report_{YYYYMM}{ext}", period: Period{Year: 2025, Month: 3}, want: "report_"},
		{name: "previous_month", rename: "{YYYYMM-1}_{orig}", period: Period{Year: 2025, Month: 1}, want: "202412_"},
		{name: "no_stop_token", rename: "fixed_{YYYY}.pdf", period: Period{Year: 2025, Month: 3}, want: "fixed_2025.pdf"},
		{name: "key_expanded", rename: "{key}_{orig}", period: Period{Year: 2025, Month: 3}, want: "rent_"},
		{name: "unknown_kept", rename: "{custom}-{orig}", period: Period{Year: 2025, Month: 3}, want: "{custom}-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpectedPrefix(Rule{Key: "rent", Rename: tt.rename}, tt.period)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileName(t *testing.T) {
	rule := Rule{Key: "rent", Rename: "{YYYY}{MM}{DD}-{key}{orig}{ext}"}
	name, err := FileName(rule, Period{Year: 2025, Month: 3}, 7, "_lease", ".pdf")
	require.NoError(t, err)
	assert.Equal(t, "20250307-rent_lease.pdf", name)

	assert.Equal(t, "202503", ExpectedPrefix(rule, Period{Year: 2025, Month: 3}))
}

func TestKeyIsSanitizedInNames(t *testing.T) {
	rule := Rule{Key: "水/电费:Q1.", Rename: "{key}-{YYYY}{MM}{orig}{ext}"}
	p := Period{Year: 2025, Month: 3}

	name, err := FileName(rule, p, 7, "_bill", ".pdf")
	require.NoError(t, err)
	assert.Equal(t, "水_电费_Q1-202503_bill.pdf", name)
	assert.Equal(t, name, filepath.Base(name), "a key never introduces a directory")

	assert.Equal(t, "水_电费_Q1-202503", ExpectedPrefix(rule, p), "the prefix matches the names the mover writes")
}
