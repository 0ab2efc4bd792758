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

package status

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/walteh/classifyrc/pkg/checklist"
)

// 🎨 Display configuration
const (
	keyWidth  = 40 // max width of the category column
	markWidth = 12
)

// Row is one rendered category of the checklist.
type Row struct {
	// Index is the 1-based number the shell accepts in place of the key.
	Index int
	Key   string
	Group string
	Count int
	State checklist.DisplayState
	Dir   string
}

// Mark renders a display state and count the way the checklist column shows
// it, e.g. "✅[2]".
func Mark(state checklist.DisplayState, count int) string {
	var symbol string
	switch state {
	case checklist.NotApplicable:
		symbol = color.YellowString("❎")
	case checklist.Satisfied:
		symbol = color.GreenString("✅")
	default:
		symbol = color.HiBlackString("⬜")
	}
	return fmt.Sprintf("%s[%d]", symbol, count)
}

// 🎯 RenderChecklist writes rows as a table, one header line per group in
// first-appearance order.
func RenderChecklist(w io.Writer, rows []Row, showDirs bool) error {
	table := uitable.New()
	table.MaxColWidth = keyWidth
	table.Wrap = true
	table.Separator = " "

	var order []string
	groups := map[string][]Row{}
	for _, r := range rows {
		if _, ok := groups[r.Group]; !ok {
			order = append(order, r.Group)
		}
		groups[r.Group] = append(groups[r.Group], r)
	}

	for _, g := range order {
		table.AddRow(color.New(color.Bold).Sprintf("—— %s ——", g), "")
		for _, r := range groups[g] {
			label := fmt.Sprintf("%3d  %s", r.Index, r.Key)
			if showDirs {
				table.AddRow(label, fmt.Sprintf("%-*s", markWidth, Mark(r.State, r.Count)), color.HiBlackString(r.Dir))
				continue
			}
			table.AddRow(label, Mark(r.State, r.Count))
		}
	}

	_, err := fmt.Fprintln(w, table)
	return err
}

// RenderPending writes the numbered pending list.
func RenderPending(w io.Writer, paths []string) error {
	table := uitable.New()
	for i, p := range paths {
		table.AddRow(color.CyanString("%d", i), p)
	}
	_, err := fmt.Fprintln(w, table)
	return err
}
