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
	"strings"
)

// 📝 Formatter renders the short status line shown after each action
type Formatter interface {
	// Assigned summarizes one classification batch.
	Assigned(key string, ok, skippedExt, skippedMissing, failed int) string
	NothingToClassify() string
	Added(n int) string

	Undone() string
	UndoSkipped() string
	NothingToUndo() string
	Redone() string
	RedoSkipped() string
	NothingToRedo() string

	// Refreshed reports how many categories are satisfied.
	Refreshed(ok, total int) string
	OverrideSet(key string) string
	OverrideCleared(key string) string
	OverrideRefused(key string) string

	Error(err error) string
}

// NewFormatter returns the catalog for locale, Chinese when unknown.
func NewFormatter(locale string) Formatter {
	if strings.EqualFold(locale, "en") {
		return english{}
	}
	return chinese{}
}

type chinese struct{}

func (chinese) Assigned(key string, ok, skippedExt, skippedMissing, failed int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s：分类成功 %d 个", key, ok)
	if skippedExt > 0 {
		fmt.Fprintf(&b, "；扩展名不匹配跳过 %d 个", skippedExt)
	}
	if skippedMissing > 0 {
		fmt.Fprintf(&b, "；源文件不存在移除 %d 个", skippedMissing)
	}
	if failed > 0 {
		fmt.Fprintf(&b, "；失败 %d 个", failed)
	}
	return b.String()
}

func (chinese) NothingToClassify() string { return "没有可分类的文件" }
func (chinese) Added(n int) string        { return fmt.Sprintf("已添加 %d 个文件", n) }
func (chinese) Undone() string            { return "撤销成功：1 个" }
func (chinese) UndoSkipped() string       { return "撤销跳过：文件不存在" }
func (chinese) NothingToUndo() string     { return "没有可撤销的操作" }
func (chinese) Redone() string            { return "重做成功：1 个" }
func (chinese) RedoSkipped() string       { return "重做跳过：文件不存在" }
func (chinese) NothingToRedo() string     { return "没有可重做的操作" }

func (chinese) Refreshed(ok, total int) string {
	return fmt.Sprintf("刷新成功：%d/%d 类满足", ok, total)
}

func (chinese) OverrideSet(key string) string     { return fmt.Sprintf("%s：已标记为本月不适用", key) }
func (chinese) OverrideCleared(key string) string { return fmt.Sprintf("%s：已取消本月不适用", key) }
func (chinese) OverrideRefused(key string) string { return fmt.Sprintf("%s：已满足，不可手动标记", key) }

func (chinese) Error(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("操作失败：%v", err)
}

type english struct{}

func (english) Assigned(key string, ok, skippedExt, skippedMissing, failed int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: classified %d", key, ok)
	if skippedExt > 0 {
		fmt.Fprintf(&b, "; skipped %d (extension not allowed)", skippedExt)
	}
	if skippedMissing > 0 {
		fmt.Fprintf(&b, "; dropped %d (source missing)", skippedMissing)
	}
	if failed > 0 {
		fmt.Fprintf(&b, "; failed %d", failed)
	}
	return b.String()
}

func (english) NothingToClassify() string { return "No files to classify" }
func (english) Added(n int) string        { return fmt.Sprintf("Added %d files", n) }
func (english) Undone() string            { return "Undone: 1 file" }
func (english) UndoSkipped() string       { return "Undo skipped: file no longer exists" }
func (english) NothingToUndo() string     { return "Nothing to undo" }
func (english) Redone() string            { return "Redone: 1 file" }
func (english) RedoSkipped() string       { return "Redo skipped: file no longer exists" }
func (english) NothingToRedo() string     { return "Nothing to redo" }

func (english) Refreshed(ok, total int) string {
	return fmt.Sprintf("Refreshed: %d/%d categories satisfied", ok, total)
}

func (english) OverrideSet(key string) string     { return fmt.Sprintf("%s: marked not applicable this month", key) }
func (english) OverrideCleared(key string) string { return fmt.Sprintf("%s: not-applicable mark cleared", key) }
func (english) OverrideRefused(key string) string {
	return fmt.Sprintf("%s: already satisfied, cannot be marked", key)
}

func (english) Error(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed: %v", err)
}
