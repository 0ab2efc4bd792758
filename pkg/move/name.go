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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"github.com/walteh/classifyrc/pkg/template"
)

// SafeName replaces characters that are invalid in Windows filenames with an
// underscore and strips trailing spaces and dots.
func SafeName(s string) string {
	return template.SafeName(s)
}

// SplitName separates the final extension from a base name. A leading dot or
// a trailing dot does not start an extension: ".env" and "a." have none.
func SplitName(name string) (stem, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return name, ""
	}
	return name[:i], name[i:]
}

// Orig is the {orig} value for a source file: an underscore followed by the
// sanitized stem.
func Orig(path string) string {
	stem, _ := SplitName(filepath.Base(path))
	return "_" + SafeName(stem)
}

// Ext is the {ext} value for a source file, leading dot included.
func Ext(path string) string {
	_, ext := SplitName(filepath.Base(path))
	return ext
}

// FreePath returns path itself when nothing exists there, otherwise the first
// "<stem><marker><n><ext>" sibling that is free, counting n from 1.
func FreePath(path, marker string) string {
	if !exists(path) {
		return path
	}
	dir := filepath.Dir(path)
	stem, ext := SplitName(filepath.Base(path))
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s%s%d%s", stem, marker, n, ext))
		if !exists(candidate) {
			return candidate
		}
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
