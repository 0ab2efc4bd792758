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

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// candidateNames are tried in order inside every search directory.
var candidateNames = []string{"config.json", "config.yaml", "config.yml", "config.hcl"}

// SearchDirs returns the directories searched when no explicit path is given:
// the executable's directory, then the working directory.
func SearchDirs() []string {
	var dirs []string
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		dirs = append(dirs, filepath.Dir(exe))
	}
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	return dirs
}

// Locate returns explicit when set, otherwise the first configuration
// document found in dirs.
func Locate(ctx context.Context, explicit string, dirs []string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	for _, dir := range dirs {
		for _, name := range candidateNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				zerolog.Ctx(ctx).Debug().Str("path", path).Msg("found configuration")
				return path, nil
			}
		}
	}

	return "", errors.Errorf("%w: no configuration found in %v", ErrConfig, dirs)
}
