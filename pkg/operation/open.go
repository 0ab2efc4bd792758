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

package operation

import (
	"context"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Opener reveals a directory to the operator.
type Opener interface {
	Open(ctx context.Context, dir string) error
}

// SystemOpener starts the platform file manager on the directory.
type SystemOpener struct{}

func (SystemOpener) Open(ctx context.Context, dir string) error {
	name := "xdg-open"
	switch runtime.GOOS {
	case "darwin":
		name = "open"
	case "windows":
		name = "explorer"
	}

	// not tied to ctx: the file manager outlives the request
	cmd := exec.Command(name, dir)
	if err := cmd.Start(); err != nil {
		return errors.Errorf("starting %s: %w", name, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("opener", name).Msg("opener exited")
		}
	}()
	return nil
}
