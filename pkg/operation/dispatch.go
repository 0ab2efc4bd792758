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

	"github.com/rs/zerolog"
	"github.com/walteh/classifyrc/pkg/instance"
)

// Dispatch adapts the session to the instance listener. Messages are posted to
// the runner and never touch the session from the listener goroutine. onAdd
// and onRaise run on the session goroutine afterwards and may be nil.
func Dispatch(r *Runner, s *Session, onAdd func(ctx context.Context, added int), onRaise func(ctx context.Context)) instance.Handler {
	return func(ctx context.Context, msg instance.Message) {
		logger := zerolog.Ctx(ctx)

		var task Task
		switch msg.Cmd {
		case instance.CommandAdd:
			files := append([]string(nil), msg.Files...)
			task = func(ctx context.Context) {
				n := s.AddFiles(ctx, files...)
				if onAdd != nil {
					onAdd(ctx, n)
				}
			}
		case instance.CommandRaise:
			task = func(ctx context.Context) {
				if onRaise != nil {
					onRaise(ctx)
				}
			}
		default:
			return
		}

		if err := r.Post(ctx, task); err != nil {
			logger.Warn().Err(err).Str("cmd", string(msg.Cmd)).Msg("dropping hand-off")
		}
	}
}
