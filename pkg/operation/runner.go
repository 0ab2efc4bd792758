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
	"gitlab.com/tozd/go/errors"
)

// ErrRunnerStopped is returned when posting to a runner that has exited.
var ErrRunnerStopped = errors.Base("runner stopped")

// Task is a unit of work executed on the session goroutine.
type Task func(ctx context.Context)

// 🏃 Runner executes posted tasks one at a time on a single goroutine, so the
// session it guards never needs a lock
type Runner struct {
	tasks chan Task
	done  chan struct{}
}

// 🏗️ NewRunner creates a runner with room for buffer queued tasks
func NewRunner(buffer int) *Runner {
	return &Runner{
		tasks: make(chan Task, buffer),
		done:  make(chan struct{}),
	}
}

// 🏃 Run executes tasks until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)
	logger := zerolog.Ctx(ctx)
	logger.Debug().Msg("runner started")

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("runner stopped")
			return nil
		case task := <-r.tasks:
			task(ctx)
		}
	}
}

// 📬 Post queues task without waiting for it to run. It is safe to call from
// any goroutine.
func (r *Runner) Post(ctx context.Context, task Task) error {
	select {
	case <-r.done:
		return ErrRunnerStopped
	default:
	}

	select {
	case r.tasks <- task:
		return nil
	case <-r.done:
		return ErrRunnerStopped
	case <-ctx.Done():
		return errors.Errorf("posting task: %w", ctx.Err())
	}
}

// 🔄 Do queues task and waits for it to finish, returning its error.
func (r *Runner) Do(ctx context.Context, task func(ctx context.Context) error) error {
	result := make(chan error, 1)
	if err := r.Post(ctx, func(ctx context.Context) { result <- task(ctx) }); err != nil {
		return err
	}

	select {
	case err := <-result:
		return err
	case <-r.done:
		select {
		case err := <-result:
			return err
		default:
			return ErrRunnerStopped
		}
	case <-ctx.Done():
		return errors.Errorf("waiting for task: %w", ctx.Err())
	}
}
