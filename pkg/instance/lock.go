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

package instance

import "gitlab.com/tozd/go/errors"

var (
	// ErrLockHeld means another process owns the named lock.
	ErrLockHeld = errors.Base("lock held by another process")

	// ErrLockUnsupported means the platform has no named exclusive lock.
	ErrLockUnsupported = errors.Base("exclusive lock unsupported")
)

// Lock is a held system-wide named lock.
type Lock interface {
	Release() error
}

// AcquireLock takes the named exclusive lock without blocking. It fails with
// ErrLockHeld when another holder exists.
func AcquireLock(name string) (Lock, error) {
	return acquireLock(name)
}
