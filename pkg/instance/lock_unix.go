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

//go:build unix

package instance

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
	"gitlab.com/tozd/go/errors"
)

type flockLock struct {
	f *os.File
}

func acquireLock(name string) (Lock, error) {
	path := filepath.Join(os.TempDir(), name+".lock")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, errors.Errorf("%w: opening %s: %w", ErrLockUnsupported, path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, errors.Errorf("%w: %s", ErrLockHeld, path)
		}
		return nil, errors.Errorf("%w: flock %s: %w", ErrLockUnsupported, path, err)
	}

	return &flockLock{f: f}, nil
}

func (l *flockLock) Release() error {
	if err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN); err != nil {
		l.f.Close()
		return errors.Errorf("unlocking: %w", err)
	}
	return l.f.Close()
}
