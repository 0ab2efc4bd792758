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

//go:build windows

package instance

import (
	"golang.org/x/sys/windows"
	"gitlab.com/tozd/go/errors"
)

type mutexLock struct {
	h windows.Handle
}

func acquireLock(name string) (Lock, error) {
	p, err := windows.UTF16PtrFromString(`Local\` + name)
	if err != nil {
		return nil, errors.Errorf("%w: %w", ErrLockUnsupported, err)
	}

	h, err := windows.CreateMutex(nil, false, p)
	if err != nil {
		if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
			if h != 0 {
				windows.CloseHandle(h)
			}
			return nil, errors.Errorf("%w: %s", ErrLockHeld, name)
		}
		return nil, errors.Errorf("%w: CreateMutex: %w", ErrLockUnsupported, err)
	}

	return &mutexLock{h: h}, nil
}

func (l *mutexLock) Release() error {
	return windows.CloseHandle(l.h)
}
