// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

//go:build windows

package storage

import (
	"math"
	"os"

	"golang.org/x/sys/windows"
)

func withLock(f *os.File, fn func() error) error {
	h := windows.Handle(f.Fd())
	ol := new(windows.Overlapped)
	if err := windows.LockFileEx(h, windows.LOCKFILE_EXCLUSIVE_LOCK, 0, math.MaxUint32, math.MaxUint32, ol); err != nil {
		return err
	}
	defer func() {
		_ = windows.UnlockFileEx(h, 0, math.MaxUint32, math.MaxUint32, ol)
	}()
	return fn()
}
