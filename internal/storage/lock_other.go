// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

//go:build !unix && !windows

package storage

import "os"

// Platforms without advisory locks write unlocked.
func withLock(_ *os.File, fn func() error) error {
	return fn()
}
