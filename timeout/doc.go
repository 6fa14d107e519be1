// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout decides the total time budget given to each attempt
// the retrying client makes. Every attempt gets a fresh budget: the
// timeout applies per attempt, not to the whole execution.
package timeout
