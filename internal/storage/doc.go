// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package storage persists poll results: plain JSON snapshots which are
// overwritten on every run, timestamped JSON snapshots, and a CSV file
// with one row appended per result record.
//
// Writers which can race with another poller process hold an exclusive
// advisory lock on the file for the duration of the write.
package storage
