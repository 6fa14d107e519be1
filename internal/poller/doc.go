// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package poller runs poll jobs: one request through the retrying
// client, with the successful response handed to a list of sinks which
// persist it.
package poller
