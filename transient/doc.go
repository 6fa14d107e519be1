// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies transport failures which prevent a
// status line from being received: timeouts, refused and reset
// connections, DNS failures, and TLS failures. The categories are
// attached to request errors and used as log fields.
//
// Package transient depends only on the standard library.
package transient
