// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/gogama/apipoll/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
