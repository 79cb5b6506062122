// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command avatardemo loads an avatar source and renders it to PNG.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "avatardemo:", err)
		os.Exit(1)
	}
}
