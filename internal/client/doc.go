// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the notevault command line.
//
// It parses configuration flags, opens the vault lazily on the first command
// that needs it and maps every vault operation onto a cobra subcommand.
// PINs come from the --pin flag or are prompted for without echo.
package client
