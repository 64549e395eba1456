// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// crmcache is the main package for the crmcache command line tool. It wires
// the CLI over the SuiteCRM metadata and translation cache and serves as the
// entry point.
package main
