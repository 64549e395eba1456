// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package filters narrows command results with --filter expressions such as
// "module^Acc,access=true".
package filters
