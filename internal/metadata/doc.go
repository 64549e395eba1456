// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package metadata is the data layer for module field definitions. Every
// read checks the cache first and only goes to the network on a miss.
package metadata
