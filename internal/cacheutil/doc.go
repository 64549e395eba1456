// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cacheutil is the persistent cache store: whole-file JSON entries
// under a directory tree that mirrors the (module, category, name) key.
package cacheutil
