// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cacheview provides per-module read and write views over the
// persistent cache store: field metadata and translation bundles.
package cacheview
