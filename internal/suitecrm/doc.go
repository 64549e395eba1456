// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package suitecrm is a thin client for the SuiteCRM V8 endpoints the cache
// layer consumes: module metadata, user roles, field definitions and
// translation bundles.
package suitecrm
