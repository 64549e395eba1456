// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package registry holds the session-scoped module list and the current
// user's role permissions. Both load once and are cleared on logout.
package registry
