// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package session ties the cache services to a user's login lifecycle.
package session
