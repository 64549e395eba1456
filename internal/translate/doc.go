// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package translate resolves SuiteCRM labels from system and module language
// bundles. Lookups run through an ordered list of strategies and always
// produce a string, falling back to the key itself.
package translate
