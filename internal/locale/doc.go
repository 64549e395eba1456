// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package locale caches the user's date format, language and timezone
// preferences and renders ISO timestamps with them.
//
// Timestamps are read by their wall-clock digits only. The offset written in
// the string is ignored and the cached timezone offset is added as a flat
// shift. This is not a timezone conversion.
package locale
