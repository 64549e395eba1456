// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package locale

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Supported display formats.
const (
	FormatDMY      = "dd/MM/yyyy"
	FormatMDY      = "MM/dd/yyyy"
	FormatDMYShort = "dd/MM/yy"
	FormatMDYShort = "MM/dd/yy"
	FormatYMD      = "yyyy/MM/dd"
	FormatISO      = "yyyy-MM-dd"

	// DefaultFormat is used whenever nothing better is known.
	DefaultFormat = FormatDMY
)

const timeSuffix = " 15:04:05"

var layouts = map[string]string{
	FormatDMY:      "02/01/2006",
	FormatMDY:      "01/02/2006",
	FormatDMYShort: "02/01/06",
	FormatMDYShort: "01/02/06",
	FormatYMD:      "2006/01/02",
	FormatISO:      "2006-01-02",
}

// ErrInvalidTimestamp is returned for input that is not an ISO-8601 date or
// date-time.
var ErrInvalidTimestamp = errors.New("invalid ISO-8601 timestamp")

var isoRegex = regexp.MustCompile(
	`^(\d{4})-(\d{2})-(\d{2})(?:[T ](\d{2}):(\d{2})(?::(\d{2})(?:\.\d+)?)?)?(Z|[+-]\d{2}(?::?\d{2})?)?$`)

// Supported reports whether format is one of the display formats.
func Supported(format string) bool {
	_, ok := layouts[format]
	return ok
}

// Formats returns the supported display formats.
func Formats() []string {
	return []string{FormatDMY, FormatMDY, FormatDMYShort, FormatMDYShort, FormatYMD, FormatISO}
}

// ParseWallClock parses the calendar and clock digits of an ISO-8601
// timestamp into a UTC time. Any offset in the string is discarded: only
// the wall-clock digits are kept.
func ParseWallClock(iso string) (time.Time, error) {
	m := isoRegex.FindStringSubmatch(strings.TrimSpace(iso))
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, iso)
	}

	n := make([]int, 6)
	for i := range n {
		if m[i+1] != "" {
			n[i], _ = strconv.Atoi(m[i+1])
		}
	}

	t := time.Date(n[0], time.Month(n[1]), n[2], n[3], n[4], n[5], 0, time.UTC)
	// time.Date normalizes out-of-range fields; reject them instead.
	if t.Year() != n[0] || int(t.Month()) != n[1] || t.Day() != n[2] ||
		t.Hour() != n[3] || t.Minute() != n[4] || t.Second() != n[5] {
		return time.Time{}, fmt.Errorf("%w: %q out of range", ErrInvalidTimestamp, iso)
	}
	return t, nil
}

// Render formats t with one of the supported formats, appending HH:mm:ss
// when withTime is set. Unsupported formats render as DefaultFormat.
func Render(t time.Time, format string, withTime bool) string {
	layout, ok := layouts[format]
	if !ok {
		layout = layouts[DefaultFormat]
	}
	if withTime {
		layout += timeSuffix
	}
	return t.Format(layout)
}

// Format parses iso, shifts it by offsetMinutes and renders it.
func Format(iso, format string, offsetMinutes int, withTime bool) (string, error) {
	t, err := ParseWallClock(iso)
	if err != nil {
		return "", err
	}
	return Render(t.Add(time.Duration(offsetMinutes)*time.Minute), format, withTime), nil
}

// LanguageFormat is the format implied by a SuiteCRM language code such as
// "en_us": month first for US and Philippine English, year first for
// Japanese and Korean with a region and for mainland Chinese, day first
// otherwise.
func LanguageFormat(lang string) string {
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return DefaultFormat
	}
	base, _ := tag.Base()
	region, conf := tag.Region()
	exact := conf == language.Exact

	switch base.String() {
	case "en":
		if exact && (region.String() == "US" || region.String() == "PH") {
			return FormatMDY
		}
	case "ja", "ko":
		if exact {
			return FormatYMD
		}
	case "zh":
		if exact && region.String() == "CN" {
			return FormatYMD
		}
	}
	return DefaultFormat
}
