// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package locale

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidTimezone is returned for a timezone preference that is not a
// "{cc}*{zone}*{offset}" triple.
var ErrInvalidTimezone = errors.New("invalid timezone preference")

var offsetRegex = regexp.MustCompile(`^(?:UTC|GMT)?([+-])(\d{1,2})(?::?(\d{2}))?$`)

// Timezone is a parsed timezone preference.
type Timezone struct {
	CountryCode   string
	Zone          string
	Offset        string
	OffsetMinutes int
}

// String renders the preference triple.
func (tz Timezone) String() string {
	return tz.CountryCode + "*" + tz.Zone + "*" + tz.Offset
}

// ParseTimezone parses a "{countryCode}*{ianaZoneName}*{utcOffset}" triple,
// e.g. "VN*Asia/Ho_Chi_Minh*+07:00".
func ParseTimezone(s string) (Timezone, error) {
	parts := strings.Split(strings.TrimSpace(s), "*")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return Timezone{}, fmt.Errorf("%w: %q", ErrInvalidTimezone, s)
	}
	minutes, err := ParseOffset(parts[2])
	if err != nil {
		return Timezone{}, err
	}
	return Timezone{
		CountryCode:   strings.ToUpper(parts[0]),
		Zone:          parts[1],
		Offset:        parts[2],
		OffsetMinutes: minutes,
	}, nil
}

// ParseOffset converts "+07:00", "-0330", "+5" or "UTC+05:30" to minutes.
// "Z" and "" are zero.
func ParseOffset(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "Z" {
		return 0, nil
	}
	m := offsetRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: bad offset %q", ErrInvalidTimezone, s)
	}
	hours, _ := strconv.Atoi(m[2])
	mins := 0
	if m[3] != "" {
		mins, _ = strconv.Atoi(m[3])
	}
	if hours > 14 || mins > 59 {
		return 0, fmt.Errorf("%w: offset out of range %q", ErrInvalidTimezone, s)
	}
	total := hours*60 + mins
	if m[1] == "-" {
		total = -total
	}
	return total, nil
}

// Zone is an entry of the timezone reference table.
type Zone struct {
	CountryCode   string
	Name          string
	Offset        string
	PopularFormat string
}

// Zones is the reference table of selectable timezones and the date format
// conventionally used in each country.
var Zones = []Zone{
	{"US", "America/New_York", "-05:00", FormatMDY},
	{"US", "America/Chicago", "-06:00", FormatMDY},
	{"US", "America/Denver", "-07:00", FormatMDY},
	{"US", "America/Los_Angeles", "-08:00", FormatMDY},
	{"US", "America/Anchorage", "-09:00", FormatMDY},
	{"US", "Pacific/Honolulu", "-10:00", FormatMDY},
	{"CA", "America/Toronto", "-05:00", FormatISO},
	{"CA", "America/Vancouver", "-08:00", FormatISO},
	{"MX", "America/Mexico_City", "-06:00", FormatDMY},
	{"BR", "America/Sao_Paulo", "-03:00", FormatDMY},
	{"AR", "America/Argentina/Buenos_Aires", "-03:00", FormatDMY},
	{"GB", "Europe/London", "+00:00", FormatDMY},
	{"IE", "Europe/Dublin", "+00:00", FormatDMY},
	{"FR", "Europe/Paris", "+01:00", FormatDMY},
	{"DE", "Europe/Berlin", "+01:00", FormatDMY},
	{"ES", "Europe/Madrid", "+01:00", FormatDMY},
	{"IT", "Europe/Rome", "+01:00", FormatDMY},
	{"NL", "Europe/Amsterdam", "+01:00", FormatDMY},
	{"SE", "Europe/Stockholm", "+01:00", FormatISO},
	{"PL", "Europe/Warsaw", "+01:00", FormatDMY},
	{"RU", "Europe/Moscow", "+03:00", FormatDMY},
	{"TR", "Europe/Istanbul", "+03:00", FormatDMY},
	{"AE", "Asia/Dubai", "+04:00", FormatDMY},
	{"IN", "Asia/Kolkata", "+05:30", FormatDMY},
	{"NP", "Asia/Kathmandu", "+05:45", FormatYMD},
	{"BD", "Asia/Dhaka", "+06:00", FormatDMY},
	{"TH", "Asia/Bangkok", "+07:00", FormatDMY},
	{"VN", "Asia/Ho_Chi_Minh", "+07:00", FormatDMY},
	{"ID", "Asia/Jakarta", "+07:00", FormatDMY},
	{"MY", "Asia/Kuala_Lumpur", "+08:00", FormatDMY},
	{"SG", "Asia/Singapore", "+08:00", FormatDMY},
	{"PH", "Asia/Manila", "+08:00", FormatMDY},
	{"CN", "Asia/Shanghai", "+08:00", FormatYMD},
	{"HK", "Asia/Hong_Kong", "+08:00", FormatDMY},
	{"TW", "Asia/Taipei", "+08:00", FormatYMD},
	{"KR", "Asia/Seoul", "+09:00", FormatYMD},
	{"JP", "Asia/Tokyo", "+09:00", FormatYMD},
	{"AU", "Australia/Sydney", "+10:00", FormatDMY},
	{"AU", "Australia/Perth", "+08:00", FormatDMY},
	{"NZ", "Pacific/Auckland", "+12:00", FormatDMY},
	{"ZA", "Africa/Johannesburg", "+02:00", FormatYMD},
	{"EG", "Africa/Cairo", "+02:00", FormatDMY},
	{"NG", "Africa/Lagos", "+01:00", FormatDMY},
	{"KE", "Africa/Nairobi", "+03:00", FormatDMY},
}

// LookupZone finds the reference entry for tz, matching country and zone
// name.
func LookupZone(tz Timezone) (Zone, bool) {
	for _, z := range Zones {
		if z.CountryCode == tz.CountryCode && z.Name == tz.Zone {
			return z, true
		}
	}
	return Zone{}, false
}
