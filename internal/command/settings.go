// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/locale"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/meta"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/output"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/settings"
)

// masked hides secret values in settings output.
const masked = "********"

// SettingsShowCommandAction prints the stored preferences along with the
// date format they resolve to.
func SettingsShowCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, _ := OpenSession(cmd)

	values := map[string]any{}
	for _, k := range s.Settings.Keys() {
		v, _ := s.Settings.Get(k)
		if k == settings.KeyToken && v != "" {
			v = masked
		}
		values[k] = v
	}
	values["effectiveDateFormat"] = s.Locale.DateFormat()
	if tz := s.Locale.Snapshot().ParsedTimezone(); tz.Zone != "" {
		values["utcOffset"] = tz.Offset
	}

	return emit(cmd, output.KeyValueTable("KEY", "VALUE", values), values)
}

type settingsResult struct {
	DateFormat string `json:"dateFormat" yaml:"dateFormat"`
	Effective  string `json:"effectiveDateFormat" yaml:"effectiveDateFormat"`
	Language   string `json:"selectedLanguage" yaml:"selectedLanguage"`
	Timezone   string `json:"timezone" yaml:"timezone"`
	Generation uint64 `json:"generation" yaml:"generation"`
}

// SettingsSetCommandAction updates the locale preferences. Flags that are
// not given keep their stored value.
func SettingsSetCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, _ := OpenSession(cmd)
	cur := s.Locale.Snapshot()

	format, lang, tz := cur.DateFormat, cur.Language, cur.Timezone
	if cmd.IsSet("format") {
		format = cmd.String("format")
	}
	if cmd.IsSet("language") {
		lang = cmd.String("language")
	}
	if cmd.IsSet("timezone") {
		tz = cmd.String("timezone")
	}

	snap, err := s.ApplySettings(format, lang, tz)
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	for flag, key := range map[string]string{
		"currency": settings.KeySelectedCurrency,
		"username": settings.KeyUsername,
	} {
		if cmd.IsSet(flag) {
			if err := s.Settings.Set(key, cmd.String(flag)); err != nil {
				return fmt.Errorf("settings: %w", err)
			}
		}
	}

	res := settingsResult{
		DateFormat: snap.DateFormat,
		Effective:  snap.EffectiveFormat(),
		Language:   snap.Language,
		Timezone:   snap.Timezone,
		Generation: snap.Generation,
	}
	return emit(cmd, output.KeyValueTable("KEY", "VALUE", map[string]any{
		settings.KeyDateFormat:       res.DateFormat,
		"effectiveDateFormat":        res.Effective,
		settings.KeySelectedLanguage: res.Language,
		settings.KeyTimezone:         res.Timezone,
	}), res)
}

// SettingsZonesCommandAction lists the timezone reference table, optionally
// narrowed to one country.
func SettingsZonesCommandAction(ctx context.Context, cmd *cli.Command) error {
	country := strings.ToUpper(cmd.String("country"))

	var zones []locale.Zone
	t := output.Table{Headers: []string{"TIMEZONE", "OFFSET", "FORMAT"}}
	for _, z := range locale.Zones {
		if country != "" && z.CountryCode != country {
			continue
		}
		zones = append(zones, z)
		triple := locale.Timezone{CountryCode: z.CountryCode, Zone: z.Name, Offset: z.Offset}.String()
		t.Rows = append(t.Rows, []string{triple, z.Offset, z.PopularFormat})
	}
	return emit(cmd, t, zones)
}

// SettingsCommandBuilder constructs the "settings" command and its
// subcommands.
func SettingsCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "settings",
		Usage:     "show or change device preferences",
		UsageText: `crmcache settings show|set|zones [options]`,
		Commands: []*cli.Command{
			(&CommandBuilder{
				Name:      "show",
				Usage:     "show stored preferences",
				UsageText: `crmcache settings show [options]`,
				Action:    SettingsShowCommandAction,
				Meta:      meta,
			}).Build(),
			(&CommandBuilder{
				Name:      "set",
				Usage:     "change locale preferences",
				UsageText: `crmcache settings set [--format <fmt>] [--language <lang>] [--timezone <cc*zone*offset>] [options]`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   fmt.Sprintf("date format override, empty for automatic %v", locale.Formats()),
						Validator: func(value string) error {
							return FlagValidators(value, DateFormatValidator)
						},
					},
					&cli.StringFlag{
						Name:    "language",
						Aliases: []string{"l"},
						Usage:   "selected language, e.g. en_us",
					},
					&cli.StringFlag{
						Name:  "timezone",
						Usage: "timezone triple, e.g. VN*Asia/Ho_Chi_Minh*+07:00",
						Validator: func(value string) error {
							return FlagValidators(value, TimezoneValidator)
						},
					},
					&cli.StringFlag{
						Name:  "currency",
						Usage: "selected currency",
					},
					&cli.StringFlag{
						Name:  "username",
						Usage: "display name of the signed in user",
					},
				},
				Action: SettingsSetCommandAction,
				Meta:   meta,
			}).Build(),
			(&CommandBuilder{
				Name:      "zones",
				Usage:     "list selectable timezones",
				UsageText: `crmcache settings zones [--country <cc>] [options]`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "country",
						Usage: "two letter country code",
					},
				},
				Action: SettingsZonesCommandAction,
				Meta:   meta,
			}).Build(),
		},
	}
}
