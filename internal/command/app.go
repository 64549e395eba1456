// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"sort"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/config"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/meta"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

const defaultTimeout = 30 * time.Second

func InitApp(ctx context.Context, args []string, env config.Env) (*cli.Command, error) {
	m := meta.Meta{
		Args:    args,
		Context: ctx,
		Env:     env,
	}

	// The arg immediately following the binary is the subcommand and also
	// the namespace key used when retrieving config values.
	cfg, _ := config.Load(m.Subcommand())
	m.Config = cfg

	app := &cli.Command{
		Name:    "crmcache",
		Usage:   "SuiteCRM metadata and translation cache",
		Version: Version,
		Metadata: map[string]any{
			"meta": m,
		},
	}

	app.Commands = append(app.Commands,
		LoginCommandBuilder(app, m),
		LogoutCommandBuilder(app, m),
		ModulesCommandBuilder(app, m),
		AccessCommandBuilder(app, m),
		TranslateCommandBuilder(app, m),
		FieldsCommandBuilder(app, m),
		DateCommandBuilder(app, m),
		SettingsCommandBuilder(app, m),
		CacheCommandBuilder(app, m),
		CompletionCommandBuilder(app, m),
	)

	// Make sure flags are sorted for the --help text.
	var sortFlags func(cmds []*cli.Command)
	sortFlags = func(cmds []*cli.Command) {
		for _, cmd := range cmds {
			sort.Slice(cmd.Flags, func(i, j int) bool {
				return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
			})
			sortFlags(cmd.Commands)
		}
	}
	sortFlags(app.Commands)

	return app, nil
}
