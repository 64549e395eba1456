// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/meta"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/output"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/translate"
)

type translation struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// TranslateCommandAction resolves labels through the cached bundles,
// fetching a bundle the first time a scope and language is asked for.
func TranslateCommandAction(ctx context.Context, cmd *cli.Command) error {
	keys := cmd.Args().Slice()
	if len(keys) == 0 {
		return errors.New("at least one key is required")
	}

	s, client := OpenSession(cmd)
	if client.Token == "" {
		log.Warn("not logged in, only cached bundles are available")
	}
	if lang := cmd.String("language"); lang != "" {
		s.Translator.SetLanguage(lang)
	}

	scope := cmd.String("module")
	var def []string
	if cmd.IsSet("default") {
		def = []string{cmd.String("default")}
	}

	res := make([]translation, 0, len(keys))
	t := output.Table{Headers: []string{"KEY", "LABEL"}}
	for _, k := range keys {
		label := s.Translator.Translate(ctx, k, scope, def...)
		res = append(res, translation{Key: k, Label: label})
		t.Rows = append(t.Rows, []string{k, label})
	}
	return emit(cmd, t, res)
}

// TranslateCommandBuilder constructs the cli.Command for "translate".
func TranslateCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "translate",
		Usage:     "translate label keys",
		UsageText: `crmcache translate <key>... [--module <module>] [--default <text>] [options]`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "module",
				Aliases: []string{"m"},
				Usage:   "module scope, or 'system' for app strings",
				Value:   translate.SystemScope,
			},
			&cli.StringFlag{
				Name:    "default",
				Aliases: []string{"d"},
				Usage:   "text returned when no strategy resolves a key",
			},
			&cli.StringFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "language to translate into for this run",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
		},
		Action: TranslateCommandAction,
		Meta:   meta,
	}).Build()
}
