// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/meta"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/metadata"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/output"
)

// FieldsCommandAction shows a module's field metadata from the cache,
// fetching it on a miss. --refresh refetches and reports what changed.
func FieldsCommandAction(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return errors.New("module name is required")
	}
	module := args[0]

	kind, err := metadata.ParseKind(cmd.String("kind"))
	if err != nil {
		return err
	}

	s, client := OpenSession(cmd)
	lang := cmd.String("language")
	if lang == "" {
		lang = s.Translator.Language()
	}

	if cmd.Bool("refresh") {
		if err := requireToken(client); err != nil {
			return err
		}
		res, err := s.Metadata.Refresh(ctx, kind, module, lang)
		if err != nil {
			return err
		}
		return emit(cmd, refreshTable(res), res)
	}

	fields := s.Metadata.Fields(ctx, kind, module, lang)
	return emit(cmd, output.KeyValueTable("FIELD", "VALUE", fields), fields)
}

func refreshTable(res metadata.RefreshResult) output.Table {
	t := output.Table{Headers: []string{"CHANGES"}}
	switch {
	case !res.Previous:
		t.Rows = [][]string{{"cached (no previous copy)"}}
	case !res.Changed:
		t.Rows = [][]string{{"unchanged"}}
	default:
		for _, line := range strings.Split(strings.TrimRight(res.Diff, "\n"), "\n") {
			t.Rows = append(t.Rows, []string{line})
		}
	}
	return t
}

// FieldsCommandBuilder constructs the cli.Command for "fields".
func FieldsCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "fields",
		Usage:     "show cached field metadata for a module",
		UsageText: `crmcache fields <module> [--kind required|list|edit] [--refresh] [options]`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "kind",
				Aliases: []string{"k"},
				Usage:   "metadata kind (required, list, edit)",
				Value:   string(metadata.KindRequired),
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator, KindValidator)
				},
			},
			&cli.StringFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "edit view language, defaults to the selected language",
			},
			&cli.BoolFlag{
				Name:        "refresh",
				Aliases:     []string{"r"},
				Usage:       "refetch and show the difference from the cached copy",
				HideDefault: true,
			},
		},
		Action: FieldsCommandAction,
		Meta:   meta,
	}).Build()
}
