// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/meta"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/output"
)

type formattedDate struct {
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
}

// DateCommandAction formats server timestamps with the persisted locale
// preferences.
func DateCommandAction(ctx context.Context, cmd *cli.Command) error {
	inputs := cmd.Args().Slice()
	if len(inputs) == 0 {
		return errors.New("at least one timestamp is required")
	}

	s, _ := OpenSession(cmd)
	render := s.Locale.LoadFormatDate
	if cmd.Bool("time") {
		render = s.Locale.LoadFormatDateTime
	}

	res := make([]formattedDate, 0, len(inputs))
	t := output.Table{Headers: []string{"INPUT", "OUTPUT"}}
	for _, in := range inputs {
		out, err := render(in)
		if err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
		res = append(res, formattedDate{Input: in, Output: out})
		t.Rows = append(t.Rows, []string{in, out})
	}
	return emit(cmd, t, res)
}

// DateCommandBuilder constructs the cli.Command for "date".
func DateCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "date",
		Usage:     "format timestamps with the locale preferences",
		UsageText: `crmcache date <timestamp>... [--time] [options]`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "time",
				Usage:       "include the time of day",
				HideDefault: true,
			},
		},
		Action: DateCommandAction,
		Meta:   meta,
	}).Build()
}
