// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/meta"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/output"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/registry"
)

type moduleRow struct {
	Name   string `json:"name" yaml:"name"`
	Screen string `json:"screen" yaml:"screen"`
	Access bool   `json:"access" yaml:"access"`
}

// ModulesCommandAction lists the modules the user may open, or every module
// with --all.
func ModulesCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, client := OpenSession(cmd)
	if err := requireToken(client); err != nil {
		return err
	}

	accessible := s.AccessibleModules(ctx)
	listed := accessible
	if cmd.Bool("all") {
		listed = s.Modules.Filtered()
	}

	rows := make([]moduleRow, 0, len(listed))
	for name, m := range listed {
		_, ok := accessible[name]
		rows = append(rows, moduleRow{Name: name, Screen: m.ScreenName, Access: ok})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	t := output.Table{Headers: []string{"MODULE", "SCREEN", "ACCESS"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Name, r.Screen, strconv.FormatBool(r.Access)})
	}
	return emit(cmd, t, rows)
}

// ModulesCommandBuilder constructs the cli.Command for "modules".
func ModulesCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "modules",
		Usage:     "list modules and their screens",
		UsageText: `crmcache modules [--all] [options]`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "all",
				Aliases:     []string{"A"},
				Usage:       "include modules the user cannot access",
				HideDefault: true,
			},
		},
		Action: ModulesCommandAction,
		Meta:   meta,
	}).Build()
}

type accessResult struct {
	Module     string `json:"module" yaml:"module"`
	Permission string `json:"permission" yaml:"permission"`
	Level      *int   `json:"level,omitempty" yaml:"level,omitempty"`
	FullAccess bool   `json:"fullAccess" yaml:"fullAccess"`
	Granted    bool   `json:"granted" yaml:"granted"`
}

// AccessCommandAction answers whether the user holds a permission on a
// module. The permission defaults to "access".
func AccessCommandAction(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return errors.New("module name is required")
	}

	s, client := OpenSession(cmd)
	if err := requireToken(client); err != nil {
		return err
	}
	s.Roles.Load(ctx)

	res := accessResult{
		Module:     args[0],
		Permission: registry.PermAccess,
		FullAccess: s.Roles.FullAccess(),
	}
	if len(args) > 1 {
		res.Permission = args[1]
	}
	if actions, ok := s.Roles.Permissions()[res.Module]; ok {
		if level, ok := actions[res.Permission]; ok {
			l := int(level)
			res.Level = &l
		}
	}
	res.Granted = s.Roles.HasModulePermission(res.Module, res.Permission)

	level := "-"
	if res.Level != nil {
		level = strconv.Itoa(*res.Level)
	}
	t := output.Table{
		Headers: []string{"MODULE", "PERMISSION", "LEVEL", "GRANTED"},
		Rows:    [][]string{{res.Module, res.Permission, level, strconv.FormatBool(res.Granted)}},
	}
	return emit(cmd, t, res)
}

// AccessCommandBuilder constructs the cli.Command for "access".
func AccessCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "access",
		Usage:     "check a module permission for the current user",
		UsageText: `crmcache access <module> [permission] [options]`,
		Action:    AccessCommandAction,
		Meta:      meta,
	}).Build()
}
