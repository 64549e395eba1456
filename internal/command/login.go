// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/meta"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/output"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/suitecrm"
)

type loginResult struct {
	Modules    int  `json:"modules" yaml:"modules"`
	Roles      int  `json:"roles" yaml:"roles"`
	FullAccess bool `json:"fullAccess" yaml:"fullAccess"`
}

// LoginCommandAction stores the token and loads the module and role
// registries so later commands start warm.
func LoginCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, client := OpenSession(cmd)
	if client.BaseURL == "" {
		return fmt.Errorf("login: %w", suitecrm.ErrNoBaseURL)
	}

	token := cmd.String("token")
	if token == "" {
		token = client.Token
	}
	if err := s.Login(ctx, token); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	res := loginResult{
		Modules:    len(s.Modules.Filtered()),
		Roles:      len(s.Roles.Roles()),
		FullAccess: s.Roles.FullAccess(),
	}
	t := output.Table{
		Headers: []string{"MODULES", "ROLES", "FULL ACCESS"},
		Rows: [][]string{{
			strconv.Itoa(res.Modules),
			strconv.Itoa(res.Roles),
			strconv.FormatBool(res.FullAccess),
		}},
	}
	return emit(cmd, t, res)
}

// LoginCommandBuilder constructs the cli.Command for "login".
func LoginCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "login",
		Usage:     "store a token and load modules and roles",
		UsageText: `crmcache login --token <token> [options]`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "token",
				Usage: "SuiteCRM bearer token",
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("SUITECRM_TOKEN"),
				),
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
		},
		Action: LoginCommandAction,
		Meta:   meta,
	}).Build()
}

// LogoutCommandAction drops every piece of per-user state.
func LogoutCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, _ := OpenSession(cmd)
	if err := s.Logout(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	res := map[string]string{"status": "logged out"}
	return emit(cmd, output.Table{
		Headers: []string{"STATUS"},
		Rows:    [][]string{{res["status"]}},
	}, res)
}

// LogoutCommandBuilder constructs the cli.Command for "logout".
func LogoutCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "logout",
		Usage:     "clear the token, registries and cache",
		UsageText: `crmcache logout [options]`,
		Action:    LogoutCommandAction,
		Meta:      meta,
	}).Build()
}
