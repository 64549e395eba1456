// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/config"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/filters"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/meta"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/output"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/registry"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/session"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/suitecrm"
)

// ErrNotLoggedIn is returned by commands that need the network when no
// token is stored or supplied.
var ErrNotLoggedIn = errors.New("not logged in; run 'crmcache login'")

// stdout is where command results go. Tests swap it.
var stdout io.Writer = os.Stdout

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr crmcache <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "crmcache", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// CommandBuilder constructs a cli.Command for a subcommand using a consistent
// pattern. The builder wires metadata, adds the tldr flag, applies global
// flags and sets up the shared validator.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Commands  []*cli.Command
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (b *CommandBuilder) Build() *cli.Command {
	action := b.Action
	if action != nil {
		name := b.Name
		inner := action
		action = func(ctx context.Context, cmd *cli.Command) error {
			log.Debugf("Executing action for %s %v", name, cmd.Args().Slice())
			if ShortCircuitTLDR(ctx, cmd, name) {
				return nil
			}
			return inner(ctx, cmd)
		}
	}

	flags := append([]cli.Flag{}, b.Flags...)
	flags = append(flags, newTLDRFlag())
	flags = append(flags, NewGlobalFlags(b.Name)...)

	return &cli.Command{
		Name:      b.Name,
		Usage:     b.Usage,
		UsageText: b.UsageText,
		Metadata: map[string]any{
			"meta": b.Meta,
		},
		Flags:    flags,
		Commands: b.Commands,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: action,
	}
}

// OpenSession builds the SuiteCRM client and a Session over the storage root
// chosen by flags or the environment. The client token is the stored one,
// falling back to SUITECRM_TOKEN.
func OpenSession(cmd *cli.Command) (*session.Session, *suitecrm.Client) {
	m := GetMeta(cmd)

	root := cmd.String("storage")
	if root == "" {
		root = m.Env.StorageRoot
	}
	if root == "" {
		root = config.DefaultStorageRoot()
	}

	url := cmd.String("url")
	if url == "" {
		url = m.Env.BaseURL
	}

	timeout := m.Env.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	client := suitecrm.NewClient(url, "", timeout)
	s := session.New(client, session.Options{
		StorageRoot: root,
		Roles: registry.Options{
			DenyOnRoleLoadFailure: cmd.Bool("deny-on-role-failure"),
		},
		SetToken: func(token string) { client.Token = token },
	})

	if token, ok := s.Token(); ok {
		client.Token = token
	} else {
		client.Token = m.Env.Token
	}
	log.Debugf("session: storage=%s url=%s token=%t", root, client.BaseURL, client.Token != "")

	return s, client
}

// requireToken fails when the client has no credentials to talk to the
// server with.
func requireToken(client *suitecrm.Client) error {
	if client.Token == "" {
		return ErrNotLoggedIn
	}
	return nil
}

// outputOptions reads the shared output flags.
func outputOptions(cmd *cli.Command) output.Options {
	return output.Options{
		Format: cmd.String("output"),
		Color:  cmd.Bool("color") && output.ColorEnabled(os.Stdout),
		Titles: cmd.Bool("titles"),
	}
}

// emit writes a command result in the requested format, narrowed by
// --filter when it is set.
func emit(cmd *cli.Command, t output.Table, v any) error {
	if spec := cmd.String("filter"); spec != "" {
		n := len(t.Rows)
		var kept []int
		t, kept = filters.Apply(t, spec)
		v = filters.Select(v, n, kept, t)
	}
	if err := output.Emit(stdout, outputOptions(cmd), t, v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
