// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/config"
)

func init() {
	cfg, _ = config.Load("")
}

var cfg config.Type

// newTLDRFlag returns the --tldr flag. Flags carry parse state, so every
// command gets its own.
func newTLDRFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
}

// NewGlobalFlags returns the flags every subcommand carries. params[0] is the
// subcommand name, used as the config file namespace.
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	ns := ""
	if len(params) > 0 {
		ns = params[0]
	}

	flags = []cli.Flag{
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"color", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("color", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"F"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml)",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"output", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("output", altsrc.StringSourcer(cfg.Source)),
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, OutputValidator)
			},
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"titles", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("titles", altsrc.StringSourcer(cfg.Source)),
			),
			Value: true,
		},
		NewURLFlag(ns, cfg.Source),
		NewStorageFlag(ns, cfg.Source),
		NewDenyFlag(ns, cfg.Source),
	}

	return
}

// NewURLFlag constructs the "url" flag, optionally namespaced to a command
// and config file. params[1] is the config file.
func NewURLFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:    "url",
		Aliases: []string{"u"},
		Usage:   "SuiteCRM base URL",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("SUITECRM_URL"),
		),
		Validator: func(value string) error {
			return FlagValidators(value, JammedFlagValidator)
		},
	}

	if len(params) == 2 && params[1] != "" {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewStorageFlag constructs the "storage" flag. An empty value means the
// default storage root.
func NewStorageFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "storage",
		Usage: "app storage root holding settings and the cache",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("SUITECRM_STORAGE"),
		),
	}

	if len(params) == 2 && params[1] != "" {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewDenyFlag constructs the flag that turns role load failures into a
// deny-all instead of full access.
func NewDenyFlag(params ...string) *cli.BoolFlag {
	flag := &cli.BoolFlag{
		Name:        "deny-on-role-failure",
		Usage:       "deny access to every module when roles cannot be loaded",
		HideDefault: true,
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("SUITECRM_DENY_ON_ROLE_FAILURE"),
		),
	}

	if len(params) == 2 && params[1] != "" {
		flag.Sources.Chain = append(flag.Sources.Chain,
			yaml.YAML(params[0]+"."+flag.Name, altsrc.StringSourcer(params[1])),
			yaml.YAML(flag.Name, altsrc.StringSourcer(params[1])),
		)
	}

	return flag
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// pathHas reports whether target is on the PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
