// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/config"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	Env     config.Env
}

// Subcommand returns the subcommand named on the command line, or "" when
// the first argument is a flag.
func (m Meta) Subcommand() string {
	if len(m.Args) > 1 && len(m.Args[1]) > 0 && m.Args[1][0] != '-' {
		return m.Args[1]
	}
	return ""
}
