// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/meta"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/output"
)

type cacheEntry struct {
	Key     string    `json:"key" yaml:"key"`
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"modTime" yaml:"modTime"`
}

// CacheListCommandAction lists the cached entries with their size and age.
func CacheListCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, _ := OpenSession(cmd)
	entries, err := s.Store.Entries()
	if err != nil {
		return err
	}

	res := make([]cacheEntry, 0, len(entries))
	t := output.Table{Headers: []string{"KEY", "SIZE", "AGE"}}
	for _, e := range entries {
		res = append(res, cacheEntry{Key: e.Key, Size: e.Size, ModTime: e.ModTime})
		t.Rows = append(t.Rows, []string{e.Key, output.Size(e.Size), output.Age(e.ModTime)})
	}
	return emit(cmd, t, res)
}

// CacheClearCommandAction removes every cached entry. The token and
// preferences are kept.
func CacheClearCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, _ := OpenSession(cmd)
	s.Store.ClearAll()

	res := map[string]string{"status": "cleared", "path": s.Store.Dir()}
	return emit(cmd, output.Table{
		Headers: []string{"STATUS", "PATH"},
		Rows:    [][]string{{res["status"], res["path"]}},
	}, res)
}

// CachePurgeCommandAction removes entries older than --hours.
func CachePurgeCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, _ := OpenSession(cmd)
	removed, err := s.Store.Purge(cmd.Int("hours"))
	if err != nil {
		return fmt.Errorf("purge: %w", err)
	}

	res := map[string]int{"removed": removed}
	return emit(cmd, output.Table{
		Headers: []string{"REMOVED"},
		Rows:    [][]string{{strconv.Itoa(removed)}},
	}, res)
}

// CacheCommandBuilder constructs the "cache" command and its subcommands.
func CacheCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "cache",
		Usage:     "inspect or prune the on-disk cache",
		UsageText: `crmcache cache ls|clear|purge [options]`,
		Commands: []*cli.Command{
			(&CommandBuilder{
				Name:      "ls",
				Usage:     "list cached entries",
				UsageText: `crmcache cache ls [options]`,
				Action:    CacheListCommandAction,
				Meta:      meta,
			}).Build(),
			(&CommandBuilder{
				Name:      "clear",
				Usage:     "remove every cached entry",
				UsageText: `crmcache cache clear [options]`,
				Action:    CacheClearCommandAction,
				Meta:      meta,
			}).Build(),
			(&CommandBuilder{
				Name:      "purge",
				Usage:     "remove entries older than a number of hours",
				UsageText: `crmcache cache purge --hours <n> [options]`,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "hours",
						Usage: "maximum age in hours",
						Value: 24,
						Validator: func(value int) error {
							return FlagValidators(value, PositiveValidator)
						},
					},
				},
				Action: CachePurgeCommandAction,
				Meta:   meta,
			}).Build(),
		},
	}
}
