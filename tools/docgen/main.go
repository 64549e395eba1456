// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/urfave/cli/v3"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/command"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/config"
)

// Doc generator. Walks the crmcache command tree and writes, for every
// command and subcommand:
//   - docs/man/share/man1/crmcache-<cmd>.1 via md2man
//   - docs/tldr/crmcache-<cmd>.md
//
// Names, usage lines and flags come from the tree. Examples come from the
// first fenced block in docs/commands/<top-level cmd>.md.

const moreInfo = "https://github.com/ThanhNhiet/MobileSuiteCRM-sub001"

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	app, err := command.InitApp(context.Background(), []string{"crmcache"}, config.Env{})
	if err != nil {
		fatalf("%v", err)
	}

	written, err := generate(app, repoRoot, writeOnlyIfChanged)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("%d pages written\n", written)
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

type flagDoc struct {
	Names []string
	Usage string
	Value bool
}

type example struct {
	Desc string
	Cmd  string
}

// page is one documented command, e.g. "crmcache settings set".
type page struct {
	Path     []string
	Usage    string
	Synopsis string
	Flags    []flagDoc
	Examples []example
}

// Slug is the file name stem, e.g. "crmcache-settings-set".
func (p page) Slug() string {
	return strings.Join(p.Path, "-")
}

// Command is the invocation, e.g. "crmcache settings set".
func (p page) Command() string {
	return strings.Join(p.Path, " ")
}

// generate renders a man page and a tldr page for every visible command
// under app and returns how many files changed.
func generate(app *cli.Command, repoRoot string, writeOnlyIfChanged bool) (int, error) {
	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")
	tldrOutDir := filepath.Join(repoRoot, "docs", "tldr")
	for _, d := range []string{manOutDir, tldrOutDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return 0, fmt.Errorf("creating output dir %s: %w", d, err)
		}
	}

	pages := collect(app, []string{app.Name})
	if len(pages) == 0 {
		return 0, fmt.Errorf("no commands under %s", app.Name)
	}

	var written int
	for _, p := range pages {
		exs, err := loadExamples(filepath.Join(repoRoot, "docs", "commands"), p)
		if err != nil {
			return written, err
		}
		p.Examples = exs

		targets := map[string][]byte{
			filepath.Join(manOutDir, p.Slug()+".1"):  md2man.Render(manMarkdown(p)),
			filepath.Join(tldrOutDir, p.Slug()+".md"): []byte(tldrMarkdown(p)),
		}
		for path, b := range targets {
			changed, err := writeIfChanged(path, b, writeOnlyIfChanged)
			if err != nil {
				return written, fmt.Errorf("writing %s: %w", path, err)
			}
			if changed {
				written++
			}
		}
	}
	return written, nil
}

// collect walks the subcommands of parent depth first.
func collect(parent *cli.Command, path []string) []page {
	var pages []page
	for _, c := range parent.Commands {
		if c.Hidden || c.Name == "help" {
			continue
		}
		p := page{
			Path:     append(append([]string{}, path...), c.Name),
			Usage:    c.Usage,
			Synopsis: c.UsageText,
		}
		if p.Synopsis == "" {
			p.Synopsis = p.Command() + " [options]"
		}
		for _, f := range c.Flags {
			p.Flags = append(p.Flags, describeFlag(f))
		}
		pages = append(pages, p)
		pages = append(pages, collect(c, p.Path)...)
	}
	return pages
}

func describeFlag(f cli.Flag) flagDoc {
	d := flagDoc{Names: f.Names()}
	if u, ok := f.(interface{ GetUsage() string }); ok {
		d.Usage = u.GetUsage()
	}
	if v, ok := f.(interface{ TakesValue() bool }); ok {
		d.Value = v.TakesValue()
	}
	return d
}

func (d flagDoc) String() string {
	names := make([]string, 0, len(d.Names))
	for _, n := range d.Names {
		dashes := "--"
		if len(n) == 1 {
			dashes = "-"
		}
		names = append(names, "**"+dashes+n+"**")
	}
	s := strings.Join(names, ", ")
	if d.Value {
		s += " *value*"
	}
	return s
}

// loadExamples returns the examples of the top-level command's doc that
// invoke p's command. A missing doc means no examples.
func loadExamples(dir string, p page) ([]example, error) {
	if len(p.Path) < 2 {
		return nil, nil
	}
	b, err := os.ReadFile(filepath.Join(dir, p.Path[1]+".md"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading examples for %s: %w", p.Command(), err)
	}

	var out []example
	for _, ex := range parseExamples(string(b)) {
		// Leading env assignments such as "SUITECRM_TOKEN=x crmcache login"
		// still belong to the command.
		if strings.Contains(" "+ex.Cmd+" ", " "+p.Command()+" ") {
			out = append(out, ex)
		}
	}
	return out, nil
}

// parseExamples reads the first fenced block of md as "# description"
// lines each followed by a command line.
func parseExamples(md string) []example {
	_, rest, ok := strings.Cut(md, "```")
	if !ok {
		return nil
	}
	block, _, _ := strings.Cut(rest, "```")

	var (
		exs  []example
		desc string
	)
	for _, ln := range strings.Split(block, "\n") {
		ln = strings.TrimSpace(ln)
		switch {
		case ln == "":
		case strings.HasPrefix(ln, "#"):
			desc = strings.TrimSpace(strings.TrimLeft(ln, "#"))
		default:
			if desc == "" {
				desc = "Example"
			}
			exs = append(exs, example{Desc: desc, Cmd: strings.Join(strings.Fields(ln), " ")})
			desc = ""
		}
	}
	return exs
}

func manMarkdown(p page) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%% %s 1\n\n", strings.ToUpper(p.Slug()))
	fmt.Fprintf(&b, "# NAME\n\n%s - %s\n\n", p.Command(), p.Usage)
	fmt.Fprintf(&b, "# SYNOPSIS\n\n`%s`\n\n", p.Synopsis)

	if len(p.Flags) > 0 {
		b.WriteString("# OPTIONS\n\n")
		for _, f := range p.Flags {
			fmt.Fprintf(&b, "%s\n: %s\n\n", f, f.Usage)
		}
	}

	if len(p.Examples) > 0 {
		b.WriteString("# EXAMPLES\n\n")
		for _, ex := range p.Examples {
			fmt.Fprintf(&b, "%s:\n\n    %s\n\n", ex.Desc, ex.Cmd)
		}
	}
	return b.Bytes()
}

func tldrMarkdown(p page) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Slug())
	fmt.Fprintf(&b, "> %s.\n", strings.TrimSuffix(p.Usage, "."))
	fmt.Fprintf(&b, "> More information: %s.\n", moreInfo)

	exs := p.Examples
	if len(exs) == 0 {
		exs = []example{{Desc: "Show help for the command", Cmd: p.Command() + " --help"}}
	}
	for _, ex := range exs {
		fmt.Fprintf(&b, "\n- %s:\n\n`%s`\n", ex.Desc, ex.Cmd)
	}
	return b.String()
}

// writeIfChanged writes b to path and reports whether it did. With
// onlyIfChanged, content equal to the existing file modulo surrounding
// whitespace is left alone.
func writeIfChanged(path string, b []byte, onlyIfChanged bool) (bool, error) {
	if onlyIfChanged {
		if old, err := os.ReadFile(path); err == nil && bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(b)) {
			return false, nil
		}
	}
	return true, os.WriteFile(path, b, 0o644) //nolint:gosec
}
