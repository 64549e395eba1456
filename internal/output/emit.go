// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"
	"gopkg.in/yaml.v2"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/config"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Table is the text rendering of a result. Rows must have len(Headers) cells.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Options controls how a result is emitted.
type Options struct {
	Format string
	Color  bool
	Titles bool
}

// Emit writes a result to w. Text output renders t; json and yaml output
// serialize v, which is usually the structured form of the same result.
func Emit(w io.Writer, opts Options, t Table, v any) error {
	switch opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	case FormatText, "":
		TableWriter(w, t, opts)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, opts.Format)
	}
}

// TableWriter renders t in a tabular form honoring color and titles options.
func TableWriter(w io.Writer, t Table, opts Options) {
	if len(t.Rows) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(evenColor))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(oddColor))
	}

	pad, _ := config.GetInt("padding", 1)
	log.Debugf("padding: %v", pad)

	tbl := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(t.Rows...)

	if opts.Titles {
		// https://github.com/charmbracelet/lipgloss/issues/261
		tbl = tbl.Headers(t.Headers...).BorderHeader(false)
	}
	fmt.Fprintln(w, tbl)
}

// getColors returns configured color values for table rendering.
func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(fmt.Sprintf("%s.title", key), "#f6be00")
	even, _ = config.GetString(fmt.Sprintf("%s.even", key), "#ffffff")
	odd, _ = config.GetString(fmt.Sprintf("%s.odd", key), "#00c8f0")
	return
}

// ColorEnabled reports whether f is a terminal that should receive colored
// output. NO_COLOR always wins.
func ColorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// KeyValueTable builds a two column table from m, sorted by key.
func KeyValueTable(keyTitle, valueTitle string, m map[string]any) Table {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := Table{Headers: []string{keyTitle, valueTitle}}
	for _, k := range keys {
		t.Rows = append(t.Rows, []string{k, InterfaceToString(m[k], "-")})
	}
	return t
}

// SortRows orders rows by the given column. Rows too short to have the
// column sort first.
func SortRows(rows [][]string, col int, desc bool) {
	cell := func(i int) string {
		if col < len(rows[i]) {
			return rows[i][col]
		}
		return ""
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return cell(i) > cell(j)
		}
		return cell(i) < cell(j)
	})
}

// Size renders a byte count for humans.
func Size(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// Age renders the distance between t and now for humans.
func Age(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// InterfaceToString renders a decoded JSON value as a table cell. Zero values
// render as emptyValue.
func InterfaceToString(value any, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil || reflect.ValueOf(value).IsZero() {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}
