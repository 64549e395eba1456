// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/output"
)

// filterRegex is the pattern used to parse filter expressions into key, operator, and target components.
// It matches: key + operator + target, where operator can be negated with !
// Operators are one of = ^ ~ < > @ or /, optionally prefixed with '!'.
// This allows forms like '=', '!=', '^', '!^', etc.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Filter represents a single parsed --filter expression including the key,
// operand, optional negation and target value.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// BuildFilters parses a filter expression string into a slice of Filter.
// Malformed expressions are logged and skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	if spec == "" {
		return filters
	}

	// Default delimiter is ",", allow an override.
	delim := ","
	if d, ok := os.LookupEnv("SUITECRM_FILTER_DELIM"); ok && d != "" {
		delim = d
	}

	for _, filterSpec := range strings.Split(spec, delim) {
		parts := filterRegex.FindStringSubmatch(filterSpec)
		if parts == nil || parts[1] == "" {
			log.Error("invalid filter: " + filterSpec)
			continue
		}

		negate := strings.HasPrefix(parts[2], "!")
		if negate {
			parts[2] = strings.TrimPrefix(parts[2], "!")
		}

		filters = append(filters, Filter{
			Key:     parts[1],
			Negate:  negate,
			Operand: parts[2],
			Target:  parts[3],
		})
	}

	return filters
}

// Apply returns the rows of t that match every filter in spec, along with
// the indices of the kept rows. Filter keys name table columns, ignoring
// case. A filter naming an unknown column is logged and ignored.
func Apply(t output.Table, spec string) (output.Table, []int) {
	filters := BuildFilters(spec)

	kept := make([]int, 0, len(t.Rows))
	out := output.Table{Headers: t.Headers}

	columns := make([]int, len(filters))
	for i, f := range filters {
		columns[i] = -1
		for c, h := range t.Headers {
			if strings.EqualFold(h, f.Key) {
				columns[i] = c
				break
			}
		}
		if columns[i] < 0 {
			log.Warnf("filter key not found: %s", f.Key)
		}
	}

	for r, row := range t.Rows {
		if matches(row, filters, columns) {
			kept = append(kept, r)
			out.Rows = append(out.Rows, row)
		}
	}
	return out, kept
}

func matches(row []string, filters []Filter, columns []int) bool {
	for i, f := range filters {
		c := columns[i]
		if c < 0 {
			continue
		}
		if c >= len(row) {
			return false
		}

		value := row[c]
		ok := false
		if num, isNum := toFloat64(value); isNum && isNumericOperand(f.Operand) {
			if _, tgtNum := toFloat64(f.Target); tgtNum {
				ok = checkNumericOperand(num, f)
			} else {
				ok = checkStringOperand(value, f)
			}
		} else {
			ok = checkStringOperand(value, f)
		}
		if !ok {
			return false
		}
	}
	return true
}

// Select narrows v, the structured form of a table that had n rows, to the
// kept rows. Slices with n elements are indexed by kept. Maps keyed by
// string keep the keys found in the first column of filtered. Anything else
// is returned unchanged.
func Select(v any, n int, kept []int, filtered output.Table) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Len() != n {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), 0, len(kept))
		for _, i := range kept {
			out = reflect.Append(out, rv.Index(i))
		}
		return out.Interface()
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		keys := map[string]bool{}
		for _, row := range filtered.Rows {
			if len(row) > 0 {
				keys[row[0]] = true
			}
		}
		out := reflect.MakeMap(rv.Type())
		iter := rv.MapRange()
		for iter.Next() {
			if keys[iter.Key().String()] {
				out.SetMapIndex(iter.Key(), iter.Value())
			}
		}
		return out.Interface()
	default:
		return v
	}
}

func isNumericOperand(op string) bool {
	return op == "=" || op == ">" || op == "<"
}

// checkNumericOperand compares a numeric value against the filter target using
// numeric semantics. Supported operands: =, >, < and the negated form via
// filter.Negate (e.g., != is represented as Negate + "=").
func checkNumericOperand(value float64, filter Filter) bool {
	tgt, err := strconv.ParseFloat(strings.TrimSpace(filter.Target), 64)
	if err != nil {
		log.Error("invalid numeric target: " + filter.Target)
		return false
	}

	switch filter.Operand {
	case "=":
		return (value == tgt) == !filter.Negate
	case ">":
		return (value > tgt) == !filter.Negate
	case "<":
		return (value < tgt) == !filter.Negate
	default:
		log.Error("unsupported numeric operand: " + filter.Operand)
		return false
	}
}

// checkStringOperand evaluates a string comparison style filter against the
// provided value using the operand semantics.
func checkStringOperand(value string, filter Filter) bool {
	switch filter.Operand {
	case "=":
		return value == filter.Target == !filter.Negate
	case "~":
		return strings.EqualFold(value, filter.Target) == !filter.Negate
	case "^":
		return strings.HasPrefix(value, filter.Target) == !filter.Negate
	case ">":
		return value > filter.Target == !filter.Negate
	case "<":
		return value < filter.Target == !filter.Negate
	case "@":
		return strings.Contains(value, filter.Target) == !filter.Negate
	case "/":
		matched, err := regexp.MatchString(filter.Target, value)
		if err != nil {
			log.Error("invalid regex: " + filter.Target)
			return false
		}
		return matched == !filter.Negate
	default:
		log.Error("unsupported filtering operand: " + filter.Operand)
		return false
	}
}

// toFloat64 parses a table cell as a number.
func toFloat64(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}
