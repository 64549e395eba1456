// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/locale"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/metadata"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/output"
)

// GlobalFlagsValidator checks the flags shared by every subcommand once all
// sources have been applied.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	if u := c.String("url"); u != "" {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("--url must be an http(s) URL: %s", u)
		}
	}
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	var validOutputFlagValues = []string{output.FormatText, output.FormatJSON, output.FormatYAML}
	if !slices.Contains(validOutputFlagValues, value.(string)) {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}

func KindValidator(value any) error {
	_, err := metadata.ParseKind(value.(string))
	return err
}

// DateFormatValidator accepts an empty value (automatic) or one of the
// supported templates.
func DateFormatValidator(value any) error {
	s := value.(string)
	if s == "" || locale.Supported(s) {
		return nil
	}
	return fmt.Errorf("must be one of %v", locale.Formats())
}

func TimezoneValidator(value any) error {
	s := value.(string)
	if s == "" {
		return nil
	}
	_, err := locale.ParseTimezone(s)
	return err
}

func PositiveValidator(value any) error {
	if value.(int) <= 0 {
		return errors.New("must be greater than zero")
	}
	return nil
}
