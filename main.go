// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/apex/log"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/command"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/config"
	mylog "github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/log"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	// .env must be loaded before the logger reads SUITECRM_LOG.
	dotEnvErr := config.LoadDotEnv()
	mylog.InitLogger()
	if dotEnvErr != nil {
		log.WithError(dotEnvErr).Warn("ignoring .env")
	}

	args := os.Args
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	}

	env, err := config.ParseEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	app, err := command.InitApp(ctx, args, env)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}
