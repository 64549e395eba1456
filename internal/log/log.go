// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
)

// InitLogger sets up Apex with a custom handler and a log level from the
// SUITECRM_LOG env variable.
func InitLogger() {
	level := strings.ToUpper(os.Getenv("SUITECRM_LOG"))
	if level == "" {
		level = "ERROR"
	}
	log.SetHandler(&CustomHandler{})
	log.SetLevelFromString(level)
}

// CustomHandler formats log messages and writes them to W, or stderr when W
// is nil so log lines never mix with command output.
type CustomHandler struct {
	W io.Writer
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	w := h.W
	if w == nil {
		w = os.Stderr
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	level := strings.ToUpper(e.Level.String())

	var fields strings.Builder
	for _, name := range e.Fields.Names() {
		fmt.Fprintf(&fields, " %s=%v", name, e.Fields.Get(name))
	}

	_, err := fmt.Fprintf(w, "%s %.1s %s%s\n", timestamp, level, e.Message, fields.String())
	return err
}

