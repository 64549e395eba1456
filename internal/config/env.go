// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env holds the connection and storage settings read from the environment.
// CLI flags layered on top of it win.
type Env struct {
	BaseURL     string        `env:"SUITECRM_URL"`
	Token       string        `env:"SUITECRM_TOKEN"`
	StorageRoot string        `env:"SUITECRM_STORAGE"`
	Timeout     time.Duration `env:"SUITECRM_TIMEOUT" envDefault:"30s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	if e.StorageRoot == "" {
		e.StorageRoot = DefaultStorageRoot()
	}
	return e, nil
}

// LoadDotEnv loads a .env file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
		log.Debugf("loaded env file: %s", p)
	}
	return nil
}

// DefaultStorageRoot is the app storage root used when SUITECRM_STORAGE is
// not set: os.UserCacheDir()/crmcache, or ./.crmcache as a last resort.
func DefaultStorageRoot() string {
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "crmcache")
	}
	return ".crmcache"
}
