// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config loads the application configuration with koanf.
//
// Sources are layered, later ones winning key by key: built-in
// defaults, an optional YAML file, a dotenv file chosen by environment,
// and finally the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment names with special meaning.
const (
	EnvLocal      = "local"
	EnvProduction = "production"
)

// DefaultFile is the YAML file read when Options.File is empty.
const DefaultFile = "apipoll.yaml"

// envKeys maps recognized environment variables, and dotenv keys, to
// configuration keys. Anything else in the environment is ignored.
var envKeys = map[string]string{
	"APP_ENV":     "app.env",
	"API_BASE":    "api.base",
	"STORAGE_DIR": "storage.dir",
	"LOG_LEVEL":   "log.level",
	"LOG_PRETTY":  "log.pretty",
	"MOCK_ADDR":   "mock.addr",
	"POLL_EVERY":  "schedule.every",
}

// Options control where Load looks for its sources.
type Options struct {
	// File is the YAML configuration file. When empty, DefaultFile in
	// Dir is tried and silently skipped if absent; an explicit File
	// must exist.
	File string
	// Dir holds the dotenv files .env and .env.local. Empty means the
	// working directory.
	Dir string
}

// Load builds and validates the configuration.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := loadYAML(k, opts); err != nil {
		return nil, err
	}

	envName, dotenvPath := selectEnv(k, opts.Dir)
	if err := k.Load(confmap.Provider(map[string]interface{}{"app.env": envName}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to set environment: %w", err)
	}
	if err := loadDotenv(k, dotenvPath); err != nil {
		return nil, err
	}

	if err := k.Load(envprovider.Provider(".", envprovider.Opt{
		TransformFunc: func(key, value string) (string, any) {
			// Exported but empty counts as unset.
			name, ok := envKeys[key]
			if !ok || value == "" {
				return "", nil
			}
			if name == "app.env" {
				value = strings.ToLower(value)
			}
			return name, value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.env": "",

		"api.base":           "http://localhost:8000/",
		"api.my_json_server": "https://my-json-server.typicode.com/southpark9902/dummy-api-server/",

		"storage.dir": "storage",

		"log.level":  "info",
		"log.pretty": false,

		"http.timeout":          "8s",
		"http.connect_timeout":  "2s",
		"http.retries":          2,
		"http.backoff_factor":   "1s",
		"http.verify":           true,
		"http.follow_redirects": false,
		"http.max_redirects":    5,

		"mock.addr": ":8000",

		"schedule.every": "1m",
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

func loadYAML(k *koanf.Koanf, opts Options) error {
	path := opts.File
	explicit := path != ""
	if !explicit {
		path = filepath.Join(opts.Dir, DefaultFile)
	}
	err := k.Load(file.Provider(path), yaml.Parser())
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

// selectEnv decides the environment name and the dotenv file to read.
//
// An APP_ENV in the process environment wins, then app.env from YAML.
// Otherwise the presence of .env.local selects "local", and anything
// else is "production". Only "local" reads .env.local; every other
// environment reads .env.
func selectEnv(k *koanf.Koanf, dir string) (env, dotenvPath string) {
	localPath := filepath.Join(dir, ".env.local")
	envPath := filepath.Join(dir, ".env")

	env = strings.ToLower(os.Getenv("APP_ENV"))
	if env == "" {
		env = strings.ToLower(k.String("app.env"))
	}
	if env != "" {
		if env == EnvLocal && readable(localPath) {
			return env, localPath
		}
		return env, envPath
	}

	if readable(localPath) {
		return EnvLocal, localPath
	}
	return EnvProduction, envPath
}

func loadDotenv(k *koanf.Koanf, path string) error {
	if !readable(path) {
		return nil
	}

	raw := koanf.New(".")
	if err := raw.Load(file.Provider(path), dotenv.Parser()); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	values := make(map[string]interface{})
	for key, name := range envKeys {
		if key == "APP_ENV" || raw.String(key) == "" {
			continue
		}
		values[name] = raw.String(key)
	}
	return k.Load(confmap.Provider(values, "."), nil)
}

func readable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}
