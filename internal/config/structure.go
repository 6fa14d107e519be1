// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import "time"

// Config is the complete application configuration.
type Config struct {
	App      AppConfig      `koanf:"app"`
	API      APIConfig      `koanf:"api"`
	Storage  StorageConfig  `koanf:"storage"`
	Log      LogConfig      `koanf:"log"`
	HTTP     HTTPConfig     `koanf:"http"`
	Mock     MockConfig     `koanf:"mock"`
	Schedule ScheduleConfig `koanf:"schedule"`
}

// AppConfig identifies the deployment environment.
type AppConfig struct {
	// Env is the deployment environment, lower case. "local" relaxes
	// TLS verification.
	Env string `koanf:"env" validate:"required"`
}

// APIConfig holds the base URLs of the polled APIs.
type APIConfig struct {
	// Base is the base URL the poll jobs resolve their paths against.
	Base string `koanf:"base" validate:"required,url"`
	// MyJSONServer is the base URL of the hosted dummy API used by the
	// hierarchical search job.
	MyJSONServer string `koanf:"my_json_server" validate:"required,url"`
}

// StorageConfig locates the directory poll results are written to.
type StorageConfig struct {
	Dir string `koanf:"dir" validate:"required"`
}

// LogConfig sets the zerolog level and whether output is
// human-readable console text instead of JSON lines.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Pretty bool   `koanf:"pretty"`
}

// HTTPConfig holds the retrying client defaults used by the poll jobs.
type HTTPConfig struct {
	Timeout         time.Duration `koanf:"timeout" validate:"gte=0"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout" validate:"gte=0"`
	Retries         int           `koanf:"retries" validate:"gte=0"`
	BackoffFactor   time.Duration `koanf:"backoff_factor" validate:"gte=0"`
	Verify          bool          `koanf:"verify"`
	FollowRedirects bool          `koanf:"follow_redirects"`
	MaxRedirects    int           `koanf:"max_redirects" validate:"gte=0"`
}

// MockConfig holds the listen address of the mock API server.
type MockConfig struct {
	Addr string `koanf:"addr" validate:"required"`
}

// ScheduleConfig sets how often the scheduler runs the poll jobs.
type ScheduleConfig struct {
	Every time.Duration `koanf:"every" validate:"gt=0"`
}
