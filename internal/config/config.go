// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config loads the client configuration used by the httpkit
// command.
package config

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gogama/httpkit/retry"
	"github.com/gogama/httpkit/timeout"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config is the client configuration read from a YAML file.
type Config struct {
	// MaxRedirects is the maximum number of redirects followed for one
	// request. Zero means the client default and -1 disables redirects.
	MaxRedirects int `yaml:"max_redirects" validate:"gte=-1,lte=100"`

	// ThrowOnHTTPError makes a final status of 400 or above an error.
	ThrowOnHTTPError bool `yaml:"throw_on_http_error"`

	// Timeout is the timeout of each attempt. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`

	// Retry controls retries of failed attempts.
	Retry Retry `yaml:"retry"`

	// Headers are added to every request.
	Headers map[string]string `yaml:"headers" validate:"dive,keys,required,endkeys,required"`

	// LogLevel is a zerolog level name.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
}

// Retry is the retry section of a Config.
type Retry struct {
	// Times is the maximum number of retries. Zero disables retries.
	Times int `yaml:"times" validate:"gte=0"`

	// Statuses lists the status codes which are retried, in addition
	// to transient transport errors.
	Statuses []int `yaml:"statuses" validate:"dive,gte=400,lte=599"`

	// Base is the base wait before the first retry.
	Base time.Duration `yaml:"base" validate:"gte=0"`

	// Max caps the backoff wait. A Retry-After sent by the server is
	// honoured up to retry.MaxRetryAfter instead.
	Max time.Duration `yaml:"max" validate:"gtefield=Base"`
}

// DefaultStatuses are the status codes retried when a Config names
// none.
var DefaultStatuses = []int{429, 502, 503, 504}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Retry: Retry{
			Base: 50 * time.Millisecond,
			Max:  time.Second,
		},
		LogLevel: "info",
	}
}

var validate = validator.New()

// Load reads and validates the configuration file at path. Values
// missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates YAML configuration data.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks c against its field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// TimeoutPolicy returns the attempt timeout policy for c.
func (c *Config) TimeoutPolicy() timeout.Policy {
	if c.Timeout == 0 {
		return timeout.Infinite
	}
	return timeout.Fixed(c.Timeout)
}

// RetryPolicy returns the retry policy for c, or nil if c disables
// retries.
func (c *Config) RetryPolicy() retry.Policy {
	if c.Retry.Times == 0 {
		return nil
	}
	statuses := c.Retry.Statuses
	if len(statuses) == 0 {
		statuses = DefaultStatuses
	}
	decider := retry.Times(c.Retry.Times).
		And(retry.StatusCode(statuses...).Or(retry.TransientErr)).
		And(retry.RetryAfterWithin(retry.MaxRetryAfter))
	backoff := retry.NewFixedWaiter(0)
	if c.Retry.Base > 0 {
		backoff = retry.NewExpWaiter(c.Retry.Base, c.Retry.Max, rand.NewSource(time.Now().UnixNano()))
	}
	return retry.NewPolicy(decider, retry.ServerDelay(backoff, retry.MaxRetryAfter))
}

// Level returns the zerolog level named by LogLevel, defaulting to
// info.
func (c *Config) Level() zerolog.Level {
	if c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
