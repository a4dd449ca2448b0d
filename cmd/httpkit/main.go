// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command httpkit sends HTTP requests with the httpkit client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogama/httpkit/cmd/httpkit/commands"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Version is set at build time.
var Version = "dev"

func main() {
	setupLogging()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := commands.Execute(ctx, Version); err != nil {
		log.Error().Err(err).Msg("command failed")
		cancel()
		os.Exit(1)
	}
}

// setupLogging configures the global logger used before a command has
// loaded its configuration.
func setupLogging() {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}
