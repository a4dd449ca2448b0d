// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package commands implements the httpkit command line.
package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gogama/httpkit"
	"github.com/gogama/httpkit/hook"
	"github.com/gogama/httpkit/internal/config"
	"github.com/gogama/httpkit/metrics"
	"github.com/gogama/httpkit/retry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Execute runs the root command.
func Execute(ctx context.Context, version string) error {
	return newRootCommand(version).ExecuteContext(ctx)
}

type globalOptions struct {
	configPath   string
	logLevel     string
	timeout      time.Duration
	maxRedirects int
	throw        bool
	retries      int
	headers      []string
	showMetrics  bool

	cfg      *config.Config
	logger   zerolog.Logger
	client   *httpkit.Client
	registry *prometheus.Registry
}

func newRootCommand(version string) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "httpkit",
		Short: "httpkit - HTTP client with hooks, redirects and retries",
		Long: `httpkit sends HTTP requests through the httpkit client engine.

Requests follow 301, 302, 307 and 308 redirects, and failed attempts
can be retried according to the retry section of the configuration
file or the --retries flag.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			opts.reportMetrics()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file path")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (overrides config)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "per-attempt timeout, 0 for none (overrides config)")
	flags.IntVar(&opts.maxRedirects, "max-redirects", 0, "maximum redirects, -1 to disable (overrides config)")
	flags.BoolVar(&opts.throw, "fail", false, "treat a final status of 400 or above as an error (overrides config)")
	flags.IntVar(&opts.retries, "retries", 0, "maximum retries of failed attempts (overrides config)")
	flags.StringArrayVarP(&opts.headers, "header", "H", nil, "extra request header as 'Name: value'")
	flags.BoolVar(&opts.showMetrics, "metrics", false, "log request metrics when done")

	rootCmd.AddCommand(newSendCommand(opts))
	rootCmd.AddCommand(newFetchCommand(opts))

	return rootCmd
}

// setup loads the configuration, applies flag overrides and builds the
// client shared by the subcommands.
func (o *globalOptions) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if flags.Changed("max-redirects") {
		cfg.MaxRedirects = o.maxRedirects
	}
	if flags.Changed("fail") {
		cfg.ThrowOnHTTPError = o.throw
	}
	if flags.Changed("retries") {
		cfg.Retry.Times = o.retries
	}
	for _, h := range o.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("invalid header %q, expected 'Name: value'", h)
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		cfg.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	o.cfg = cfg
	o.logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
		Level(cfg.Level()).
		With().
		Timestamp().
		Logger()
	o.client = o.newClient()
	return nil
}

func (o *globalOptions) newClient() *httpkit.Client {
	hooks := &hook.Registry{}
	if len(o.cfg.Headers) > 0 {
		headers := o.cfg.Headers
		hooks.On(hook.BeforeRequest, hook.BeforeRequestFunc(func(a *hook.BeforeRequestArgs) {
			for name, value := range headers {
				a.Request.UpdateHeader(name, value)
			}
		}))
	}
	if p := o.cfg.RetryPolicy(); p != nil {
		retry.Install(hooks, p)
	}
	o.registry = prometheus.NewRegistry()
	metrics.NewCollector(o.registry).Install(hooks)

	return &httpkit.Client{
		TimeoutPolicy:    o.cfg.TimeoutPolicy(),
		MaxRedirects:     o.cfg.MaxRedirects,
		ThrowOnHTTPError: o.cfg.ThrowOnHTTPError,
		Hooks:            hooks,
		Logger:           &o.logger,
	}
}

func (o *globalOptions) reportMetrics() {
	if !o.showMetrics || o.registry == nil {
		return
	}
	families, err := o.registry.Gather()
	if err != nil {
		o.logger.Warn().Err(err).Msg("failed to gather metrics")
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			e := o.logger.Info().Str("metric", mf.GetName())
			for _, lp := range m.GetLabel() {
				e = e.Str(lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				e = e.Float64("value", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				e = e.Uint64("count", m.GetHistogram().GetSampleCount()).
					Float64("sum", m.GetHistogram().GetSampleSum())
			}
			e.Msg("metric")
		}
	}
}
