// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gogama/httpkit/hook"
	"github.com/gogama/httpkit/transport"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes the name of every metric exported by a Collector.
const Namespace = "httpkit"

// A Collector holds the request metrics of one or more clients.
type Collector struct {
	requests        *prometheus.CounterVec
	responses       *prometheus.CounterVec
	httpErrors      *prometheus.CounterVec
	transportErrors *prometheus.CounterVec
	retries         *prometheus.CounterVec
	duration        *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
// If reg is nil, the metrics are not registered anywhere.
//
// NewCollector panics if the metrics are already registered with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "requests_total",
				Help:      "Total number of logical requests started",
			},
			[]string{"method"},
		),
		responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "responses_total",
				Help:      "Total number of final responses received",
			},
			[]string{"status"},
		),
		httpErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_errors_total",
				Help:      "Total number of attempts which got a response with status 400 or above",
			},
			[]string{"status"},
		),
		transportErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "transport_errors_total",
				Help:      "Total number of attempts which failed without a response",
			},
			[]string{"code"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "retries_total",
				Help:      "Total number of retries sent, by the hook whose listeners requested them",
			},
			[]string{"hook"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of logical requests which got a final response, in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			c.requests,
			c.responses,
			c.httpErrors,
			c.transportErrors,
			c.retries,
			c.duration,
		)
	}

	return c
}

type tallyKey struct{}

// A tally follows one logical request. The client only reports a retry
// as done by increasing the Attempt of the next hook emission, so the
// retry is counted there and attributed to the hook that preceded it.
type tally struct {
	start   time.Time
	attempt int
	last    string
}

// Install adds the collector's listeners to reg.
func (c *Collector) Install(reg *hook.Registry) {
	reg.On(hook.BeforeRequest, hook.BeforeRequestFunc(c.beforeRequest))
	reg.On(hook.AfterRequest, hook.AfterRequestFunc(c.afterRequest))
	reg.On(hook.Error, hook.ErrorFunc(c.error))
	reg.On(hook.Exception, hook.ExceptionFunc(c.exception))
}

func (c *Collector) beforeRequest(a *hook.BeforeRequestArgs) {
	c.requests.WithLabelValues(a.Request.Method()).Inc()
	ctx := context.WithValue(a.Request.Context(), tallyKey{}, &tally{start: time.Now()})
	a.Request = a.Request.WithContext(ctx)
}

func (c *Collector) afterRequest(a *hook.AfterRequestArgs) {
	status := strconv.Itoa(a.Response.StatusCode())
	c.responses.WithLabelValues(status).Inc()
	if t := c.count(a.Request.Context(), a.Attempt, ""); t != nil {
		c.duration.WithLabelValues(status).Observe(time.Since(t.start).Seconds())
	}
}

func (c *Collector) error(a *hook.ErrorArgs) {
	c.httpErrors.WithLabelValues(strconv.Itoa(a.Response.StatusCode())).Inc()
	c.count(a.Request.Context(), a.Attempt, hook.Error)
}

func (c *Collector) exception(a *hook.ExceptionArgs) {
	c.transportErrors.WithLabelValues(code(a.Err).String()).Inc()
	c.count(a.Request.Context(), a.Attempt, hook.Exception)
}

// count adds the retries done since the previous emission of the same
// logical request. If kind is not empty it becomes the hook that the
// next retry is attributed to.
func (c *Collector) count(ctx context.Context, attempt int, kind string) *tally {
	t, ok := ctx.Value(tallyKey{}).(*tally)
	if !ok {
		return nil
	}
	if attempt > t.attempt {
		c.retries.WithLabelValues(t.last).Add(float64(attempt - t.attempt))
		t.attempt = attempt
	}
	if kind != "" {
		t.last = kind
	}
	return t
}

func code(err error) transport.Code {
	var f *transport.Failure
	if errors.As(err, &f) {
		return f.Code
	}
	return transport.Classify(err)
}
