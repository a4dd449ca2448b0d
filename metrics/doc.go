// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package metrics exports Prometheus metrics about requests executed by an
httpkit client.

A Collector observes requests purely through hook listeners, so it works
with any client that accepts a hook registry:

	hooks := &hook.Registry{}
	retry.Install(hooks, retry.DefaultPolicy)
	metrics.NewCollector(prometheus.DefaultRegisterer).Install(hooks)
	client := &httpkit.Client{Hooks: hooks}

Retries are counted once they have been sent, not when a listener asks
for them, so the collector may be installed before or after the
listeners that decide on retries. A retry the client declines because
the request context ended is not counted.
*/
package metrics
