// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package httpkit provides an HTTP client with redirect handling,
lifecycle hooks, and both synchronous and asynchronous execution,
built on the request and response model of package message.

Create a Client to begin making requests.

	client := &httpkit.Client{}
	resp, err := client.Get("https://www.example.com")
	...
	req, err := message.NewRequest("PUT", "https://www.example.com/doc",
		map[string][]string{"Content-Type": {"application/json"}}, body)
	resp, err := client.Send(req)

To send many requests concurrently, use SendAsync and drain the
results with Wait, or call Poll from your own loop:

	for _, req := range reqs {
		client.SendAsync(req, func(resp *message.Response) {
			...
		}, func(req *message.Request, err error) {
			...
		})
	}
	client.Wait()

The client follows up to five 301, 302, 307 and 308 redirects for each
request, and never retries on its own. To hook into request execution,
add listeners for the hooks named in package hook:

	client.On(hook.BeforeRequest, hook.BeforeRequestFunc(
		func(a *hook.BeforeRequestArgs) {
			a.Request.UpdateHeader("User-Agent", "my-agent/1.0")
		}))
	client.On(hook.ErrorStatus(503), hook.ErrorFunc(
		func(a *hook.ErrorArgs) {
			a.Retry.Set(a.Attempt < 3)
		}))

Package retry provides ready-made retry listeners, and package metrics
a Prometheus collector which observes requests through hooks:

	hooks := &hook.Registry{}
	retry.Install(hooks, retry.DefaultPolicy)
	metrics.NewCollector(prometheus.DefaultRegisterer).Install(hooks)
	client := &httpkit.Client{Hooks: hooks}

For control over how attempts are sent, set a custom transport. For
example, use the standard net/http transport with a custom http.Client:

	client := &httpkit.Client{
		Transport: &transport.HTTP{
			Doer: &http.Client{
				CheckRedirect: transport.CheckRedirect,
				...
			},
		},
	}

For control over individual attempt timeouts, set a custom timeout
policy using package timeout:

	client := &httpkit.Client{
		TimeoutPolicy: timeout.Fixed(10*time.Second),
	}

Package httpkit provides basic interfaces for each synchronous method
of the client (Sender, Getter, Header, Poster, FormPoster, and
IdleCloser); a combined interface that composes all the basic methods
(Executor); and utility functions for working with a Sender (Inflate,
Get, Head, Post, and PostForm).
*/
package httpkit
