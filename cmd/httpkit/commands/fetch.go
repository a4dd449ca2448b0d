// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"

	"github.com/gogama/httpkit/message"
	"github.com/spf13/cobra"
)

func newFetchCommand(global *globalOptions) *cobra.Command {
	var head bool

	cmd := &cobra.Command{
		Use:   "fetch URL...",
		Short: "Fetch many URLs concurrently",
		Long: `Fetch sends one request per URL asynchronously, waits for all of
them, and prints one line per URL with its final status or error.

Any final status of 400 or above counts as a failure.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := "GET"
			if head {
				method = "HEAD"
			}
			return runFetch(cmd, global, method, args)
		},
	}

	cmd.Flags().BoolVar(&head, "head", false, "send HEAD instead of GET")

	return cmd
}

func runFetch(cmd *cobra.Command, global *globalOptions, method string, urls []string) error {
	out := cmd.OutOrStdout()
	client := global.client
	failed := 0

	for _, url := range urls {
		url := url
		req, err := message.NewRequest(method, url, nil, nil)
		if err != nil {
			return err
		}
		client.SendAsync(req.WithContext(cmd.Context()), func(resp *message.Response) {
			fmt.Fprintf(out, "%d %s %d bytes\n", resp.StatusCode(), url, bodyLen(resp))
		}, func(_ *message.Request, err error) {
			failed++
			fmt.Fprintf(out, "error %s: %v\n", url, err)
		})
	}
	client.Wait()

	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(urls))
	}
	return nil
}

func bodyLen(resp *message.Response) int {
	s, err := resp.BodyAsString()
	if err != nil {
		return 0
	}
	return len(s)
}
