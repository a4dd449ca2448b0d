// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gogama/httpkit/message"
	"github.com/spf13/cobra"
)

type sendOptions struct {
	method      string
	data        string
	contentType string
	include     bool
}

func newSendCommand(global *globalOptions) *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send URL",
		Short: "Send one request and print the response",
		Long: `Send one request synchronously and print the final response body.

The request body is the value of --data, or the contents of a file if
the value starts with '@'. Use --include to print the status line and
headers as well.`,
		Example: `  httpkit send https://example.com
  httpkit send -X PUT -d @doc.json -t application/json https://example.com/doc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.method, "request", "X", "GET", "request method")
	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "request body, or @file to read it from a file")
	cmd.Flags().StringVarP(&opts.contentType, "content-type", "t", "", "request content type")
	cmd.Flags().BoolVarP(&opts.include, "include", "i", false, "print the status line and headers")

	return cmd
}

func runSend(cmd *cobra.Command, global *globalOptions, opts *sendOptions, url string) error {
	var body interface{}
	if strings.HasPrefix(opts.data, "@") {
		f, err := os.Open(opts.data[1:])
		if err != nil {
			return fmt.Errorf("failed to open request body: %w", err)
		}
		defer f.Close()
		body = io.Reader(f)
	} else if opts.data != "" {
		body = opts.data
	}

	req, err := message.NewRequest(strings.ToUpper(opts.method), url, nil, body)
	if err != nil {
		return err
	}
	if opts.contentType != "" {
		req.UpdateHeader("Content-Type", opts.contentType)
	}
	req = req.WithContext(cmd.Context())

	resp, err := global.client.Send(req)
	if resp != nil {
		if printErr := printResponse(cmd.OutOrStdout(), resp, opts.include); printErr != nil {
			return printErr
		}
	}
	return err
}

func printResponse(w io.Writer, resp *message.Response, include bool) error {
	if include {
		_, err := io.WriteString(w, resp.String())
		return err
	}
	body, err := resp.BodyAsString()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, body)
	return err
}
