// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	var flaky int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/echo":
			b, _ := io.ReadAll(r.Body)
			w.Header().Set("X-Method", r.Method)
			w.Header().Set("X-Agent", r.Header.Get("X-Agent"))
			w.Header().Set("X-Content-Type", r.Header.Get("Content-Type"))
			_, _ = w.Write(b)
		case "/moved":
			http.Redirect(w, r, "/echo", http.StatusFound)
		case "/flaky":
			if atomic.AddInt32(&flaky, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte("recovered"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func run(t *testing.T, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand("test")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestSend(t *testing.T) {
	server := newTestServer(t)

	t.Run("body", func(t *testing.T) {
		out, _, err := run(t, "send", "-X", "post", "-d", "hello", server.URL+"/echo")
		require.NoError(t, err)
		assert.Equal(t, "hello", out)
	})
	t.Run("include", func(t *testing.T) {
		out, _, err := run(t, "send", "-i", "-H", "X-Agent: cli-test", server.URL+"/echo")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n"), out)
		assert.Contains(t, out, "X-Method: GET\r\n")
		assert.Contains(t, out, "X-Agent: cli-test\r\n")
	})
	t.Run("file body", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "body.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0o600))
		out, _, err := run(t, "send", "-i", "-X", "PUT", "-t", "application/json", "-d", "@"+path, server.URL+"/echo")
		require.NoError(t, err)
		assert.Contains(t, out, "X-Content-Type: application/json\r\n")
		assert.True(t, strings.HasSuffix(out, `{"a":1}`), out)
	})
	t.Run("redirect", func(t *testing.T) {
		out, _, err := run(t, "send", "-d", "moved", "-X", "POST", server.URL+"/moved")
		require.NoError(t, err)
		assert.Equal(t, "moved", out)
	})
	t.Run("redirects disabled", func(t *testing.T) {
		out, _, err := run(t, "send", "-i", "--max-redirects", "-1", server.URL+"/moved")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "HTTP/1.1 302 Found\r\n"), out)
	})
	t.Run("retries", func(t *testing.T) {
		out, _, err := run(t, "send", "--retries", "3", server.URL+"/flaky")
		require.NoError(t, err)
		assert.Equal(t, "recovered", out)
	})
	t.Run("fail", func(t *testing.T) {
		_, _, err := run(t, "send", "--fail", server.URL+"/nowhere")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})
	t.Run("bad header", func(t *testing.T) {
		_, _, err := run(t, "send", "-H", "no-colon", server.URL+"/echo")
		assert.EqualError(t, err, `invalid header "no-colon", expected 'Name: value'`)
	})
	t.Run("config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "httpkit.yaml")
		require.NoError(t, os.WriteFile(path, []byte("headers:\n  X-Agent: from-config\nlog_level: debug\n"), 0o600))
		out, logs, err := run(t, "send", "-i", "-c", path, server.URL+"/echo")
		require.NoError(t, err)
		assert.Contains(t, out, "X-Agent: from-config\r\n")
		assert.Contains(t, logs, "sending attempt")
	})
	t.Run("bad config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "httpkit.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_redirects: -5\n"), 0o600))
		_, _, err := run(t, "send", "-c", path, server.URL+"/echo")
		assert.ErrorContains(t, err, "invalid config")
	})
	t.Run("metrics", func(t *testing.T) {
		_, logs, err := run(t, "send", "--metrics", server.URL+"/echo")
		require.NoError(t, err)
		assert.Contains(t, logs, "httpkit_requests_total")
	})
}

func TestFetch(t *testing.T) {
	server := newTestServer(t)

	t.Run("all ok", func(t *testing.T) {
		out, _, err := run(t, "fetch", server.URL+"/echo", server.URL+"/moved")
		require.NoError(t, err)
		assert.Contains(t, out, "200 "+server.URL+"/echo 0 bytes\n")
		assert.Contains(t, out, "200 "+server.URL+"/moved 0 bytes\n")
	})
	t.Run("some failed", func(t *testing.T) {
		out, _, err := run(t, "fetch", "--head", server.URL+"/echo", server.URL+"/nowhere", "http://127.0.0.1:1/")
		assert.EqualError(t, err, "2 of 3 requests failed")
		assert.Contains(t, out, "200 "+server.URL+"/echo 0 bytes\n")
		assert.Contains(t, out, "error "+server.URL+"/nowhere: ")
		assert.Contains(t, out, "error http://127.0.0.1:1/: ")
	})
	t.Run("no args", func(t *testing.T) {
		_, _, err := run(t, "fetch")
		assert.Error(t, err)
	})
}
