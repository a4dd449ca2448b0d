// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package outcome

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gogama/httpkit/message"
	"github.com/gogama/httpkit/transport"
)

// A Kind is the classification of the result of one attempt.
type Kind int

const (
	// TransportFailure means no usable HTTP response was received.
	TransportFailure Kind = iota
	// HTTPSuccess means a response with a status code below 400 was
	// received.
	HTTPSuccess
	// HTTPError means a response with a status code of 400 or above
	// was received.
	HTTPError
)

func (k Kind) String() string {
	switch k {
	case TransportFailure:
		return "transport_failure"
	case HTTPSuccess:
		return "http_success"
	case HTTPError:
		return "http_error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// An Outcome is a classified transport result.
//
// If Kind is TransportFailure, Failure is non-nil and Response is nil.
// Otherwise Response is non-nil and Failure is nil.
type Outcome struct {
	Kind     Kind
	Response *message.Response
	Failure  *transport.Failure
}

// Classify turns the raw result of an attempt into an Outcome. An
// empty body becomes an absent body. A status code the message model
// rejects is reported as a failure with code CodeBadResponse.
func Classify(res transport.Result) Outcome {
	if res.Failure != nil {
		return Outcome{Kind: TransportFailure, Failure: res.Failure}
	}

	resp, err := message.NewResponse(res.StatusCode)
	if err != nil {
		return Outcome{
			Kind: TransportFailure,
			Failure: &transport.Failure{
				Code:    transport.CodeBadResponse,
				Message: err.Error(),
				Err:     err,
			},
		}
	}

	block := ParseHeaderBlock(res.Header)
	if block.Version != "" {
		resp.SetHTTPVersion(block.Version)
	}
	if block.StatusText != "" && block.StatusCode == res.StatusCode {
		resp.SetStatusText(block.StatusText)
	}
	for _, f := range block.Fields {
		resp.AddHeader(f.Name, f.Value)
	}
	if len(res.Body) > 0 {
		_ = resp.SetBody(res.Body)
	}

	k := HTTPSuccess
	if res.StatusCode >= 400 {
		k = HTTPError
	}
	return Outcome{Kind: k, Response: resp}
}

// A Block is the parsed final section of a raw response header block.
type Block struct {
	// Version is the HTTP version from the status line, for example
	// "1.1", or "" if there was no status line.
	Version string
	// StatusCode is the status code from the status line, or zero.
	StatusCode int
	// StatusText is the reason phrase from the status line, or "".
	StatusText string
	// Fields holds the header fields in the order received.
	Fields []Field
}

// A Field is one header line.
type Field struct {
	Name  string
	Value string
}

var (
	sectionSep = regexp.MustCompile(`\r?\n\r?\n`)
	lineSep    = regexp.MustCompile(`\r?\n`)
	statusLine = regexp.MustCompile(`^HTTP/(\d+(?:\.\d+)?)\s+(\d{3})(?:\s+(.*))?$`)
)

// ParseHeaderBlock parses a raw header block, as found in the Header
// field of a transport.Result.
//
// The block is trimmed and split into sections on blank lines. Only
// the last section is used, since earlier sections belong to interim
// responses. Each line is split on its first colon into a trimmed name
// and value; lines without a colon are ignored, except that a leading
// status line supplies the version and status of the response.
func ParseHeaderBlock(raw string) Block {
	var b Block
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return b
	}

	sections := sectionSep.Split(raw, -1)
	last := sections[len(sections)-1]
	for i, line := range lineSep.Split(last, -1) {
		if i == 0 {
			if m := statusLine.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
				b.Version = m[1]
				b.StatusCode, _ = strconv.Atoi(m[2])
				b.StatusText = strings.TrimSpace(m[3])
				continue
			}
		}
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		name := strings.TrimSpace(line[:colon])
		if name == "" {
			continue
		}
		b.Fields = append(b.Fields, Field{
			Name:  name,
			Value: strings.TrimSpace(line[colon+1:]),
		})
	}

	return b
}
