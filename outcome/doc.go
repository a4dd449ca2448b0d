// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package outcome classifies the raw result of a request attempt as a
// transport failure, an HTTP success, or an HTTP error, building the
// message.Response for the latter two from the raw header block and
// body.
package outcome
