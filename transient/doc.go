// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies transport errors as transient or
// non-transient. The HTTP transport uses it to assign failure codes,
// and retry policies use it to decide whether a failed attempt is
// worth repeating.
package transient
