// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry provides flexible policies for retrying failed request
// attempts, and for how long to wait before retrying.
//
// An httpkit Client never retries on its own. Instead, its error and
// exception hooks carry a retry decision which listeners may set. Use
// Install to add listeners which apply a Policy:
//
//     decider := retry.Times(3).
//                    And(retry.Before(5 * time.Second)).
//                    And(retry.StatusCode(500).Or(retry.TransientErr))
//     waiter := retry.ServerDelay(
//         retry.NewExpWaiter(100*time.Millisecond, 2*time.Second, rand.NewSource(1)),
//         30*time.Second)
//     hooks := &hook.Registry{}
//     retry.Install(hooks, retry.NewPolicy(decider, waiter))
//     client := &httpkit.Client{Hooks: hooks}
//
// If the built-in functionality is insufficient, fully custom retry
// policies can be created via custom implementations of Decider,
// Waiter, or Policy.
package retry
