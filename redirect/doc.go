// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package redirect implements the redirect rules of an httpkit Client.

A response is followed when its status is 301, 302, 307 or 308, it
carries a Location header, and fewer than the maximum number of
redirects have been followed for the request so far. The Location is
resolved relative to the current request URL, as a browser would:

	r := redirect.Resolver{Max: 3}
	if next, ok := r.Resolve(req, resp, followed); ok {
		// Send next.
	}

Status 303 (See Other) is not followed since following it correctly
requires changing the method.
*/
package redirect
