// Package ratelimit provides the token bucket that guards the status page.
//
// The bucket holds a fixed number of tokens and refills completely once per
// period. Allow never blocks: a caller that finds the bucket empty is
// expected to reject the request rather than queue it.
//
//	limiter := ratelimit.PerMinute(30)
//
//	if !limiter.Allow() {
//		// reject with 429
//	}
package ratelimit
