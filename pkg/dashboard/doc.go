// Package dashboard serves the HTML status page listing EC2 instances.
//
// Routes:
//
//	GET /         one line per instance, "Name (id) [state] <br />"
//	GET /healthz  "ok", without calling AWS
//
// A listing that exhausts its retries answers 503; any other AWS failure
// answers 502. Each request that reaches AWS holds its goroutine for the
// whole retry loop.
package dashboard
