// Package retry wraps unreliable remote API calls in a bounded exponential
// backoff loop.
//
// Only throttling errors are retried. An error counts as throttling when
// its text contains one of the policy markers ("Throttling" by default).
// Any other error is returned unchanged after the first attempt.
//
// The default policy makes at most 6 attempts and sleeps 2^n + U(0,1)
// seconds after throttled attempt n, with no cap. When every attempt is
// throttled the invoker logs a FAILED record and returns an
// *ExhaustedError, which matches ErrExhausted:
//
//	inv := retry.NewInvoker(retry.DefaultPolicy(), log)
//
//	out, err := retry.Invoke(ctx, inv, "DescribeInstances",
//		func(ctx context.Context) (*ec2.DescribeInstancesOutput, error) {
//			return client.DescribeInstances(ctx, input)
//		})
//	switch {
//	case errors.Is(err, retry.ErrExhausted):
//		// throttled on every attempt
//	case err != nil:
//		// non-retryable failure, returned as-is
//	}
//
// Sleeps block the calling goroutine and ignore context cancellation. An
// HTTP handler that calls Invoke holds its goroutine for the whole loop,
// which can be more than two minutes under sustained throttling.
package retry
