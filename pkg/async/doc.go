// Package async runs bounded batches of background work with per-item
// timeouts and panic recovery.
//
//	errs := async.Batch(ctx, recipients, 4, "review digest", 30*time.Second,
//		func(ctx context.Context, to string) error {
//			return mailer.Send(ctx, digestFor(to))
//		})
//
// A panicking item is reported as an error for that item; the remaining
// items still run.
package async
