// Package retry provides the waiting machinery for asynchronous ksqlDB
// commands: an exponential backoff strategy with jitter, and a Poller that
// queries a command's status until it leaves the pending set.
//
// The poller always waits between status queries and enforces a wall-clock
// deadline; a command stuck EXECUTING cannot stall a build indefinitely.
//
// # Example Usage
//
//	strategy := retry.NewExponentialBackoff(-1)
//	poller := retry.NewPoller(client, retry.WithStrategy(strategy))
//
//	status, err := poller.Await(ctx, commandID)
//	if errors.Is(err, ksqlpipe.ErrPollTimeout) {
//	    // command never left the pending set
//	}
package retry
