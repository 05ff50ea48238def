package messaging

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// FanOutOptions bound the dispatch batch. Zero values fall back to safe
// defaults.
type FanOutOptions struct {
	Concurrency      int
	RecipientTimeout time.Duration
}

const (
	defaultConcurrency      = 4
	defaultRecipientTimeout = 8 * time.Second
)

// Result is one recipient's dispatch outcome.
type Result struct {
	MemberID uuid.UUID
	Err      error
}

// FanOut delivers every message best-effort: one recipient's failure or
// timeout never blocks the rest, and the batch always runs to completion.
// The returned slice is ordered like the input; the combined error joins
// every individual failure for logging.
func FanOut(ctx context.Context, dispatcher Dispatcher, messages []Message, opts FanOutOptions) ([]Result, error) {
	if len(messages) == 0 {
		return nil, nil
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	timeout := opts.RecipientTimeout
	if timeout <= 0 {
		timeout = defaultRecipientTimeout
	}

	results := make([]Result, len(messages))

	var mu sync.Mutex
	var combined error

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for i, msg := range messages {
		group.Go(func() error {
			sendCtx, cancel := context.WithTimeout(groupCtx, timeout)
			defer cancel()

			err := dispatcher.Send(sendCtx, msg)
			results[i] = Result{MemberID: msg.MemberID, Err: err}
			if err != nil {
				mu.Lock()
				combined = multierr.Append(combined, err)
				mu.Unlock()
			}
			// never abort the group; failures are per-recipient
			return nil
		})
	}

	_ = group.Wait()
	return results, combined
}
