// Optimistic-concurrency transaction unit. Every cart mutation is expressed
// as one read-mutate-conditional-write attempt handed to Runner.Run; the
// runner owns the retry policy so usecases never loop themselves.
package txn

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"storefront/internal/domain/common"
)

// DefaultMaxAttempts bounds how often a conflicted attempt is re-run.
const DefaultMaxAttempts = 5

// DefaultBaseBackoff is the first inter-attempt delay; it doubles per retry.
const DefaultBaseBackoff = 10 * time.Millisecond

// Attempt performs one full read-mutate-conditional-write pass. It must
// re-read all state it depends on (cart and product snapshots alike) on
// every invocation and signal a lost conditional write by returning
// common.ErrVersionConflict (possibly wrapped).
type Attempt func(ctx context.Context) error

// Runner executes attempts under the retry policy. A zero-config Runner
// (New()) uses the default bounds.
type Runner struct {
	maxAttempts int
	baseBackoff time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// Option tweaks a Runner.
type Option func(*Runner)

// WithMaxAttempts overrides the attempt bound.
func WithMaxAttempts(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithBaseBackoff overrides the first inter-attempt delay. Zero disables
// sleeping entirely (intra-process contention needs none).
func WithBaseBackoff(d time.Duration) Option {
	return func(r *Runner) {
		if d >= 0 {
			r.baseBackoff = d
		}
	}
}

// New builds a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		maxAttempts: DefaultMaxAttempts,
		baseBackoff: DefaultBaseBackoff,
		sleep:       sleepCtx,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run invokes fn until it succeeds, fails terminally, or the attempt bound
// is exhausted.
//
//   - nil: committed, done.
//   - common.ErrVersionConflict: another writer won the conditional write;
//     re-run fn against fresh state after an exponential backoff.
//   - anything else: terminal. Domain errors (invalid argument, not found,
//     unavailable, permission denied) are business-rule outcomes — retrying
//     them cannot change the verdict, so they surface verbatim at once.
//
// Exhausting the bound surfaces common.ErrConflict: a transient result the
// caller may retry at a higher layer.
func (r *Runner) Run(ctx context.Context, fn Attempt) error {
	if fn == nil {
		return errors.New("txn: nil attempt")
	}

	backoff := r.baseBackoff
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, common.ErrVersionConflict) {
			// Domain verdicts are normal outcomes; anything else is an
			// infrastructure failure worth a trace.
			if !common.IsDomainError(err) {
				log.Printf("[txn] attempt failed: %v", err)
			}
			return err
		}

		if attempt == r.maxAttempts {
			break
		}
		log.Printf("[txn] version conflict, retrying attempt=%d/%d", attempt, r.maxAttempts)
		if backoff > 0 {
			if err := r.sleep(ctx, backoff); err != nil {
				return err
			}
			backoff *= 2
		}
	}

	return fmt.Errorf("%w: gave up after %d attempts", common.ErrConflict, r.maxAttempts)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
