package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"trackfeed/internal/logging"
	"trackfeed/internal/spotify"
)

// Policy wraps upstream invocations with the retry rules the engine needs:
// rate-limit responses sleep exactly the signaled delay (attempts uncapped,
// bounded only by the per-call deadline), transient failures back off
// exponentially up to a fixed attempt count, and permanent failures surface
// immediately. One Policy instance is shared by all workers so its limiter
// and counters pace the whole run.
type Policy struct {
	maxAttempts  int
	baseDelay    time.Duration
	callDeadline time.Duration
	limiter      *rate.Limiter
	counters     *Counters
	logger       *slog.Logger
	sleep        func(ctx context.Context, d time.Duration) error
}

// Options configures a Policy. Zero fields take repository defaults.
type Options struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	CallDeadline   time.Duration
	RequestsPerSec float64
	Burst          int
	Logger         *slog.Logger
}

// NewPolicy builds a Policy with a shared limiter and counter set.
func NewPolicy(opts Options) *Policy {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 2 * time.Second
	}
	if opts.CallDeadline <= 0 {
		opts.CallDeadline = 5 * time.Minute
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 10
	}
	if opts.Burst <= 0 {
		opts.Burst = 5
	}
	return &Policy{
		maxAttempts:  opts.MaxAttempts,
		baseDelay:    opts.BaseDelay,
		callDeadline: opts.CallDeadline,
		limiter:      rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.Burst),
		counters:     NewCounters(),
		logger:       logging.NewComponentLogger(opts.Logger, "retry"),
		sleep:        sleepContext,
	}
}

// Counters exposes the shared per-operation call counts.
func (p *Policy) Counters() *Counters {
	return p.counters
}

// Execute runs one upstream invocation under the policy. The operation name
// keys the call counters and log lines.
func (p *Policy) Execute(ctx context.Context, operation string, call func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, p.callDeadline)
	defer cancel()

	transientAttempts := 0
	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}

		p.counters.Add(operation)
		err := call(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", operation, ctx.Err())
		}

		if delay, ok := spotify.RetryAfter(err); ok {
			if delay <= 0 {
				delay = p.baseDelay
			}
			p.logger.Warn("rate limited, honoring upstream delay",
				logging.String(logging.FieldOperation, operation),
				logging.Duration("retry_after", delay))
			if sleepErr := p.sleep(ctx, delay); sleepErr != nil {
				return fmt.Errorf("%s: %w", operation, sleepErr)
			}
			continue
		}

		if errors.Is(err, spotify.ErrTransient) {
			transientAttempts++
			if transientAttempts >= p.maxAttempts {
				return fmt.Errorf("%s failed after %d attempts: %w", operation, transientAttempts, err)
			}
			delay := backoffDelay(p.baseDelay, transientAttempts)
			p.logger.Warn("transient failure, backing off",
				logging.String(logging.FieldOperation, operation),
				logging.Int("attempt", transientAttempts),
				logging.Duration("delay", delay),
				logging.Error(err))
			if sleepErr := p.sleep(ctx, delay); sleepErr != nil {
				return fmt.Errorf("%s: %w", operation, sleepErr)
			}
			continue
		}

		// Permanent and unclassified failures are not retried.
		return err
	}
}

// backoffDelay doubles the base per attempt and adds up to 10% jitter so
// concurrent workers do not retry in lockstep.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	delay := base << (attempt - 1)
	jitter := time.Duration(rand.Int63n(int64(delay)/10 + 1))
	return delay + jitter
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
