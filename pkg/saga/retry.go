package saga

import (
	"errors"
	"math"
	"time"

	"github.com/avast/retry-go/v4"
	kerr "github.com/musecrm/museflow/pkg/domain/errors"
)

// RetryPolicy is exponential backoff for a task.
type RetryPolicy struct {
	// delay before the first retry.
	Interval time.Duration

	// multiplier of the delay for each further retry.
	BackoffRate float64

	// how many times a task is retried after the first invocation.
	MaxAttempts uint
}

// DefaultRetryPolicy waits 1s, 2s and 4s between invocations, then gives up.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Interval: time.Second, BackoffRate: 2, MaxAttempts: 3}
}

// Delay returns the wait before the (n+1)-th retry.
func (p RetryPolicy) Delay(n uint) time.Duration {
	return time.Duration(float64(p.Interval) * math.Pow(p.BackoffRate, float64(n)))
}

func (p RetryPolicy) options() []retry.Option {
	return []retry.Option{
		retry.Attempts(p.MaxAttempts + 1),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return p.Delay(n)
		}),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, kerr.ErrPermanent)
		}),
	}
}
