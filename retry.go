package googledrive

import (
	"errors"
	"net"
	"time"

	"google.golang.org/api/googleapi"
)

// RetryPolicy controls how transient remote failures are retried.
// MaxRetries is the number of additional attempts after the first one, so a
// remote call is tried at most MaxRetries+1 times. Interval is the fixed
// delay slept between attempts. Retryable decides whether an error is
// transient; when nil, Transient is used.
type RetryPolicy struct {
	MaxRetries int
	Interval   time.Duration
	Retryable  func(error) bool
}

// DefaultRetryPolicy retries transient failures three times, one second apart.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 3,
	Interval:   time.Second,
}

func (p RetryPolicy) retryable(err error) bool {
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return Transient(err)
}

// Transient reports whether err belongs to the retried failure class:
// a Drive API error with status 408, 429 or 5xx, or a network timeout.
func Transient(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code == 408 || gErr.Code == 429 || (gErr.Code >= 500 && gErr.Code <= 599)
	}
	var nErr net.Error
	if errors.As(err, &nErr) && nErr.Timeout() {
		return true
	}
	return false
}

// execute runs fn through the retry policy. Errors propagate unmodified:
// non-transient ones immediately, transient ones once the attempt budget is
// spent.
func (d *Drive) execute(op string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if attempt >= d.retry.MaxRetries || !d.retry.retryable(err) {
			return err
		}
		d.log.Warn().
			Str("op", op).
			Int("attempt", attempt+1).
			Dur("delay", d.retry.Interval).
			Err(err).
			Msg("retrying transient error")
		d.sleep(d.retry.Interval)
	}
}
