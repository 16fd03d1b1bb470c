package rate

import "errors"

var (
	// ErrRateLimited reports that a fixed-window budget is spent.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable reports a Redis failure while enforcing a window.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
