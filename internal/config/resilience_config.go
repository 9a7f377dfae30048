package config

import "time"

const (
	breakerMaxFailuresVar = "BREAKER_MAX_FAILURES"
	breakerOpenTimeoutVar = "BREAKER_OPEN_TIMEOUT"
)

type ResilienceConfig interface {
	GetBreakerMaxFailures() uint32
	GetBreakerOpenTimeout() time.Duration
}

type Resilience struct {
	source
}

var _ ResilienceConfig = Resilience{}

// GetBreakerMaxFailures is the number of consecutive upstream failures that opens the breaker.
func (r Resilience) GetBreakerMaxFailures() uint32 {
	failures := r.getInt(breakerMaxFailuresVar, 5)
	if failures < 1 {
		return 1
	}
	return uint32(failures)
}

func (r Resilience) GetBreakerOpenTimeout() time.Duration {
	return r.getDuration(breakerOpenTimeoutVar, 30*time.Second)
}
