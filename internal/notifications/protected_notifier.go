package notifications

import (
	"context"
	"errors"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

type ProtectedNotifierConfig struct {
	Timeout          time.Duration // per publish
	FailureThreshold int           // consecutive failures before opening
	Cooldown         time.Duration // time open before a trial publish
	HalfOpenMaxCalls int           // concurrent trial publishes

	// OnStateChange, when set, is told about every breaker transition.
	OnStateChange func(from, to string)
}

// ProtectedNotifier keeps a broken change stream from slowing down writes: each publish is
// bounded by Timeout, and after FailureThreshold failures in a row the inner notifier is
// skipped with ErrCircuitOpen until Cooldown has passed.
type ProtectedNotifier struct {
	inner   Notifier
	timeout time.Duration

	*breaker
}

func NewProtectedNotifier(inner Notifier, cfg ProtectedNotifierConfig) *ProtectedNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &ProtectedNotifier{
		inner:   inner,
		timeout: cfg.Timeout,
		breaker: &breaker{
			threshold: cfg.FailureThreshold,
			cooldown:  cfg.Cooldown,
			trials:    cfg.HalfOpenMaxCalls,
			onChange:  cfg.OnStateChange,
			now:       time.Now,
		},
	}
}

func (n *ProtectedNotifier) NotifySpotChange(ctx context.Context, input SpotChangeInput) error {
	if !n.allow() {
		return ErrCircuitOpen
	}

	sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	err := n.inner.NotifySpotChange(sendCtx, input)
	n.record(err)
	return err
}
