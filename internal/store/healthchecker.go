package store

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/PIS-2020-2021/PIS/internal/model"
)

// HealthChecker probes a Store with a bounded timeout.
type HealthChecker struct {
	store        Store
	log          zerolog.Logger
	probeTimeout time.Duration
}

// NewHealthChecker returns a checker; a non-positive timeout means 2s.
func NewHealthChecker(st Store, log zerolog.Logger, probeTimeout time.Duration) *HealthChecker {
	if probeTimeout <= 0 {
		probeTimeout = 2 * time.Second
	}
	return &HealthChecker{store: st, log: log, probeTimeout: probeTimeout}
}

// Check pings the backend. Stores without HealthPing are probed with a user
// lookup, where not-found counts as healthy.
func (hc *HealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, hc.probeTimeout)
	defer cancel()

	var err error
	if p, ok := hc.store.(HealthPinger); ok {
		err = p.HealthPing(ctx)
	} else if _, err = hc.store.Users().Get(ctx, "__health_check__"); errors.Is(err, model.ErrNotFound) {
		err = nil
	}
	if err != nil {
		hc.log.Error().Stack().Str("checker", "store").Err(err).Msg("store health check failed")
	}
	return err
}
