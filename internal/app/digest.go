package app

import (
	"context"
	"errors"
	"time"
)

// SendDigest analyses the given assets once and delivers the digest
// immediately, bypassing the scheduler. Useful to check notifier wiring.
func (a *App) SendDigest(ctx context.Context, opts DigestOptions) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting is not enabled")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("no digest channel configured")
	}

	assets := opts.Assets
	if len(assets) == 0 {
		assets = a.Config.Watch.Assets
	}
	months := opts.Months
	if months <= 0 {
		months = a.Config.Watch.Months
	}

	return a.refresh(ctx, time.Now().UTC(), assets, months, notifier)
}
