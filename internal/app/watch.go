package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"crypto-dashboard/internal/alerting"
	"crypto-dashboard/internal/report"
	"crypto-dashboard/internal/scheduler"
	"crypto-dashboard/internal/service"
)

// Watch re-runs the analysis of the watched assets on every scheduler slot,
// exporting artefacts and sending a digest when configured.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	assets := opts.Assets
	if len(assets) == 0 {
		assets = a.Config.Watch.Assets
	}
	if len(assets) == 0 {
		return errors.New("no assets to watch")
	}
	months := opts.Months
	if months <= 0 {
		months = a.Config.Watch.Months
	}

	notifier := a.newNotifier()
	if notifier == nil {
		a.Logger.Info().Msg("no digest channel configured; refreshing without notifications")
	}

	tick := func(ctx context.Context, slot time.Time) error {
		return a.refresh(ctx, slot, assets, months, notifier)
	}

	if opts.Once {
		return tick(ctx, time.Now().UTC())
	}

	cfg := a.Config.Watch
	sched, err := scheduler.New(scheduler.Options{
		Interval:     cfg.Interval,
		AlignToStart: cfg.AlignToBucket,
		StartupDelay: cfg.StartupDelay,
		Immediate:    true,
	}, a.Logger)
	if err != nil {
		return err
	}

	a.Logger.Info().Strs("assets", assets).Dur("interval", cfg.Interval).Msg("starting watch loop")
	err = sched.Run(ctx, tick)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("watch loop terminated with error")
		return err
	}

	a.Logger.Info().Msg("watch loop stopped")
	return nil
}

// refresh analyses every asset with a fresh cache so each slot sees new data.
func (a *App) refresh(ctx context.Context, slot time.Time, assets []string, months int, notifier alerting.Notifier) error {
	dash := a.newDashboard()
	digest := alerting.Digest{Slot: slot, Failures: map[string]string{}}

	for _, asset := range assets {
		analysis, err := dash.Analyze(ctx, service.Selection{Asset: asset, Months: months})
		if err != nil {
			a.Logger.Error().Err(err).Str("asset", asset).Time("slot", slot).Msg("refresh failed")
			digest.Failures[asset] = err.Error()
			continue
		}
		digest.Views = append(digest.Views, report.NewView(analysis))

		if a.Config.Watch.Export {
			if _, err := a.writeArtifacts(a.Config.Export.Dir, analysis, true, true); err != nil {
				a.Logger.Error().Err(err).Str("asset", asset).Msg("export during refresh failed")
			}
		}
	}

	if notifier != nil {
		if err := notifier.Notify(ctx, digest); err != nil {
			a.Logger.Error().Err(err).Time("slot", slot).Msg("failed to dispatch digest")
		}
	}

	if len(digest.Views) == 0 {
		return fmt.Errorf("all %d assets failed to refresh", len(assets))
	}
	return nil
}
