package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"crypto-dashboard/internal/report"
	"crypto-dashboard/internal/service"
)

// Export renders analyses as CSV and/or PNG files, one set per asset.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if !opts.CSV && !opts.PNG {
		return errors.New("at least one of --csv or --png must be enabled")
	}

	assets := opts.Assets
	if opts.All {
		assets = a.catalog.Names()
	}
	if len(assets) == 0 {
		return errors.New("no assets selected; pass --asset or --all")
	}

	dir := opts.Dir
	if dir == "" {
		dir = a.Config.Export.Dir
	}
	months := a.resolveMonths(opts.Months)
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	dash := a.newDashboard()

	var (
		mu     sync.Mutex
		failed []error
	)
	// no shared context: one asset failing must not cancel the others
	var g errgroup.Group
	g.SetLimit(workers)
	for _, asset := range assets {
		g.Go(func() error {
			analysis, err := dash.Analyze(ctx, service.Selection{Asset: asset, Months: months})
			if err == nil {
				_, err = a.writeArtifacts(dir, analysis, opts.CSV, opts.PNG)
			}
			if err != nil {
				a.Logger.Error().Err(err).Str("asset", asset).Msg("export failed")
				err = fmt.Errorf("%s: %w", asset, err)
				mu.Lock()
				failed = append(failed, err)
				mu.Unlock()
			}
			return err
		})
	}
	if err := g.Wait(); err == nil {
		a.Logger.Info().Int("assets", len(assets)).Str("dir", dir).Msg("export finished")
		return nil
	}

	a.Logger.Warn().Int("assets", len(assets)).Int("failed", len(failed)).Str("dir", dir).Msg("export finished with failures")
	return errors.Join(failed...)
}

// writeArtifacts writes the selected outputs of one analysis under dir and
// returns the paths written.
func (a *App) writeArtifacts(dir string, analysis *service.Analysis, withCSV, withPNG bool) ([]string, error) {
	opts := a.reportOptions()
	prefix := filepath.Join(dir, fmt.Sprintf("%s-%dm", slug(analysis.Asset), analysis.Months))

	type artifact struct {
		suffix string
		write  func(io.Writer) error
	}
	var artifacts []artifact
	if withCSV {
		artifacts = append(artifacts, artifact{"series.csv", func(w io.Writer) error { return report.WriteCSV(w, analysis) }})
	}
	if withPNG {
		artifacts = append(artifacts, artifact{"channel.png", func(w io.Writer) error { return report.WriteChannelPNG(w, analysis, opts) }})
		if analysis.Statistics != nil {
			artifacts = append(artifacts, artifact{"statistics.png", func(w io.Writer) error { return report.WriteStatisticsPNG(w, analysis, opts) }})
		}
		if len(analysis.Correlations) > 0 {
			artifacts = append(artifacts, artifact{"correlation.png", func(w io.Writer) error { return report.WriteCorrelationPNG(w, analysis, opts) }})
		}
	}

	written := make([]string, 0, len(artifacts))
	for _, art := range artifacts {
		path := prefix + "-" + art.suffix
		if err := writeFile(path, art.write); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	a.Logger.Info().Str("asset", analysis.Asset).Strs("files", written).Msg("artifacts written")
	return written, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := report.CreateFile(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func slug(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}
