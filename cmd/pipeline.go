package cmd

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/user/vulnimport/pkg/engine"
	"github.com/user/vulnimport/pkg/importers"
	"github.com/user/vulnimport/pkg/logging"
	"github.com/user/vulnimport/pkg/metrics"
	"github.com/user/vulnimport/pkg/store"
)

// parseFlags are shared by the commands that read input files.
type parseFlags struct {
	format string
	locale string
}

func (f parseFlags) options(m *metrics.Metrics) (importers.Options, error) {
	opts := importers.Options{
		Locale:  appConfig.Locale,
		Metrics: m,
	}
	if f.locale != "" {
		opts.Locale = f.locale
	}
	if appConfig.CategoriesFile != "" {
		table, err := engine.LoadCategoryOverrides(appConfig.CategoriesFile)
		if err != nil {
			return opts, fmt.Errorf("failed to load categories: %w", err)
		}
		opts.Categories = table
	}
	return opts, nil
}

// parseFiles imports every file concurrently and concatenates the batches in argument order.
func parseFiles(ctx context.Context, files []string, format string, opts importers.Options) ([]engine.Vulnerability, error) {
	batches := make([][]engine.Vulnerability, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			name := format
			if name == "" {
				if name, err = importers.Detect(path, data); err != nil {
					return err
				}
			}
			imp, err := importers.New(name)
			if err != nil {
				return err
			}

			batch, err := imp.Import(data, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			logging.Logger.Infow("parsed input", "file", path, "format", name, "records", len(batch))
			batches[i] = batch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []engine.Vulnerability
	for _, b := range batches {
		all = append(all, b...)
	}
	return all, nil
}

// storeFlags override the configured backend for one invocation.
type storeFlags struct {
	typ string
	dsn string
}

func (f storeFlags) open() (store.Store, error) {
	cfg := store.Config{Type: appConfig.Store.Type, DSN: appConfig.Store.DSN}
	if f.typ != "" && f.typ != cfg.Type {
		cfg = store.Config{Type: f.typ}
	}
	if f.dsn != "" {
		cfg.DSN = f.dsn
	}
	return store.New(cfg)
}

func writeMetrics(m *metrics.Metrics, override string) {
	path := appConfig.MetricsTextfile
	if override != "" {
		path = override
	}
	if err := m.WriteTextfile(path); err != nil {
		logging.Logger.Errorw("failed to write metrics", "path", path, "error", err)
	}
}
