// Package crawler orchestrates the full pipeline: discover packages on the
// registry, probe each as a live MCP server, analyze, and persist.
package crawler

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/e14z/mcpcrawl/analysis"
	"github.com/e14z/mcpcrawl/log"
	"github.com/e14z/mcpcrawl/probe"
	"github.com/e14z/mcpcrawl/registry"
	"github.com/e14z/mcpcrawl/store"
	"github.com/go-playground/validator/v10"
	"github.com/morikuni/failure/v2"
	"golang.org/x/sync/errgroup"
)

type ErrorCode string

// ErrInvalidOptions represents a crawl configuration that fails validation
const ErrInvalidOptions ErrorCode = "InvalidOptions"

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// Options configure one crawl run
type Options struct {
	// Limit is the maximum number of packages to crawl
	Limit int `validate:"required,min=1,max=500"`

	// Parallelism bounds concurrent probe attempts
	Parallelism int `validate:"required,min=1,max=32"`

	// ResponseWait overrides the per-read response deadline when positive
	ResponseWait time.Duration `validate:"min=0"`

	// GracePeriod overrides the startup grace period when positive
	GracePeriod time.Duration `validate:"min=0"`

	// ForceUpdate bypasses the registry response cache
	ForceUpdate bool
}

// DefaultOptions returns the options used when a caller sets nothing
func DefaultOptions() Options {
	return Options{
		Limit:       20,
		Parallelism: 4,
	}
}

// Crawler wires the pipeline stages together
type Crawler struct {
	Registry *registry.Client
	Store    *store.Store

	// LaunchCommand derives the probe command for a package. Defaults to
	// the package's npx launch command; tests override it.
	LaunchCommand func(registry.Package) string

	opts Options
}

// New creates a crawler over the given store after validating the options
func New(st *store.Store, opts Options) (*Crawler, error) {
	if err := validator.New().Struct(opts); err != nil {
		return nil, failure.New(ErrInvalidOptions,
			failure.Message("Invalid crawl options"),
			failure.Context{"cause": err.Error()},
		)
	}

	reg := registry.NewClient()
	reg.ForceUpdate = opts.ForceUpdate

	return &Crawler{
		Registry: reg,
		Store:    st,
		opts:     opts,
	}, nil
}

// Run executes one crawl: discovery, then a bounded-parallel probe/analyze/
// store pass over every discovered package. Per-package failures are
// recorded in the stats and the stored record, never aborting the run.
func (c *Crawler) Run(ctx context.Context) (store.RunStats, error) {
	startedAt := time.Now()

	packages, err := c.Registry.Discover(ctx, c.opts.Limit)
	if err != nil {
		return store.RunStats{}, err
	}

	var mu sync.Mutex
	stats := store.RunStats{Discovered: len(packages)}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Parallelism)

	for _, pkg := range packages {
		g.Go(func() error {
			pkg := c.enrichText(pkg)
			outcome := c.collector().Collect(ctx, c.launchCommand(pkg))
			signal := probe.ExtractAuthSignal(outcome)
			report := analysis.Analyze(pkg, outcome)
			rec := buildRecord(pkg, outcome, signal, report)

			mu.Lock()
			if outcome.Success {
				stats.Connected++
			} else {
				stats.Failed++
			}
			mu.Unlock()

			if err := c.Store.Upsert(ctx, rec); err != nil {
				log.Warn("Store failed", "slug", rec.Slug, "error", err)
				return nil
			}

			mu.Lock()
			stats.Stored++
			mu.Unlock()

			log.Info("Crawled package",
				"slug", rec.Slug,
				"connected", outcome.Success,
				"tools", len(outcome.Tools),
			)
			return nil
		})
	}

	// Workers never return errors; Wait only observes ctx cancellation
	if err := g.Wait(); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(startedAt)
	if err := c.Store.RecordRun(ctx, startedAt, stats); err != nil {
		log.Warn("Failed to record crawl run", "error", err)
	}
	return stats, nil
}

func (c *Crawler) collector() *probe.Collector {
	collector := probe.NewCollector()
	if c.opts.GracePeriod > 0 {
		collector.Supervisor.GracePeriod = c.opts.GracePeriod
	}
	if c.opts.ResponseWait > 0 {
		collector.ResponseWait = c.opts.ResponseWait
	}
	return collector
}

// enrichText pulls the package homepage into the analysis text corpus when
// the registry served no readme
func (c *Crawler) enrichText(pkg registry.Package) registry.Package {
	if pkg.Readme != "" || pkg.Homepage == "" {
		return pkg
	}
	u, err := url.Parse(pkg.Homepage)
	if err != nil {
		return pkg
	}
	md, err := registry.FetchWebpage(u, c.opts.ForceUpdate)
	if err != nil {
		log.Debug("Homepage fetch failed", "package", pkg.Name, "error", err)
		return pkg
	}
	pkg.Readme = md
	return pkg
}

func (c *Crawler) launchCommand(pkg registry.Package) string {
	if c.LaunchCommand != nil {
		return c.LaunchCommand(pkg)
	}
	return pkg.LaunchCommand()
}
