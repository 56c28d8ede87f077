package rank

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lukman83/trustrank/internal/metrics"
	"github.com/lukman83/trustrank/internal/models"
	"github.com/lukman83/trustrank/internal/platform"
)

const endpointSearch = "search"

type Options struct {
	SearchLimit int
	Fetcher     FetcherOptions
	Milestones  Milestones
}

// Pipeline runs search → filter → ratings → shop/author enrichment → scoring → ranking.
type Pipeline struct {
	source        platform.Source
	fetcher       *Fetcher
	scorer        *Scorer
	searchLimit   int
	maxConcurrent int
	logger        *zap.Logger
	metrics       *metrics.Metrics
}

func NewPipeline(source platform.Source, opts Options, logger *zap.Logger, m *metrics.Metrics) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = 30
	}
	if opts.Milestones == (Milestones{}) {
		opts.Milestones = DefaultMilestones()
	}
	fetcher := NewFetcher(source, opts.Fetcher, logger, m)
	return &Pipeline{
		source:        source,
		fetcher:       fetcher,
		scorer:        NewScorer(opts.Milestones),
		searchLimit:   opts.SearchLimit,
		maxConcurrent: fetcher.maxConcurrent,
		logger:        logger,
		metrics:       m,
	}
}

// Run returns the scored candidates for keyword, ranked by final point.
func (p *Pipeline) Run(ctx context.Context, keyword string) ([]models.Item, error) {
	start := time.Now()
	log := p.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("source", p.source.Name()),
		zap.String("keyword", keyword),
	)
	fetcher := p.fetcher.withLogger(log)

	records, err := call(ctx, fetcher, endpointSearch, func(ctx context.Context) ([]models.SearchRecord, error) {
		return p.source.Search(ctx, keyword, p.searchLimit)
	})
	if err != nil {
		p.metrics.RecordRun("search_failed", 0)
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}

	items := FilterCandidates(records)
	p.metrics.RecordFiltered(len(records) - len(items))
	platform.ReportProgress(ctx, fmt.Sprintf("The search result has %d items", len(items)))
	log.Info("search complete", zap.Int("records", len(records)), zap.Int("candidates", len(items)))

	if err := fetcher.FetchRatings(ctx, items); err != nil {
		p.metrics.RecordRun("misaligned", 0)
		return nil, err
	}

	g := new(errgroup.Group)
	g.SetLimit(p.maxConcurrent)
	for i := range items {
		it := &items[i]
		g.Go(func() error {
			platform.ReportProgress(ctx, "Calculating point for "+it.Name)
			p.enrich(ctx, fetcher, it)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		p.metrics.RecordRun("canceled", 0)
		return nil, err
	}

	ranked := Rank(items)
	p.metrics.RecordRun("ok", len(ranked))
	log.Info("ranking complete",
		zap.Int("items", len(ranked)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return ranked, nil
}

// enrich fetches the seller and reviewer profiles of one item concurrently
// and attaches its score. It only writes to it.
func (p *Pipeline) enrich(ctx context.Context, fetcher *Fetcher, it *models.Item) {
	var (
		shop      *models.ShopProfile
		shopErr   error
		reviewers []models.ShopProfile
		requested int
	)

	var g errgroup.Group
	g.Go(func() error {
		shop, shopErr = fetcher.FetchShop(ctx, it.ShopID)
		return nil
	})
	g.Go(func() error {
		reviewers, requested = fetcher.FetchAuthors(ctx, it.Ratings)
		return nil
	})
	_ = g.Wait()

	var shopPoint float64
	if shopErr != nil || shop == nil {
		it.Enrichment.ShopFailed = true
		fetcher.logger.Warn("shop profile unavailable, shop point is 0",
			zap.Int64("itemid", it.ItemID),
			zap.Int64("shopid", it.ShopID),
			zap.Error(shopErr),
		)
	} else {
		shopPoint = p.scorer.ShopPoint(*shop)
	}

	it.Enrichment.ReviewersRequested = requested
	it.Enrichment.ReviewersFetched = len(reviewers)
	it.Score = Breakdown(shopPoint, p.scorer.UserPoint(reviewers))
}
