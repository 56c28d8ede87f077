package rank

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/lukman83/trustrank/internal/metrics"
	"github.com/lukman83/trustrank/internal/models"
	"github.com/lukman83/trustrank/internal/platform"
)

// ErrRatingsMisaligned means the ratings fan-out produced a result set that
// cannot be paired one-to-one with the candidate items.
var ErrRatingsMisaligned = errors.New("ratings results misaligned with items")

const (
	endpointRatings    = "ratings"
	endpointShop       = "shop"
	endpointShopDetail = "shop_detail"
)

// Fetch outcomes, used as metric labels and log fields.
const (
	outcomeOK         = "ok"
	outcomeTimeout    = "timeout"
	outcomeCanceled   = "canceled"
	outcomeAPIError   = "api_error"
	outcomeDecode     = "decode"
	outcomeTransport  = "transport"
	outcomeUnexpected = "unexpected"
)

type FetcherOptions struct {
	MaxConcurrent  int
	RequestTimeout time.Duration
	RatingsLimit   int
}

// Fetcher issues enrichment requests against a Source. Every request, whatever
// the stage, holds one slot of a shared semaphore while in flight.
type Fetcher struct {
	source        platform.Source
	sem           *semaphore.Weighted
	maxConcurrent int
	timeout       time.Duration
	ratingsLimit  int
	logger        *zap.Logger
	metrics       *metrics.Metrics
	group         *singleflight.Group
}

func NewFetcher(source platform.Source, opts FetcherOptions, logger *zap.Logger, m *metrics.Metrics) *Fetcher {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 8
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.RatingsLimit <= 0 {
		opts.RatingsLimit = 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		source:        source,
		sem:           semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		maxConcurrent: opts.MaxConcurrent,
		timeout:       opts.RequestTimeout,
		ratingsLimit:  opts.RatingsLimit,
		logger:        logger,
		metrics:       m,
		group:         new(singleflight.Group),
	}
}

// withLogger returns a view of f for a single run. It logs to logger and
// shares the semaphore and source, but gets its own singleflight group so
// lookups are only collapsed within the run.
func (f *Fetcher) withLogger(logger *zap.Logger) *Fetcher {
	g := *f
	g.logger = logger
	g.group = new(singleflight.Group)
	return &g
}

type ratingsResult struct {
	index    int
	comments []models.ReviewComment
	err      error
}

// FetchRatings loads the recent reviews of every item concurrently and waits
// for all of them. Items whose fetch failed are marked, not dropped.
func (f *Fetcher) FetchRatings(ctx context.Context, items []models.Item) error {
	results := make(chan ratingsResult, len(items))

	var g errgroup.Group
	for i := range items {
		it := items[i]
		platform.ReportProgress(ctx, fmt.Sprintf("Retrieving info of item %d", i+1))
		g.Go(func() error {
			comments, err := call(ctx, f, endpointRatings, func(ctx context.Context) ([]models.ReviewComment, error) {
				return f.source.ItemRatings(ctx, it.ItemID, it.ShopID, f.ratingsLimit)
			})
			results <- ratingsResult{index: i, comments: comments, err: err}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	collected := make([]ratingsResult, 0, len(items))
	for r := range results {
		collected = append(collected, r)
	}
	return f.applyRatings(items, collected)
}

// applyRatings validates the pairing before touching any item.
func (f *Fetcher) applyRatings(items []models.Item, results []ratingsResult) error {
	if len(results) != len(items) {
		return fmt.Errorf("%w: got %d results for %d items", ErrRatingsMisaligned, len(results), len(items))
	}
	seen := make([]bool, len(items))
	for _, r := range results {
		if r.index < 0 || r.index >= len(items) || seen[r.index] {
			return fmt.Errorf("%w: unexpected result index %d", ErrRatingsMisaligned, r.index)
		}
		seen[r.index] = true
	}

	for _, r := range results {
		it := &items[r.index]
		if r.err != nil {
			it.Ratings = nil
			it.Enrichment.RatingsFailed = true
			f.logger.Warn("ratings unavailable, item marked",
				zap.Int64("itemid", it.ItemID),
				zap.Error(r.err),
			)
			continue
		}
		it.Ratings = r.comments
	}
	return nil
}

// FetchShop returns the seller profile of shopID.
func (f *Fetcher) FetchShop(ctx context.Context, shopID int64) (*models.ShopProfile, error) {
	return f.shared(ctx, endpointShop, shopID, f.source.ShopProfile)
}

// FetchAuthors fetches one profile per distinct reviewer and returns those
// that were obtained, in first-seen order, plus the number requested.
// Individual failures are dropped.
func (f *Fetcher) FetchAuthors(ctx context.Context, comments []models.ReviewComment) ([]models.ShopProfile, int) {
	ids := distinctAuthors(comments)
	if len(ids) == 0 {
		return nil, 0
	}

	fetched := make([]*models.ShopProfile, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			p, err := f.shared(ctx, endpointShopDetail, id, f.source.ShopDetail)
			if err == nil {
				fetched[i] = p
			}
			return nil
		})
	}
	_ = g.Wait()

	profiles := make([]models.ShopProfile, 0, len(ids))
	for _, p := range fetched {
		if p != nil {
			profiles = append(profiles, *p)
		}
	}
	return profiles, len(ids)
}

func distinctAuthors(comments []models.ReviewComment) []int64 {
	seen := make(map[int64]struct{}, len(comments))
	ids := make([]int64, 0, len(comments))
	for _, c := range comments {
		if _, ok := seen[c.AuthorShopID]; ok {
			continue
		}
		seen[c.AuthorShopID] = struct{}{}
		ids = append(ids, c.AuthorShopID)
	}
	return ids
}

// shared collapses concurrent lookups of the same shop on the same endpoint.
// The flight runs on the context of whichever caller started it, so a caller
// that joined a flight canceled by someone else fetches again on its own.
func (f *Fetcher) shared(ctx context.Context, endpoint string, shopID int64,
	fetch func(context.Context, int64) (*models.ShopProfile, error)) (*models.ShopProfile, error) {
	own := func(ctx context.Context) (*models.ShopProfile, error) {
		return call(ctx, f, endpoint, func(ctx context.Context) (*models.ShopProfile, error) {
			return fetch(ctx, shopID)
		})
	}

	key := endpoint + ":" + strconv.FormatInt(shopID, 10)
	v, err, joined := f.group.Do(key, func() (interface{}, error) {
		return own(ctx)
	})
	if err != nil {
		if joined && errors.Is(err, context.Canceled) && ctx.Err() == nil {
			return own(ctx)
		}
		return nil, err
	}
	return v.(*models.ShopProfile), nil
}

// call runs fn while holding a concurrency slot and under the per-request
// timeout, then records and logs the outcome.
func call[T any](ctx context.Context, f *Fetcher, endpoint string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := f.sem.Acquire(ctx, 1); err != nil {
		f.metrics.RecordFetch(endpoint, outcomeCanceled, 0)
		return zero, err
	}
	defer f.sem.Release(1)
	f.metrics.IncInFlight()
	defer f.metrics.DecInFlight()

	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	v, err := fn(reqCtx)
	outcome := classify(err)
	f.metrics.RecordFetch(endpoint, outcome, time.Since(start))

	switch outcome {
	case outcomeOK:
		return v, nil
	case outcomeUnexpected:
		f.logger.Warn("unexpected fetch failure", zap.String("endpoint", endpoint), zap.Error(err))
	default:
		f.logger.Debug("fetch failed", zap.String("endpoint", endpoint), zap.String("outcome", outcome), zap.Error(err))
	}
	return zero, err
}

func classify(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, context.DeadlineExceeded):
		return outcomeTimeout
	case errors.Is(err, context.Canceled):
		return outcomeCanceled
	case errors.Is(err, platform.ErrUpstream):
		return outcomeAPIError
	case errors.Is(err, platform.ErrDecode):
		return outcomeDecode
	case errors.Is(err, platform.ErrTransport):
		return outcomeTransport
	default:
		return outcomeUnexpected
	}
}
