package rank

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/lukman83/trustrank/internal/metrics"
	"github.com/lukman83/trustrank/internal/models"
	"github.com/lukman83/trustrank/internal/platform"
)

// fakeSource serves canned responses and tracks request concurrency.
type fakeSource struct {
	records    []models.SearchRecord
	searchErr  error
	ratings    map[int64][]models.ReviewComment
	ratingErrs map[int64]error
	shops      map[int64]models.ShopProfile
	shopErrs   map[int64]error
	details    map[int64]models.ShopProfile
	detailErrs map[int64]error
	latency    time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32

	mu          sync.Mutex
	detailCalls map[int64]int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) enter(ctx context.Context) error {
	n := f.inFlight.Add(1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	if f.latency > 0 {
		select {
		case <-time.After(f.latency):
		case <-ctx.Done():
			f.inFlight.Add(-1)
			return fmt.Errorf("%w: %w", platform.ErrTransport, ctx.Err())
		}
	}
	return nil
}

func (f *fakeSource) leave() { f.inFlight.Add(-1) }

func (f *fakeSource) Search(ctx context.Context, keyword string, limit int) ([]models.SearchRecord, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.records, nil
}

func (f *fakeSource) ItemRatings(ctx context.Context, itemID, shopID int64, limit int) ([]models.ReviewComment, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	defer f.leave()
	if err := f.ratingErrs[itemID]; err != nil {
		return nil, err
	}
	return f.ratings[itemID], nil
}

func (f *fakeSource) ShopProfile(ctx context.Context, shopID int64) (*models.ShopProfile, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	defer f.leave()
	if err := f.shopErrs[shopID]; err != nil {
		return nil, err
	}
	p, ok := f.shops[shopID]
	if !ok {
		return nil, &platform.APIError{Endpoint: "shop", Code: 4}
	}
	return &p, nil
}

func (f *fakeSource) ShopDetail(ctx context.Context, shopID int64) (*models.ShopProfile, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	defer f.leave()
	f.mu.Lock()
	if f.detailCalls == nil {
		f.detailCalls = make(map[int64]int)
	}
	f.detailCalls[shopID]++
	f.mu.Unlock()
	if err := f.detailErrs[shopID]; err != nil {
		return nil, err
	}
	p, ok := f.details[shopID]
	if !ok {
		return nil, &platform.APIError{Endpoint: "shop_detail", Code: 4}
	}
	return &p, nil
}

func star(v float64) *models.ItemRating { return &models.ItemRating{RatingStar: &v} }

func counterValue(t *testing.T, m *metrics.Metrics, endpoint, outcome string) float64 {
	t.Helper()
	return testutil.ToFloat64(m.FetchTotal.WithLabelValues(endpoint, outcome))
}
