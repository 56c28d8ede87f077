package platform

import (
	"context"

	"github.com/lukman83/trustrank/internal/models"
)

// Source is a marketplace backend the ranking pipeline reads from. All
// methods must be safe for concurrent use.
type Source interface {
	Name() string
	// Search returns the raw search records for keyword, in response order.
	Search(ctx context.Context, keyword string, limit int) ([]models.SearchRecord, error)
	// ItemRatings returns up to limit recent review comments of an item.
	ItemRatings(ctx context.Context, itemID, shopID int64, limit int) ([]models.ReviewComment, error)
	// ShopProfile returns the full seller profile (verification, rating counters).
	ShopProfile(ctx context.Context, shopID int64) (*models.ShopProfile, error)
	// ShopDetail returns the lightweight profile used for reviewers.
	ShopDetail(ctx context.Context, shopID int64) (*models.ShopProfile, error)
}
