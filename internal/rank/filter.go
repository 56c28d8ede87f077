package rank

import "github.com/lukman83/trustrank/internal/models"

// MinRatingStar is the lowest item rating kept as a candidate.
const MinRatingStar = 3.5

// FilterCandidates keeps records with a non-null rating_star of at least
// MinRatingStar, in source order.
func FilterCandidates(records []models.SearchRecord) []models.Item {
	items := make([]models.Item, 0, len(records))
	for _, r := range records {
		if r.ItemRating == nil || r.ItemRating.RatingStar == nil {
			continue
		}
		star := *r.ItemRating.RatingStar
		if star < MinRatingStar {
			continue
		}
		items = append(items, models.Item{
			ItemID:         r.ItemID,
			ShopID:         r.ShopID,
			Name:           r.Name,
			Price:          r.Price,
			IsOfficialShop: r.IsOfficialShop,
			ShopeeVerified: r.ShopeeVerified,
			Sold:           r.Sold,
			HistoricalSold: r.HistoricalSold,
			RatingStar:     star,
		})
	}
	return items
}
