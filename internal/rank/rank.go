package rank

import (
	"sort"
	"strconv"

	"github.com/lukman83/trustrank/internal/models"
)

// FinalPoint averages the two scores and rounds to two decimals using the
// correctly rounded decimal representation (half-to-even on exact values).
func FinalPoint(shopPoint, userPoint float64) float64 {
	return round2((shopPoint + userPoint) / 2)
}

func round2(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return r
}

// Breakdown builds the immutable score attached to an item.
func Breakdown(shopPoint, userPoint float64) *models.ScoreBreakdown {
	return &models.ScoreBreakdown{
		ShopPoint:  shopPoint,
		UserPoint:  userPoint,
		FinalPoint: FinalPoint(shopPoint, userPoint),
	}
}

// Rank returns a new slice sorted by final point, highest first. Ties keep
// candidate order. Items without a score sort last.
func Rank(items []models.Item) []models.Item {
	ranked := make([]models.Item, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return finalOf(ranked[i]) > finalOf(ranked[j])
	})
	return ranked
}

func finalOf(it models.Item) float64 {
	if it.Score == nil {
		return -1
	}
	return it.Score.FinalPoint
}
