package models

// ItemRating is the nested rating block of a search record. Shopee omits it
// or sends null rating_star for unrated listings.
type ItemRating struct {
	RatingStar *float64 `json:"rating_star"`
}

// SearchRecord is one raw entry of the search response. Fields outside this
// struct are dropped during decoding.
type SearchRecord struct {
	ItemID         int64       `json:"itemid"`
	ShopID         int64       `json:"shopid"`
	Name           string      `json:"name"`
	Price          int64       `json:"price"`
	IsOfficialShop bool        `json:"is_official_shop"`
	ShopeeVerified bool        `json:"shopee_verified"`
	Sold           int         `json:"sold"`
	HistoricalSold int         `json:"historical_sold"`
	ItemRating     *ItemRating `json:"item_rating"`
}

type Item struct {
	ItemID         int64   `json:"itemid"`
	ShopID         int64   `json:"shopid"`
	Name           string  `json:"name"`
	Price          int64   `json:"price"`
	IsOfficialShop bool    `json:"is_official_shop"`
	ShopeeVerified bool    `json:"shopee_verified"`
	Sold           int     `json:"sold"`
	HistoricalSold int     `json:"historical_sold"`
	RatingStar     float64 `json:"rating_star"`

	Ratings    []ReviewComment `json:"ratings,omitempty"`
	Enrichment Enrichment      `json:"enrichment"`
	Score      *ScoreBreakdown `json:"score,omitempty"`
}

// Enrichment records which fetches failed for an item.
type Enrichment struct {
	RatingsFailed      bool `json:"ratings_failed,omitempty"`
	ShopFailed         bool `json:"shop_failed,omitempty"`
	ReviewersRequested int  `json:"reviewers_requested"`
	ReviewersFetched   int  `json:"reviewers_fetched"`
}

type ReviewComment struct {
	AuthorShopID int64 `json:"author_shopid"`
	CTime        int64 `json:"ctime"`
}

type ShopProfile struct {
	ShopID         int64   `json:"shopid"`
	CTime          int64   `json:"ctime"`
	EmailVerified  bool    `json:"email_verified"`
	PhoneVerified  bool    `json:"phone_verified"`
	IsOfficialShop bool    `json:"is_official_shop"`
	RatingGood     int     `json:"rating_good"`
	RatingBad      int     `json:"rating_bad"`
	RatingNormal   int     `json:"rating_normal"`
	RatingStar     float64 `json:"rating_star"`
}

// ReviewVolume is the total number of ratings the shop has received.
func (p ShopProfile) ReviewVolume() int {
	return p.RatingGood + p.RatingBad + p.RatingNormal
}

type ScoreBreakdown struct {
	ShopPoint  float64 `json:"shop_point"`
	UserPoint  float64 `json:"user_point"`
	FinalPoint float64 `json:"final_point"`
}
