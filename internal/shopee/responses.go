package shopee

import (
	"github.com/lukman83/trustrank/internal/models"
	"github.com/lukman83/trustrank/internal/platform"
)

// envelope is the error block shared by every endpoint. v2 endpoints usually
// omit it, which decodes as success.
type envelope struct {
	Error    int    `json:"error"`
	ErrorMsg string `json:"error_msg"`
}

func (e envelope) check(endpoint string) error {
	if e.Error != 0 {
		return &platform.APIError{Endpoint: endpoint, Code: e.Error, Message: e.ErrorMsg}
	}
	return nil
}

type searchResponse struct {
	envelope
	Items []models.SearchRecord `json:"items"`
}

type ratingsResponse struct {
	envelope
	Data *struct {
		Ratings []models.ReviewComment `json:"ratings"`
	} `json:"data"`
}

type shopResponse struct {
	envelope
	Data *shopData `json:"data"`
}

type shopData struct {
	ShopID  int64 `json:"shopid"`
	CTime   int64 `json:"ctime"`
	Account struct {
		EmailVerified bool `json:"email_verified"`
		PhoneVerified bool `json:"phone_verified"`
	} `json:"account"`
	IsOfficialShop bool    `json:"is_official_shop"`
	RatingGood     int     `json:"rating_good"`
	RatingBad      int     `json:"rating_bad"`
	RatingNormal   int     `json:"rating_normal"`
	RatingStar     float64 `json:"rating_star"`
}

func (d *shopData) profile() models.ShopProfile {
	return models.ShopProfile{
		ShopID:         d.ShopID,
		CTime:          d.CTime,
		EmailVerified:  d.Account.EmailVerified,
		PhoneVerified:  d.Account.PhoneVerified,
		IsOfficialShop: d.IsOfficialShop,
		RatingGood:     d.RatingGood,
		RatingBad:      d.RatingBad,
		RatingNormal:   d.RatingNormal,
		RatingStar:     d.RatingStar,
	}
}
