// Package shopee implements platform.Source over Shopee's public XHR API.
package shopee

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/lukman83/trustrank/internal/httputil"
	"github.com/lukman83/trustrank/internal/models"
	"github.com/lukman83/trustrank/internal/platform"
)

const DefaultBaseURL = "https://shopee.vn"

const (
	searchPath     = "/api/v2/search_items/get"
	ratingsPath    = "/api/v2/item/get_ratings"
	shopPath       = "/api/v2/shop/get"
	shopDetailPath = "/api/v4/shop/get_shop_detail"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Options struct {
	BaseURL    string
	MaxRetries int
}

// Client is safe for concurrent use; it only reads its fields after construction.
type Client struct {
	client     *http.Client
	baseURL    string
	maxRetries int
}

func NewClient(client *http.Client, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	return &Client{
		client:     client,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		maxRetries: opts.MaxRetries,
	}
}

func (c *Client) Name() string { return "shopee" }

func (c *Client) Search(ctx context.Context, keyword string, limit int) ([]models.SearchRecord, error) {
	q := url.Values{}
	q.Set("keyword", keyword)
	q.Set("limit", strconv.Itoa(limit))

	var resp searchResponse
	if err := c.get(ctx, searchPath, q, &resp); err != nil {
		return nil, err
	}
	if err := resp.check(searchPath); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) ItemRatings(ctx context.Context, itemID, shopID int64, limit int) ([]models.ReviewComment, error) {
	q := url.Values{}
	q.Set("itemid", strconv.FormatInt(itemID, 10))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("shopid", strconv.FormatInt(shopID, 10))

	var resp ratingsResponse
	if err := c.get(ctx, ratingsPath, q, &resp); err != nil {
		return nil, err
	}
	if err := resp.check(ratingsPath); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: %s: missing data", platform.ErrDecode, ratingsPath)
	}
	return resp.Data.Ratings, nil
}

func (c *Client) ShopProfile(ctx context.Context, shopID int64) (*models.ShopProfile, error) {
	var resp shopResponse
	if err := c.get(ctx, shopPath, shopQuery(shopID), &resp); err != nil {
		return nil, err
	}
	if err := resp.check(shopPath); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: %s: missing data", platform.ErrDecode, shopPath)
	}
	p := resp.Data.profile()
	if p.ShopID == 0 {
		p.ShopID = shopID
	}
	return &p, nil
}

func (c *Client) ShopDetail(ctx context.Context, shopID int64) (*models.ShopProfile, error) {
	var resp shopResponse
	if err := c.get(ctx, shopDetailPath, shopQuery(shopID), &resp); err != nil {
		return nil, err
	}
	if err := resp.check(shopDetailPath); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: %s: missing data", platform.ErrDecode, shopDetailPath)
	}
	p := resp.Data.profile()
	if p.ShopID == 0 {
		p.ShopID = shopID
	}
	return &p, nil
}

func shopQuery(shopID int64) url.Values {
	q := url.Values{}
	q.Set("shopid", strconv.FormatInt(shopID, 10))
	return q
}

// get issues a GET against path and decodes the JSON body into out. Failures
// wrap platform.ErrTransport or platform.ErrDecode.
func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	reqURL := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", platform.ErrTransport, path, err)
	}
	for k, v := range httputil.ShopeeHeaders(c.baseURL) {
		req.Header[k] = v
	}

	resp, err := httputil.DoWithRetry(c.client, req, c.maxRetries)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", platform.ErrTransport, path, err)
	}
	defer resp.Body.Close()

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return fmt.Errorf("%w: %s: read body: %w", platform.ErrTransport, path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: status %d", platform.ErrTransport, path, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %w", platform.ErrDecode, path, err)
	}
	return nil
}
