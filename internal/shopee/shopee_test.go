package shopee

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukman83/trustrank/internal/httputil"
	"github.com/lukman83/trustrank/internal/platform"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), Options{BaseURL: srv.URL})
}

func TestClient_SearchSendsFixedHeaders(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte(`{"items":[
			{"itemid":1,"shopid":10,"name":"kettle","price":15000000,"item_rating":{"rating_star":4.8},"liked_count":99},
			{"itemid":2,"shopid":20,"name":"no rating"},
			{"itemid":3,"shopid":30,"name":"null star","item_rating":{"rating_star":null}}
		]}`))
	})

	records, err := c.Search(context.Background(), "ấm đun", 30)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, searchPath, got.URL.Path)
	assert.Equal(t, "ấm đun", got.URL.Query().Get("keyword"))
	assert.Equal(t, "30", got.URL.Query().Get("limit"))
	assert.Equal(t, httputil.UserAgent, got.Header.Get("User-Agent"))
	assert.Equal(t, "XMLHttpRequest", got.Header.Get("X-Requested-With"))
	assert.NotEmpty(t, got.Header.Get("Referer"))

	require.NotNil(t, records[0].ItemRating)
	require.NotNil(t, records[0].ItemRating.RatingStar)
	assert.Equal(t, 4.8, *records[0].ItemRating.RatingStar)
	assert.Nil(t, records[1].ItemRating)
	require.NotNil(t, records[2].ItemRating)
	assert.Nil(t, records[2].ItemRating.RatingStar)
}

func TestClient_ItemRatings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ratingsPath, r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("itemid"))
		assert.Equal(t, "70", r.URL.Query().Get("shopid"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"data":{"ratings":[{"author_shopid":501,"ctime":1500000000,"comment":"ok"},{"author_shopid":502,"ctime":1600000000}]}}`))
	})

	ratings, err := c.ItemRatings(context.Background(), 7, 70, 20)
	require.NoError(t, err)
	require.Len(t, ratings, 2)
	assert.Equal(t, int64(501), ratings[0].AuthorShopID)
	assert.Equal(t, int64(1600000000), ratings[1].CTime)
}

func TestClient_ShopProfileBrotli(t *testing.T) {
	payload := []byte(`{"data":{"shopid":10,"ctime":1500000000,"account":{"email_verified":true,"phone_verified":false},
		"is_official_shop":true,"rating_good":900,"rating_bad":50,"rating_normal":50,"rating_star":4.6}}`)
	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	_, _ = bw.Write(payload)
	require.NoError(t, bw.Close())

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, shopPath, r.URL.Path)
		w.Header().Set("Content-Encoding", "br")
		w.Write(buf.Bytes())
	})

	p, err := c.ShopProfile(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, p.EmailVerified)
	assert.False(t, p.PhoneVerified)
	assert.True(t, p.IsOfficialShop)
	assert.Equal(t, 1000, p.ReviewVolume())
	assert.Equal(t, 4.6, p.RatingStar)
}

func TestClient_ShopDetailErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"api error code", http.StatusOK, `{"error":4,"error_msg":"shop not found","data":null}`, platform.ErrUpstream},
		{"not json", http.StatusOK, `<html>captcha</html>`, platform.ErrDecode},
		{"missing data", http.StatusOK, `{"error":0}`, platform.ErrDecode},
		{"bad status", http.StatusForbidden, `{}`, platform.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			p, err := c.ShopDetail(context.Background(), 42)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_ShopDetailFillsShopID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, shopDetailPath, r.URL.Path)
		w.Write([]byte(`{"error":0,"data":{"ctime":1590000000}}`))
	})

	p, err := c.ShopDetail(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.ShopID)
	assert.Equal(t, int64(1590000000), p.CTime)
}

func TestClient_TimeoutIsTransportFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.ShopDetail(ctx, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, platform.ErrTransport))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
