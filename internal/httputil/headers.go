package httputil

import (
	"net/http"
	"strings"
)

// UserAgent is the fixed desktop browser identity sent to the marketplace.
const UserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:73.0) Gecko/20100101 Firefox/73.0"

// ShopeeHeaders returns the headers the Shopee XHR endpoints expect. The
// referer must point at the marketplace's own site.
func ShopeeHeaders(siteURL string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", UserAgent)
	h.Set("X-Requested-With", "XMLHttpRequest")
	h.Set("Referer", strings.TrimRight(siteURL, "/"))
	h.Set("Accept", "application/json")
	h.Set("Accept-Language", "en-US,en;q=0.9,vi;q=0.8")
	h.Set("Accept-Encoding", "gzip, br")
	return h
}
