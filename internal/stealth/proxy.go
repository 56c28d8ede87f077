package stealth

import (
	"bufio"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
)

// ProxyProvider abstracts a proxy backend.
type ProxyProvider interface {
	Transport() http.RoundTripper
	Name() string
}

// ProxyRotator cycles through proxy providers round-robin.
type ProxyRotator struct {
	providers []ProxyProvider
	mu        sync.Mutex
	idx       int
}

// NewProxyRotator returns nil when no providers are given.
func NewProxyRotator(providers []ProxyProvider) *ProxyRotator {
	if len(providers) == 0 {
		return nil
	}
	return &ProxyRotator{providers: providers}
}

func (p *ProxyRotator) Next() ProxyProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	provider := p.providers[p.idx%len(p.providers)]
	p.idx++
	return provider
}

// DecodoProvider routes through Decodo residential proxies.
type DecodoProvider struct {
	Username  string
	Password  string
	Country   string // e.g. "vn"
	City      string // optional
	transport http.RoundTripper
	once      sync.Once
}

func (d *DecodoProvider) Name() string { return "decodo" }

func (d *DecodoProvider) Transport() http.RoundTripper {
	d.once.Do(func() {
		d.transport = &http.Transport{
			Proxy:             http.ProxyURL(d.proxyURL()),
			DisableKeepAlives: true, // new exit IP per request
		}
	})
	return d.transport
}

func (d *DecodoProvider) proxyURL() *url.URL {
	user := fmt.Sprintf("user-%s-country-%s", d.Username, d.Country)
	if d.City != "" {
		user += "-city-" + d.City
	}
	return &url.URL{
		Scheme: "http",
		User:   url.UserPassword(user, d.Password),
		Host:   "gate.decodo.com:7000",
	}
}

// URLProxyProvider wraps a single http:// or socks5:// proxy URL.
type URLProxyProvider struct {
	URL       *url.URL
	transport http.RoundTripper
	once      sync.Once
}

func (p *URLProxyProvider) Name() string { return p.URL.Redacted() }

func (p *URLProxyProvider) Transport() http.RoundTripper {
	p.once.Do(func() {
		p.transport = &http.Transport{Proxy: http.ProxyURL(p.URL)}
	})
	return p.transport
}

// LoadProxyFile reads one proxy URL per line. Blank lines and lines starting
// with '#' are skipped.
func LoadProxyFile(path string) ([]ProxyProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open proxy file: %w", err)
	}
	defer f.Close()

	var providers []ProxyProvider
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("proxy file %s line %d: invalid proxy %q", path, line, raw)
		}
		providers = append(providers, &URLProxyProvider{URL: u})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read proxy file: %w", err)
	}
	return providers, nil
}
