package stealth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsChecker caches robots.txt rules per origin. Failed fetches are
// cached for failTTL so an unreachable robots.txt is not retried per request.
type RobotsChecker struct {
	rules    map[string]*robotstxt.RobotsData
	expiry   map[string]time.Time
	failed   map[string]error
	mu       sync.RWMutex
	client   *http.Client
	cacheTTL time.Duration
	failTTL  time.Duration
}

// NewRobotsChecker returns a checker that fetches robots.txt with client.
func NewRobotsChecker(client *http.Client) *RobotsChecker {
	return &RobotsChecker{
		rules:    make(map[string]*robotstxt.RobotsData),
		expiry:   make(map[string]time.Time),
		failed:   make(map[string]error),
		client:   client,
		cacheTTL: time.Hour,
		failTTL:  time.Minute,
	}
}

// IsAllowed reports whether userAgent may fetch u. An unreachable robots.txt,
// or one answered with a 5xx status, returns an error and callers treat it as
// allowed.
func (r *RobotsChecker) IsAllowed(ctx context.Context, userAgent string, u *url.URL) (bool, error) {
	data, err := r.rulesFor(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		return true, err
	}
	return data.FindGroup(userAgent).Test(u.Path), nil
}

// cached reports the unexpired rules or failure for origin; ok is false on a miss.
func (r *RobotsChecker) cached(origin string) (data *robotstxt.RobotsData, ok bool, err error) {
	if time.Now().After(r.expiry[origin]) {
		return nil, false, nil
	}
	if ferr := r.failed[origin]; ferr != nil {
		return nil, true, ferr
	}
	data, ok = r.rules[origin]
	return data, ok, nil
}

func (r *RobotsChecker) rulesFor(ctx context.Context, origin string) (*robotstxt.RobotsData, error) {
	r.mu.RLock()
	data, ok, err := r.cached(origin)
	r.mu.RUnlock()
	if ok {
		return data, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if data, ok, err := r.cached(origin); ok {
		return data, err
	}

	data, err = r.fetch(ctx, origin)
	if err != nil {
		delete(r.rules, origin)
		r.failed[origin] = err
		r.expiry[origin] = time.Now().Add(r.failTTL)
		return nil, err
	}
	delete(r.failed, origin)
	r.rules[origin] = data
	r.expiry[origin] = time.Now().Add(r.cacheTTL)
	return data, nil
}

func (r *RobotsChecker) fetch(ctx context.Context, origin string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	// robotstxt reads 5xx as "disallow all"; an overloaded origin should not
	// block every request, so treat it like an unreachable file.
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("fetch robots.txt: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	return data, nil
}
