// Package urlcheck probes source URLs for liveness. ArcGIS service
// endpoints are probed through their JSON metadata; everything else gets a
// plain availability check.
package urlcheck

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/gisdx/catalog-core/internal/domain/ports"
	"github.com/gisdx/catalog-core/internal/domain/services"
)

// agsAliveMarkers appear in the JSON metadata of a healthy ArcGIS layer.
var agsAliveMarkers = []string{
	`"currentVersion"`, `"geometryType"`, `"fields"`, `"layers"`, `"name"`,
}

// Checker implements ports.URLChecker over a shared resty client. Results
// are cached per URL so re-probing within one run is free.
type Checker struct {
	client *resty.Client
	cache  map[string]ports.URLStatus
}

// NewChecker creates a Checker with the given timeout and retry budget.
func NewChecker(timeout time.Duration, retries int) *Checker {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("User-Agent", "catalog-core/1.0")

	return &Checker{
		client: client,
		cache:  make(map[string]ports.URLStatus),
	}
}

// Check probes one URL. An empty URL is missing; an unreachable or
// error-returning URL is deprecated.
func (c *Checker) Check(ctx context.Context, url string) ports.URLStatus {
	url = strings.TrimSpace(url)
	if url == "" {
		return ports.URLMissing
	}
	if status, ok := c.cache[url]; ok {
		return status
	}

	var status ports.URLStatus
	if services.FormatFromURL(url) == "AGS" {
		status = c.checkAGS(ctx, url)
	} else {
		status = c.checkPlain(ctx, url)
	}
	c.cache[url] = status
	return status
}

// checkAGS fetches the service's JSON metadata. ArcGIS servers return 200
// with an error payload for dead layers, so the body decides.
func (c *Checker) checkAGS(ctx context.Context, url string) ports.URLStatus {
	probeURL := url
	if !strings.Contains(url, "f=json") {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		probeURL = url + sep + "f=json"
	}

	resp, err := c.client.R().SetContext(ctx).Get(probeURL)
	if err != nil || resp.StatusCode() >= 400 {
		return ports.URLDeprecated
	}

	body := resp.String()
	if strings.Contains(body, `"error"`) {
		return ports.URLDeprecated
	}
	for _, marker := range agsAliveMarkers {
		if strings.Contains(body, marker) {
			return ports.URLOK
		}
	}
	return ports.URLDeprecated
}

// checkPlain checks a direct-download URL. Some servers answer 200 with a
// tiny error page, so near-empty bodies are treated as dead.
func (c *Checker) checkPlain(ctx context.Context, url string) ports.URLStatus {
	resp, err := c.client.R().SetContext(ctx).Head(url)
	if err == nil && resp.StatusCode() < 400 {
		return ports.URLOK
	}

	// Some servers reject HEAD; retry with GET before condemning the URL.
	resp, err = c.client.R().SetContext(ctx).Get(url)
	if err != nil || resp.StatusCode() >= 400 {
		return ports.URLDeprecated
	}
	if len(resp.Body()) > 0 && len(resp.Body()) < 64 {
		return ports.URLDeprecated
	}
	return ports.URLOK
}
