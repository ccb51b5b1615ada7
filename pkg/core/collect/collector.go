// Package collect gathers public company data (financials, profile, news,
// stock performance) used by the data-collection stage. Lookups degrade
// gracefully: a company with no resolvable ticker still yields a
// CompanyInfo, with error-tagged sub-fields instead of data.
package collect

import (
	"context"
	"net/http"
	"sync"
	"time"

	"market_analysis/pkg/models"
)

// UserAgent sent with all outbound data requests.
const UserAgent = "MarketAnalysis/1.0 (contact@example.com)"

// Collector retrieves public information about one company.
type Collector interface {
	Collect(ctx context.Context, companyName string) *models.CompanyInfo
}

// HTTPCollector implements Collector against public market-data endpoints:
// SEC company tickers for symbol resolution, Yahoo Finance for quotes,
// profile pages and news.
type HTTPCollector struct {
	httpClient *http.Client
	tickers    *tickerResolver
}

var _ Collector = (*HTTPCollector)(nil)

// NewHTTPCollector creates a collector with the given per-request timeout.
func NewHTTPCollector(timeout time.Duration) *HTTPCollector {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	return &HTTPCollector{
		httpClient: client,
		tickers:    newTickerResolver(client),
	}
}

// Collect gathers all sub-fields for one company. Individual lookup
// failures are recorded as {"error": "..."} markers; Collect itself never
// fails.
func (c *HTTPCollector) Collect(ctx context.Context, companyName string) *models.CompanyInfo {
	info := &models.CompanyInfo{CompanyName: companyName}

	ticker, err := c.tickers.Resolve(ctx, companyName)
	if err != nil {
		// No ticker means no quote data, but profile and news can still be
		// searched by name.
		info.FinancialData = errField("Ticker symbol not found")
		info.StockPerformance = errField("No stock data available")
	} else {
		info.FinancialData = c.fetchFinancialData(ctx, ticker)
		info.StockPerformance = c.fetchStockPerformance(ctx, ticker)
	}

	info.CompanyProfile = c.fetchCompanyProfile(ctx, companyName, ticker)
	info.RecentNews = c.fetchRecentNews(ctx, companyName)

	return info
}

// CollectAll fetches data for several companies concurrently, capped at
// maxConcurrent in-flight requests. The result slice is index-aligned with
// names, so downstream ordering never depends on fetch completion order.
func CollectAll(ctx context.Context, collector Collector, names []string, maxConcurrent int) []*models.CompanyInfo {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	results := make([]*models.CompanyInfo, len(names))
	sem := make(chan struct{}, maxConcurrent)

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = collector.Collect(ctx, name)
		}(i, name)
	}
	wg.Wait()

	return results
}

func errField(msg string) map[string]interface{} {
	return map[string]interface{}{"error": msg}
}
