package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// SEC publishes the full ticker-to-company mapping as a single JSON file.
const secTickersURL = "https://www.sec.gov/files/company_tickers.json"

// wellKnownTickers avoids a network round trip for companies that show up
// constantly in analyses.
var wellKnownTickers = map[string]string{
	"apple":     "AAPL",
	"microsoft": "MSFT",
	"google":    "GOOGL",
	"alphabet":  "GOOGL",
	"amazon":    "AMZN",
	"tesla":     "TSLA",
	"meta":      "META",
	"netflix":   "NFLX",
	"nvidia":    "NVDA",
}

// tickerResolver maps company names to stock ticker symbols using a static
// map first and the SEC company list as fallback. The SEC list is fetched
// once and cached for the resolver's lifetime.
type tickerResolver struct {
	httpClient *http.Client

	mu      sync.Mutex
	secList map[string]string // lowercase company name -> ticker
}

func newTickerResolver(client *http.Client) *tickerResolver {
	return &tickerResolver{httpClient: client}
}

// Resolve returns the ticker for a company name, or an error when no
// symbol can be found.
func (r *tickerResolver) Resolve(ctx context.Context, companyName string) (string, error) {
	lower := strings.ToLower(companyName)

	for key, ticker := range wellKnownTickers {
		if strings.Contains(lower, key) {
			return ticker, nil
		}
	}

	list, err := r.loadSECList(ctx)
	if err != nil {
		return "", fmt.Errorf("ticker lookup unavailable: %w", err)
	}

	// Exact match first, then prefix match on registered names.
	normalized := normalizeCompanyName(lower)
	if ticker, ok := list[normalized]; ok {
		return ticker, nil
	}
	for name, ticker := range list {
		if strings.HasPrefix(name, normalized) {
			return ticker, nil
		}
	}

	return "", fmt.Errorf("no ticker found for %q", companyName)
}

// secTickerEntry matches the SEC company_tickers.json record shape.
type secTickerEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

func (r *tickerResolver) loadSECList(ctx context.Context) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.secList != nil {
		return r.secList, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, secTickersURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SEC returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// The file is a JSON object keyed by row index, not an array.
	var raw map[string]secTickerEntry
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse SEC ticker list: %w", err)
	}

	list := make(map[string]string, len(raw))
	for _, entry := range raw {
		list[normalizeCompanyName(strings.ToLower(entry.Title))] = entry.Ticker
	}

	r.secList = list
	return list, nil
}

// normalizeCompanyName strips common corporate suffixes and punctuation so
// "Apple Inc." and "APPLE INC" resolve identically.
func normalizeCompanyName(name string) string {
	name = strings.ToLower(name)
	for _, suffix := range []string{" inc.", " inc", " corp.", " corp", " corporation", " ltd.", " ltd", " plc", " co.", " company", ","} {
		name = strings.ReplaceAll(name, suffix, "")
	}
	return strings.TrimSpace(name)
}
