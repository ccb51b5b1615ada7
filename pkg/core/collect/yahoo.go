package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	yahooQuoteURL  = "https://query1.finance.yahoo.com/v7/finance/quote?symbols=%s"
	yahooChartURL  = "https://query1.finance.yahoo.com/v8/finance/chart/%s?range=1y&interval=1mo"
	yahooSearchURL = "https://query1.finance.yahoo.com/v1/finance/search?q=%s&newsCount=5&quotesCount=0"
)

// fetchFinancialData retrieves quote fundamentals for a ticker.
func (c *HTTPCollector) fetchFinancialData(ctx context.Context, ticker string) map[string]interface{} {
	body, err := c.getJSON(ctx, fmt.Sprintf(yahooQuoteURL, url.QueryEscape(ticker)))
	if err != nil {
		return errField(fmt.Sprintf("failed to get financial data: %v", err))
	}

	var parsed struct {
		QuoteResponse struct {
			Result []map[string]interface{} `json:"result"`
		} `json:"quoteResponse"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.QuoteResponse.Result) == 0 {
		return errField("quote response contained no data")
	}

	quote := parsed.QuoteResponse.Result[0]
	data := map[string]interface{}{"ticker": ticker}
	for out, in := range map[string]string{
		"market_cap":     "marketCap",
		"revenue":        "totalRevenue",
		"pe_ratio":       "trailingPE",
		"eps":            "epsTrailingTwelveMonths",
		"dividend_yield": "dividendYield",
		"sector":         "sector",
		"industry":       "industry",
	} {
		if v, ok := quote[in]; ok {
			data[out] = v
		}
	}
	return data
}

// fetchStockPerformance derives one-year performance metrics from monthly
// chart data.
func (c *HTTPCollector) fetchStockPerformance(ctx context.Context, ticker string) map[string]interface{} {
	body, err := c.getJSON(ctx, fmt.Sprintf(yahooChartURL, url.PathEscape(ticker)))
	if err != nil {
		return errField(fmt.Sprintf("failed to get stock performance: %v", err))
	}

	var parsed struct {
		Chart struct {
			Result []struct {
				Indicators struct {
					Quote []struct {
						High  []*float64 `json:"high"`
						Low   []*float64 `json:"low"`
						Close []*float64 `json:"close"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
		} `json:"chart"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Chart.Result) == 0 ||
		len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return errField("chart response contained no data")
	}

	quote := parsed.Chart.Result[0].Indicators.Quote[0]

	// The three arrays are not guaranteed to be the same length.
	var high, low float64
	var first, last *float64
	for i := range quote.Close {
		if i < len(quote.High) && quote.High[i] != nil && *quote.High[i] > high {
			high = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil && (low == 0 || *quote.Low[i] < low) {
			low = *quote.Low[i]
		}
		if quote.Close[i] != nil {
			if first == nil {
				first = quote.Close[i]
			}
			last = quote.Close[i]
		}
	}

	if first == nil || last == nil {
		return errField("no closing prices in chart data")
	}

	return map[string]interface{}{
		"52_week_high":    high,
		"52_week_low":     low,
		"current_price":   *last,
		"one_year_return": (*last / *first - 1) * 100,
	}
}

func (c *HTTPCollector) getJSON(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
