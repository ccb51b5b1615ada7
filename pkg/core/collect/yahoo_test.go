package collect

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

// staticTransport serves one canned response for every request.
type staticTransport struct {
	status int
	body   string
}

func (t staticTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: t.status,
		Body:       io.NopCloser(strings.NewReader(t.body)),
		Header:     http.Header{},
		Request:    req,
	}, nil
}

func collectorWithResponse(status int, body string) *HTTPCollector {
	client := &http.Client{Transport: staticTransport{status: status, body: body}}
	return &HTTPCollector{
		httpClient: client,
		tickers:    newTickerResolver(client),
	}
}

func TestFetchStockPerformanceRaggedArrays(t *testing.T) {
	// Upstream chart data with high/low shorter than close must degrade,
	// not crash the fetch.
	body := `{"chart": {"result": [{"indicators": {"quote": [
		{"high": [10.0], "low": [9.0], "close": [9.5, 9.7, 9.9]}
	]}}]}}`
	c := collectorWithResponse(http.StatusOK, body)

	perf := c.fetchStockPerformance(context.Background(), "AAPL")

	if perf["error"] != nil {
		t.Fatalf("Expected performance data, got error: %v", perf["error"])
	}
	if perf["current_price"] != 9.9 {
		t.Errorf("Expected current price 9.9, got %v", perf["current_price"])
	}
	if perf["52_week_high"] != 10.0 {
		t.Errorf("Expected 52 week high 10.0, got %v", perf["52_week_high"])
	}
}

func TestFetchStockPerformanceNoCloses(t *testing.T) {
	body := `{"chart": {"result": [{"indicators": {"quote": [
		{"high": [], "low": [], "close": [null, null]}
	]}}]}}`
	c := collectorWithResponse(http.StatusOK, body)

	perf := c.fetchStockPerformance(context.Background(), "AAPL")

	if perf["error"] == nil {
		t.Errorf("Expected error marker without closing prices, got %v", perf)
	}
}

func TestCollectUnknownCompanyDegradesGracefully(t *testing.T) {
	// Every upstream lookup fails; Collect must still return a CompanyInfo
	// with error-tagged sub-fields.
	c := collectorWithResponse(http.StatusNotFound, "not found")

	info := c.Collect(context.Background(), "Zzyzx Widgets")

	if info == nil {
		t.Fatal("Collect must never return nil")
	}
	if info.CompanyName != "Zzyzx Widgets" {
		t.Errorf("Unexpected company name: %s", info.CompanyName)
	}
	if info.FinancialData["error"] != "Ticker symbol not found" {
		t.Errorf("Expected ticker error marker, got %v", info.FinancialData)
	}
	if info.StockPerformance["error"] != "No stock data available" {
		t.Errorf("Expected stock error marker, got %v", info.StockPerformance)
	}
	if info.CompanyProfile["error"] == nil {
		t.Errorf("Expected profile error marker, got %v", info.CompanyProfile)
	}
}
