package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"market_analysis/pkg/models"
)

const stockAnalysisProfileURL = "https://stockanalysis.com/stocks/%s/company/"

// fetchCompanyProfile scrapes a public company profile page. When no ticker
// is available only the company name is recorded, with an error marker.
func (c *HTTPCollector) fetchCompanyProfile(ctx context.Context, companyName, ticker string) map[string]interface{} {
	if ticker == "" {
		return errField(fmt.Sprintf("no profile source for %q without a ticker", companyName))
	}

	pageURL := fmt.Sprintf(stockAnalysisProfileURL, strings.ToLower(url.PathEscape(ticker)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return errField(err.Error())
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errField(fmt.Sprintf("profile fetch failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errField(fmt.Sprintf("profile page returned status %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return errField(fmt.Sprintf("profile parse failed: %v", err))
	}

	profile := map[string]interface{}{"source": pageURL}

	// Description is the first substantial paragraph on the profile page.
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if len(text) > 200 {
			profile["description"] = text
			return false
		}
		return true
	})

	// Key-value info tables (CEO, founded, headquarters, employees).
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() != 2 {
			return
		}
		key := strings.ToLower(strings.TrimSpace(cells.First().Text()))
		value := strings.TrimSpace(cells.Last().Text())
		if value == "" {
			return
		}
		switch {
		case strings.Contains(key, "ceo"):
			profile["ceo"] = value
		case strings.Contains(key, "founded"):
			profile["founded"] = value
		case strings.Contains(key, "headquarters") || strings.Contains(key, "country"):
			profile["headquarters"] = value
		case strings.Contains(key, "employees"):
			profile["employees"] = value
		}
	})

	if len(profile) == 1 {
		return errField("profile page yielded no fields")
	}
	return profile
}

// fetchRecentNews queries the Yahoo Finance search API for recent headlines.
func (c *HTTPCollector) fetchRecentNews(ctx context.Context, companyName string) []models.NewsItem {
	body, err := c.getJSON(ctx, fmt.Sprintf(yahooSearchURL, url.QueryEscape(companyName)))
	if err != nil {
		return nil
	}

	var parsed struct {
		News []struct {
			Title string `json:"title"`
			Link  string `json:"link"`
		} `json:"news"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil
	}

	items := make([]models.NewsItem, 0, len(parsed.News))
	for _, n := range parsed.News {
		if n.Title == "" {
			continue
		}
		items = append(items, models.NewsItem{Title: n.Title, URL: n.Link})
	}
	return items
}
