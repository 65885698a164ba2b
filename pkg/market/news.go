package market

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"portfoliobot/pkg/logging"
)

// Article is one news item in the shape the agent presents.
type Article struct {
	Title          string   `json:"title"`
	Summary        string   `json:"summary"`
	Source         string   `json:"source"`
	PublishedAt    string   `json:"published_at"`
	Tickers        []string `json:"tickers"`
	URL            string   `json:"url"`
	RelevanceScore float64  `json:"relevance_score"`
}

const maxArticles = 20

// PortfolioNews returns recent articles mentioning any of the tickers within
// the timeframe, deduplicated, most relevant first, capped at 20. A failed
// fetch degrades to an empty list; missing news never fails an analysis.
func (c *Client) PortfolioNews(ctx context.Context, tickers []string, timeframe string) []Article {
	symbols := normalizeTickers(tickers)
	if len(symbols) == 0 {
		return []Article{}
	}

	key := newsCacheKey(symbols, timeframe)
	if articles, ok := c.newsCache.Get(key); ok {
		c.log.Debug("using cached news", "key", key)
		return articles
	}

	start := c.now().Add(-timeframeDuration(timeframe))

	var raw []marketdata.News
	err := c.retry.Do(ctx, func() error {
		var err error
		raw, err = c.data.GetNews(marketdata.GetNewsRequest{
			Symbols:    symbols,
			Start:      start,
			TotalLimit: 50,
			Sort:       marketdata.SortDesc,
		})
		if err != nil {
			c.log.Warn("news request failed", logging.Err(err))
		}
		return err
	})
	if err != nil {
		c.log.Error("news unavailable, returning empty list", logging.Err(err))
		return []Article{}
	}

	articles := dedupeArticles(toArticles(raw, symbols))
	sort.SliceStable(articles, func(i, j int) bool {
		if articles[i].RelevanceScore != articles[j].RelevanceScore {
			return articles[i].RelevanceScore > articles[j].RelevanceScore
		}
		return articles[i].PublishedAt > articles[j].PublishedAt
	})
	if len(articles) > maxArticles {
		articles = articles[:maxArticles]
	}

	c.newsCache.Put(key, articles)
	c.log.Info("retrieved news", "articles", len(articles), "tickers", len(symbols))
	return articles
}

func toArticles(raw []marketdata.News, portfolio []string) []Article {
	held := make(map[string]bool, len(portfolio))
	for _, t := range portfolio {
		held[t] = true
	}

	articles := make([]Article, 0, len(raw))
	for _, n := range raw {
		score := 0.5
		for _, s := range n.Symbols {
			if held[strings.ToUpper(s)] {
				score = 0.8
				break
			}
		}
		articles = append(articles, Article{
			Title:          n.Headline,
			Summary:        n.Summary,
			Source:         n.Source,
			PublishedAt:    n.CreatedAt.UTC().Format(time.RFC3339),
			Tickers:        n.Symbols,
			URL:            n.URL,
			RelevanceScore: score,
		})
	}
	return articles
}

// dedupeArticles drops items whose titles share the same first 50 characters,
// ignoring case. Wire services republish the same story under near-identical
// headlines.
func dedupeArticles(articles []Article) []Article {
	seen := make(map[string]bool, len(articles))
	out := articles[:0]
	for _, a := range articles {
		key := strings.ToLower(a.Title)
		if len(key) > 50 {
			key = key[:50]
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

func normalizeTickers(tickers []string) []string {
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func newsCacheKey(symbols []string, timeframe string) string {
	sorted := append([]string(nil), symbols...)
	sort.Strings(sorted)
	return fmt.Sprintf("news_%s_%s", strings.Join(sorted, ","), timeframe)
}

// timeframeDuration parses timeframes like "24h", "7d", "2w", "1m". Anything
// unparseable falls back to 24 hours.
func timeframeDuration(timeframe string) time.Duration {
	tf := strings.ToLower(strings.TrimSpace(timeframe))
	if len(tf) < 2 {
		return 24 * time.Hour
	}
	n := 0
	for _, r := range tf[:len(tf)-1] {
		if r < '0' || r > '9' {
			return 24 * time.Hour
		}
		n = n*10 + int(r-'0')
	}
	if n == 0 {
		return 24 * time.Hour
	}
	switch tf[len(tf)-1] {
	case 'h':
		return time.Duration(n) * time.Hour
	case 'd':
		return time.Duration(n) * 24 * time.Hour
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour
	case 'm':
		return time.Duration(n) * 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}
