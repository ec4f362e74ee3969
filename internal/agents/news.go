package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"delphi/internal/adapters/alphavantage"
	"delphi/pkg/errors"
)

const (
	// Articles below this ticker relevance are dropped before prompting.
	newsRelevanceThreshold = 0.4

	maxCompanyArticles = 20
	maxMacroArticles   = 30
)

// promptArticle is the compact article form embedded in the news prompt.
// FeedSentiment carries the feed's own label as a hint; the analyst still
// assigns its own sentiment per article.
type promptArticle struct {
	Title          string  `json:"title"`
	PublishedAt    string  `json:"published_at"`
	Source         string  `json:"source"`
	URL            string  `json:"url"`
	Snippet        string  `json:"snippet"`
	FeedSentiment  string  `json:"feed_sentiment"`
	ImpactScope    string  `json:"impact_scope"`
	RelevanceScore float64 `json:"relevance_score"`
}

type keptArticle struct {
	article   alphavantage.Article
	relevance float64
	scope     string
}

// AnalyzeNews fetches company and macro news for the window ending on the
// analysis date, keeps articles relevant to the ticker and asks the news
// analyst for a structured read. Feed errors degrade to an empty window
// instead of failing the run; with nothing kept the step returns a
// low-confidence neutral analysis without a model call.
func (t *Team) AnalyzeNews(ctx context.Context, st AnalysisState) (AnalysisState, error) {
	end, err := time.Parse("2006-01-02", st.Date)
	if err != nil {
		return st, errors.Wrapf(errors.ErrInvalidInput, "parse analysis date %q", st.Date)
	}
	from := end.AddDate(0, 0, -t.newsLookback)
	to := end.Add(24*time.Hour - time.Second)

	company, err := t.news.CompanyNews(ctx, st.Ticker, from, to, maxCompanyArticles)
	if err != nil {
		t.log.Warnw("company news fetch failed", "ticker", st.Ticker, "error", err)
		company = nil
	}
	macro, err := t.news.MacroNews(ctx, from, to, maxMacroArticles)
	if err != nil {
		t.log.Warnw("macro news fetch failed", "ticker", st.Ticker, "error", err)
		macro = nil
	}
	rawTotal := len(company) + len(macro)

	kept := keepRelevant(st.Ticker, company, macro, newsRelevanceThreshold)
	if len(kept) > t.newsLimit {
		kept = kept[:t.newsLimit]
	}

	if len(kept) == 0 {
		t.log.Warnw("no company-relevant news kept",
			"ticker", st.Ticker,
			"raw_articles", rawTotal,
			"lookback_days", t.newsLookback,
		)
		st.News = degradedNewsAnalysis(st.Ticker, t.newsLookback, rawTotal)
		return st, nil
	}

	articles := make([]promptArticle, 0, len(kept))
	sources := make(map[string]struct{})
	for _, k := range kept {
		articles = append(articles, promptArticle{
			Title:          k.article.Title,
			PublishedAt:    k.article.PublishedAtISO(),
			Source:         k.article.Source,
			URL:            k.article.URL,
			Snippet:        k.article.Summary,
			FeedSentiment:  feedSentiment(k.article.OverallSentimentLabel),
			ImpactScope:    k.scope,
			RelevanceScore: k.relevance,
		})
		if src := strings.TrimSpace(k.article.Source); src != "" {
			sources[strings.ToLower(src)] = struct{}{}
		}
	}

	system, user := newsPrompts(
		st.Ticker, st.Date, t.newsLookback,
		len(articles), len(sources), uniqueTopics(articles), rawTotal,
		mustJSON(articles),
	)

	var out NewsAnalysis
	if err := t.generate(ctx, KindNews, system, user, NewsAnalysisSchema, &out); err != nil {
		return st, err
	}
	st.News = &out
	return st, nil
}

// keepRelevant merges both feeds, drops articles below the relevance
// threshold, dedupes by URL and orders by relevance then recency. The feed
// already scores each article's relevance to the ticker, so no text
// matching happens here.
func keepRelevant(ticker string, company, macro []alphavantage.Article, threshold float64) []keptArticle {
	seen := make(map[string]struct{})
	var kept []keptArticle

	add := func(items []alphavantage.Article, scope string) {
		for _, a := range items {
			score := a.RelevanceFor(ticker)
			if score < threshold {
				continue
			}
			key := strings.ToLower(strings.TrimSpace(a.URL))
			if key == "" {
				key = strings.ToLower(strings.TrimSpace(a.Title))
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			kept = append(kept, keptArticle{article: a, relevance: score, scope: scope})
		}
	}
	add(company, "company")
	add(macro, "macro")

	// Feed timestamps (20060102T150405) sort lexicographically.
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].relevance != kept[j].relevance {
			return kept[i].relevance > kept[j].relevance
		}
		return kept[i].article.TimePublished > kept[j].article.TimePublished
	})
	return kept
}

// uniqueTopics estimates topic diversity from the first seven title words.
func uniqueTopics(items []promptArticle) int {
	seen := make(map[string]struct{})
	for _, it := range items {
		words := strings.Fields(strings.ToLower(it.Title))
		if len(words) == 0 {
			continue
		}
		if len(words) > 7 {
			words = words[:7]
		}
		seen[strings.Join(words, " ")] = struct{}{}
	}
	return len(seen)
}

// feedSentiment folds the feed's five-grade labels into the three-grade
// vocabulary the analyst uses.
func feedSentiment(label string) string {
	switch strings.ToLower(label) {
	case "bullish", "somewhat-bullish":
		return "bullish"
	case "bearish", "somewhat-bearish":
		return "bearish"
	default:
		return "neutral"
	}
}

// degradedNewsAnalysis is the stand-in result when the window holds no
// relevant articles. Downstream steps see an explicit low-confidence
// neutral read instead of a missing one.
func degradedNewsAnalysis(ticker string, lookbackDays, rawTotal int) *NewsAnalysis {
	return &NewsAnalysis{
		AnalysisSummary:    fmt.Sprintf("No company-relevant news found for %s in the past %d days.", ticker, lookbackDays),
		LookbackWindowDays: lookbackDays,
		CoverageStats:      CoverageStats{RawArticles: rawTotal},
		MacroThemes:        []MacroTheme{},
		CompanyImpact: CompanyImpact{
			DemandOutlook:   "uncertain",
			CostPressure:    "uncertain",
			RegulatoryRisk:  "uncertain",
			ValuationImpact: "uncertain",
			Reasoning:       "No relevant articles were identified within the selected window.",
		},
		Catalysts:           []string{},
		RiskRadar:           []string{},
		OverallSentiment:    "neutral",
		ConfidenceScore:     0.15,
		HighlightedArticles: []NewsItem{},
		Sources:             []string{},
	}
}
