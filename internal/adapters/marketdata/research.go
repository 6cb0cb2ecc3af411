package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

// Research kinds served by AlphaVantage.Research
const (
	ResearchNewsSentiment  = "NEWS_SENTIMENT_SUMMARY"
	ResearchCompanySummary = "COMPANY_SUMMARY"
	ResearchEarnings       = "EARNINGS_CALL_SUMMARY"
	ResearchInsiderTrends  = "INSIDER_OWNERSHIP_TRENDS"
	ResearchMacroCPI       = "MACRO_FACTORS_CPI"
	ResearchMacroTreasury  = "MACRO_FACTORS_TREASURY_YIELD"
)

const (
	newsArticleLimit   = 50
	insiderRowLimit    = 10
	macroPointLimit    = 5
	researchNotPresent = "N/A"
)

// ResearchNeedsTicker reports whether kind is scoped to one company
func ResearchNeedsTicker(kind string) bool {
	switch kind {
	case ResearchCompanySummary, ResearchEarnings, ResearchInsiderTrends:
		return true
	default:
		return false
	}
}

// Research renders the Alpha Vantage data set behind kind as plain text for a
// model prompt. An empty string means the API had nothing for the request.
func (a *AlphaVantage) Research(ctx context.Context, kind, ticker, query string) (string, error) {
	symbol := ""
	if strings.TrimSpace(ticker) != "" {
		var err error
		if symbol, err = AlphaVantageSymbol(ticker); err != nil {
			return "", err
		}
	}

	switch kind {
	case ResearchNewsSentiment:
		return a.newsSentiment(ctx, symbol, query)
	case ResearchCompanySummary:
		return a.companySummary(ctx, symbol)
	case ResearchEarnings:
		return a.earnings(ctx, symbol)
	case ResearchInsiderTrends:
		return a.insiderTransactions(ctx, symbol)
	case ResearchMacroCPI:
		return a.macroSeries(ctx, "CPI", "Consumer Price Index")
	case ResearchMacroTreasury:
		return a.macroSeries(ctx, "TREASURY_YIELD", "Treasury Yield")
	default:
		return "", errors.NewValidationError("insight_type", "unsupported research kind", kind)
	}
}

type newsFeed struct {
	Feed []struct {
		Title     string `json:"title"`
		Summary   string `json:"summary"`
		URL       string `json:"url"`
		Sentiment string `json:"overall_sentiment_label"`
	} `json:"feed"`
}

func (a *AlphaVantage) newsSentiment(ctx context.Context, symbol, topics string) (string, error) {
	params := url.Values{
		"function": {"NEWS_SENTIMENT"},
		"sort":     {"RELEVANCE"},
		"limit":    {fmt.Sprint(newsArticleLimit)},
	}
	if symbol != "" {
		params.Set("tickers", symbol)
	}
	if topics = strings.TrimSpace(topics); topics != "" {
		params.Set("topics", topics)
	}

	body, err := a.query(ctx, params)
	if err != nil {
		return "", err
	}
	var feed newsFeed
	if err := remarshal(body, &feed); err != nil {
		return "", err
	}
	if len(feed.Feed) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("--- Recent News Articles ---\n\n")
	for _, article := range feed.Feed {
		fmt.Fprintf(&b, "Title: %s\nSummary: %s\nURL: %s\nSentiment: %s\n\n",
			orNA(article.Title), orNA(article.Summary), orNA(article.URL), orDefault(article.Sentiment, "Neutral"))
	}
	return b.String(), nil
}

type companyProfile struct {
	Symbol               string `json:"Symbol"`
	Name                 string `json:"Name"`
	Exchange             string `json:"Exchange"`
	Currency             string `json:"Currency"`
	Sector               string `json:"Sector"`
	Industry             string `json:"Industry"`
	Description          string `json:"Description"`
	MarketCapitalization string `json:"MarketCapitalization"`
	PERatio              string `json:"PERatio"`
	DividendYield        string `json:"DividendYield"`
	AnalystTargetPrice   string `json:"AnalystTargetPrice"`
}

func (a *AlphaVantage) companySummary(ctx context.Context, symbol string) (string, error) {
	body, err := a.query(ctx, url.Values{"function": {"OVERVIEW"}, "symbol": {symbol}})
	if err != nil {
		return "", err
	}
	var p companyProfile
	if err := remarshal(body, &p); err != nil {
		return "", err
	}
	if p.Symbol == "" {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- Company Overview for %s ---\n", orDefault(p.Name, symbol))
	for _, row := range [][2]string{
		{"Symbol", p.Symbol},
		{"Exchange", p.Exchange},
		{"Currency", p.Currency},
		{"Sector", p.Sector},
		{"Industry", p.Industry},
		{"Description", p.Description},
		{"Market Capitalization", p.MarketCapitalization},
		{"P/E Ratio", p.PERatio},
		{"Dividend Yield", p.DividendYield},
		{"Analyst Target Price", p.AnalystTargetPrice},
	} {
		fmt.Fprintf(&b, "%s: %s\n", row[0], orNA(row[1]))
	}
	return b.String(), nil
}

type earningsResponse struct {
	Annual []struct {
		FiscalDateEnding string `json:"fiscalDateEnding"`
		ReportedEPS      string `json:"reportedEPS"`
	} `json:"annualEarnings"`
	Quarterly []struct {
		FiscalDateEnding   string `json:"fiscalDateEnding"`
		ReportedDate       string `json:"reportedDate"`
		ReportedEPS        string `json:"reportedEPS"`
		EstimatedEPS       string `json:"estimatedEPS"`
		Surprise           string `json:"surprise"`
		SurprisePercentage string `json:"surprisePercentage"`
	} `json:"quarterlyEarnings"`
}

// earnings covers reported and estimated EPS. Alpha Vantage does not serve
// call transcripts on this endpoint.
func (a *AlphaVantage) earnings(ctx context.Context, symbol string) (string, error) {
	body, err := a.query(ctx, url.Values{"function": {"EARNINGS"}, "symbol": {symbol}})
	if err != nil {
		return "", err
	}
	var e earningsResponse
	if err := remarshal(body, &e); err != nil {
		return "", err
	}
	if len(e.Annual) == 0 && len(e.Quarterly) == 0 {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- Earnings Data for %s ---\n", symbol)
	if len(e.Annual) > 0 {
		y := e.Annual[0]
		fmt.Fprintf(&b, "Latest Annual Earnings:\n  Fiscal Date: %s, Reported EPS: %s\n",
			orNA(y.FiscalDateEnding), orNA(y.ReportedEPS))
	}
	if len(e.Quarterly) > 0 {
		q := e.Quarterly[0]
		fmt.Fprintf(&b, "Latest Quarterly Earnings:\n  Fiscal Date: %s, Report Date: %s, Reported EPS: %s, Estimated EPS: %s, Surprise: %s (%s%%)\n",
			orNA(q.FiscalDateEnding), orNA(q.ReportedDate), orNA(q.ReportedEPS),
			orNA(q.EstimatedEPS), orNA(q.Surprise), orNA(q.SurprisePercentage))
	}
	return b.String(), nil
}

type insiderResponse struct {
	Data []struct {
		TransactionDate string `json:"transaction_date"`
		Executive       string `json:"executive"`
		Title           string `json:"executive_title"`
		Direction       string `json:"acquisition_or_disposal"`
		Shares          string `json:"shares"`
		SharePrice      string `json:"share_price"`
	} `json:"data"`
}

func (a *AlphaVantage) insiderTransactions(ctx context.Context, symbol string) (string, error) {
	body, err := a.query(ctx, url.Values{"function": {"INSIDER_TRANSACTIONS"}, "symbol": {symbol}})
	if err != nil {
		return "", err
	}
	var r insiderResponse
	if err := remarshal(body, &r); err != nil {
		return "", err
	}
	if len(r.Data) == 0 {
		return "", nil
	}

	rows := r.Data
	if len(rows) > insiderRowLimit {
		rows = rows[:insiderRowLimit]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "--- Insider Transactions for %s ---\n", symbol)
	for _, tx := range rows {
		direction := "Acquisition"
		if strings.EqualFold(tx.Direction, "D") {
			direction = "Disposal"
		}
		fmt.Fprintf(&b, "- %s (%s)\n  %s of %s shares at %s on %s\n",
			orNA(tx.Executive), orNA(tx.Title), direction, orNA(tx.Shares), orNA(tx.SharePrice), orNA(tx.TransactionDate))
	}
	return b.String(), nil
}

func (a *AlphaVantage) macroSeries(ctx context.Context, function, label string) (string, error) {
	body, err := a.query(ctx, url.Values{"function": {function}})
	if err != nil {
		return "", err
	}
	raw, ok := body["data"]
	if !ok {
		return "", nil
	}
	var points []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &points); err != nil {
		return "", errors.Wrap(errors.ErrProviderFailure, "decode "+function+": "+err.Error())
	}
	if len(points) == 0 {
		return "", nil
	}
	if len(points) > macroPointLimit {
		points = points[:macroPointLimit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- Latest %s Data ---\n", label)
	for _, p := range points {
		fmt.Fprintf(&b, "- Date: %s, Value: %s\n", orNA(p.Date), orNA(p.Value))
	}
	return b.String(), nil
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func orNA(s string) string { return orDefault(s, researchNotPresent) }
