package marketdata

import (
	"context"
	"net/http"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/config"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/financial"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

// Provider fetches a ticker's current market data and fundamentals.
// Partial upstream failures still yield a record; a record without a current
// price is left for the caller to reject.
type Provider interface {
	Name() string
	FetchKeyMetrics(ctx context.Context, ticker string) (*financial.Metric, error)
}

// Provider names selectable with MARKET_DATA_PROVIDER
const (
	ProviderAlphaVantage = "alphavantage"
	ProviderYahoo        = "yahoo"
)

// New creates the configured provider
func New(cfg config.MarketDataConfig, sessions *Sessions) (Provider, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case ProviderAlphaVantage, "":
		if cfg.AlphaVantageKey == "" {
			return nil, errors.NewValidationError("ALPHA_VANTAGE_API_KEY", "is required", nil)
		}
		return NewAlphaVantage(AlphaVantageConfig{
			BaseURL:    cfg.AlphaVantageURL,
			APIKey:     cfg.AlphaVantageKey,
			HTTPClient: httpClient,
			Sessions:   sessions,
		}), nil
	case ProviderYahoo:
		return NewYahoo(YahooConfig{
			BaseURL:    cfg.YahooURL,
			HTTPClient: httpClient,
		}), nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unsupported market data provider %q", cfg.Provider)
	}
}
