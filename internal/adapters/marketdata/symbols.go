package marketdata

import (
	"strings"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

// Nifty50 is the default backfill universe
var Nifty50 = []string{
	"ADANIENT.NS", "ADANIPORTS.NS", "APOLLOHOSP.NS", "ASIANPAINT.NS",
	"AXISBANK.NS", "BAJAJ-AUTO.NS", "BAJFINANCE.NS", "BAJAJFINSV.NS",
	"BHARTIARTL.NS", "BPCL.NS", "BRITANNIA.NS", "CIPLA.NS", "COALINDIA.NS",
	"DIVISLAB.NS", "DRREDDY.NS", "EICHERMOT.NS", "GRASIM.NS", "HCLTECH.NS",
	"HDFCBANK.NS", "HDFCLIFE.NS", "HEROMOTOCO.NS", "HINDALCO.NS", "HINDUNILVR.NS",
	"ICICIBANK.NS", "INDUSINDBK.NS", "INFY.NS", "ITC.NS", "JSWSTEEL.NS",
	"KOTAKBANK.NS", "LT.NS", "M&M.NS", "MARUTI.NS", "NESTLEIND.NS",
	"NTPC.NS", "ONGC.NS", "POWERGRID.NS", "RELIANCE.NS", "SBIN.NS",
	"SBILIFE.NS", "SHREECEM.NS", "SHRIRAMFIN.NS", "SUNPHARMA.NS", "TCS.NS",
	"TATACONSUM.NS", "TATAMOTORS.NS", "TATASTEEL.NS", "TECHM.NS", "TITAN.NS",
	"ULTRACEMCO.NS", "UPL.NS", "WIPRO.NS",
}

// ParseTickers splits a comma separated list, dropping blanks and duplicates
func ParseTickers(list string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range strings.Split(list, ",") {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// AlphaVantageSymbol maps a ticker onto the symbol form Alpha Vantage serves.
// NSE listings are rewritten to their BSE equivalent; the .NSE suffix has no
// equivalent and is rejected. Bare symbols and other suffixes pass through.
func AlphaVantageSymbol(ticker string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	switch {
	case symbol == "":
		return "", errors.Wrap(errors.ErrInvalidSymbol, "empty ticker")
	case strings.HasSuffix(symbol, ".NSE"):
		return "", errors.Wrapf(errors.ErrInvalidSymbol, "%s: NSE listings are not served by alpha vantage", symbol)
	case strings.HasSuffix(symbol, ".NS"):
		return strings.TrimSuffix(symbol, ".NS") + ".BSE", nil
	default:
		return symbol, nil
	}
}

// YahooSymbol maps a ticker onto Yahoo Finance's suffix convention
func YahooSymbol(ticker string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	switch {
	case symbol == "":
		return "", errors.Wrap(errors.ErrInvalidSymbol, "empty ticker")
	case strings.HasSuffix(symbol, ".NSE"):
		return strings.TrimSuffix(symbol, ".NSE") + ".NS", nil
	case strings.HasSuffix(symbol, ".BSE"):
		return strings.TrimSuffix(symbol, ".BSE") + ".BO", nil
	default:
		return symbol, nil
	}
}

// exchangeMIC resolves the ISO 10383 market code of a ticker's listing
func exchangeMIC(ticker string) string {
	symbol := strings.ToUpper(ticker)
	switch {
	case strings.HasSuffix(symbol, ".NS"), strings.HasSuffix(symbol, ".NSE"):
		return "xnse"
	case strings.HasSuffix(symbol, ".BSE"), strings.HasSuffix(symbol, ".BO"):
		return "xbom"
	case strings.HasSuffix(symbol, ".L"):
		return "xlon"
	case strings.HasSuffix(symbol, ".TO"):
		return "xtse"
	case strings.HasSuffix(symbol, ".HK"):
		return "xhkg"
	case strings.HasSuffix(symbol, ".T"):
		return "xtks"
	default:
		return "xnys"
	}
}
