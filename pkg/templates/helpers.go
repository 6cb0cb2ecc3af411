package templates

import (
	"strconv"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"
)

// NotAvailable is rendered for missing values
const NotAvailable = "N/A"

// Funcs are available to every template in the registry
var Funcs = template.FuncMap{
	"number":  FormatNumber,
	"count":   FormatCount,
	"percent": FormatPercent,
	"compact": FormatCompact,
	"trim":    strings.TrimSpace,
}

// FormatNumber renders v with two decimals, or N/A for nil
func FormatNumber(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

// FormatCount renders v with thousands separators, or N/A for nil
func FormatCount(v *int64) string {
	if v == nil {
		return NotAvailable
	}
	return humanize.Comma(*v)
}

// FormatPercent renders v as a two decimal percentage, or N/A for nil
func FormatPercent(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*v, 'f', 2, 64) + "%"
}

// FormatCompact renders large figures with an SI suffix (1.9T, 450M)
func FormatCompact(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	value, prefix := humanize.ComputeSI(*v)
	return humanize.FtoaWithDigits(value, 2) + strings.Replace(prefix, "k", "K", 1)
}
