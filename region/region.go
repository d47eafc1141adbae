// Package region provides read-only per-region ledger configuration.
//
// Every jurisdiction is pure data: a TOML file embedded in the binary
// describing currency, tax rules, the chart-of-accounts standard, fiscal-year
// boundaries, reporting requirements and the regulatory body. Adding a
// jurisdiction means adding a data file, not code.
package region

import (
	"embed"
	"fmt"
	"sort"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/carebridge/ledger/account"
)

//go:embed data/*.toml
var dataFS embed.FS

// Code identifies a supported jurisdiction.
type Code string

const (
	England  Code = "england"
	Scotland Code = "scotland"
	Wales    Code = "wales"
	Belfast  Code = "belfast"
	Dublin   Code = "dublin"
)

// Codes lists every supported region code.
func Codes() []Code {
	return []Code{England, Scotland, Wales, Belfast, Dublin}
}

// Config is the immutable configuration for one region. Loaded once at
// service construction and never mutated at runtime; safe for concurrent
// reads from any component.
type Config struct {
	Code       Code       `toml:"-"`
	Currency   string     `toml:"currency"`
	Regulator  string     `toml:"regulator"`
	Taxes      []Tax      `toml:"taxes"`
	Standard   Standard   `toml:"accounting_standard"`
	FiscalYear FiscalYear `toml:"fiscal_year"`
	Reporting  Reporting  `toml:"reporting"`
}

// Tax is one tax rule in a region.
type Tax struct {
	Code string          `toml:"code"`
	Name string          `toml:"name"`
	Rate decimal.Decimal `toml:"rate"` // percentage, e.g. 20 for 20%

	// Exemptions lists service types the tax does not apply to.
	Exemptions []string `toml:"exemptions"`

	// Threshold is the trailing-12-month revenue below which the tax does
	// not apply. Zero means no threshold.
	Threshold decimal.Decimal `toml:"threshold"`
}

// Exempts reports whether serviceType is on the tax's exemption list.
func (t Tax) Exempts(serviceType string) bool {
	for _, ex := range t.Exemptions {
		if ex == serviceType {
			return true
		}
	}
	return false
}

// Standard names the accounting standard and its chart of accounts.
type Standard struct {
	Name            string                `toml:"name"`
	ChartOfAccounts map[string]ChartEntry `toml:"chart_of_accounts"`
}

// ChartEntry is one code in the regional chart-of-accounts standard.
type ChartEntry struct {
	Name     string       `toml:"name"`
	Type     account.Type `toml:"type"`
	Category string       `toml:"category"`
}

// SortedCodes returns the chart's account codes in ascending order.
func (s Standard) SortedCodes() []string {
	codes := make([]string, 0, len(s.ChartOfAccounts))
	for code := range s.ChartOfAccounts {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// FiscalYear marks where a region's accounting year begins.
type FiscalYear struct {
	StartMonth int `toml:"start_month"`
	StartDay   int `toml:"start_day"`
}

// WindowAt returns the fiscal-year window containing now. If now precedes
// this calendar year's fiscal start, the window began the previous year.
// The end is one year minus one day after the start, at end of day.
func (fy FiscalYear) WindowAt(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), time.Month(fy.StartMonth), fy.StartDay, 0, 0, 0, 0, now.Location())
	if now.Before(start) {
		start = start.AddDate(-1, 0, 0)
	}
	end = start.AddDate(1, 0, -1)
	end = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999999999, now.Location())
	return start, end
}

// Reporting describes the region's mandatory filings.
type Reporting struct {
	MandatoryReports []string `toml:"mandatory_reports"`
	Frequency        string   `toml:"frequency"`
}

// Load reads the configuration for a region code. Unknown codes fail with
// an error wrapping the embedded file lookup; callers surface it as a
// configuration error at construction time, never lazily.
func Load(code Code) (*Config, error) {
	raw, err := dataFS.ReadFile(fmt.Sprintf("data/%s.toml", code))
	if err != nil {
		return nil, fmt.Errorf("region: unknown region %q: %w", code, err)
	}

	cfg := &Config{Code: code}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("region: parse %q config: %w", code, err)
	}
	return cfg, nil
}

// MustLoad is like Load but panics on error. Use only with the exported
// region constants.
func MustLoad(code Code) *Config {
	cfg, err := Load(code)
	if err != nil {
		panic(err)
	}
	return cfg
}

// FindTax returns the region tax with the given code, or nil.
func (c *Config) FindTax(code string) *Tax {
	for i := range c.Taxes {
		if c.Taxes[i].Code == code {
			return &c.Taxes[i]
		}
	}
	return nil
}
