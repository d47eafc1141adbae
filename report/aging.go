package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenItem is an outstanding receivable or payable produced by an external
// subsystem (invoicing, payments). The core buckets them; it does not own
// their lifecycle.
type OpenItem struct {
	Reference    string          `json:"reference"`
	Counterparty string          `json:"counterparty"`
	DueDate      time.Time       `json:"due_date"`
	Amount       decimal.Decimal `json:"amount"`
}

// AgedItem is an OpenItem annotated with its aging bucket.
type AgedItem struct {
	OpenItem
	DaysOverdue int    `json:"days_overdue"`
	Bucket      string `json:"bucket"`
}

// Aging buckets outstanding amounts by days overdue relative to the report's
// as-of date.
type Aging struct {
	AsOf    time.Time       `json:"as_of"`
	Items   []AgedItem      `json:"items"`
	Current decimal.Decimal `json:"current"`
	Thirty  decimal.Decimal `json:"thirty"`  // 1–30 days overdue
	Sixty   decimal.Decimal `json:"sixty"`   // 31–60
	Ninety  decimal.Decimal `json:"ninety"`  // 61–90
	Older   decimal.Decimal `json:"older"`   // 90+
	Total   decimal.Decimal `json:"total"`
}

// DaysOverdue computes floor((asOf - dueDate) / 1 day). Items due today or
// in the future come out zero or negative.
func DaysOverdue(dueDate, asOf time.Time) int {
	return int(asOf.Sub(dueDate).Hours() / 24)
}

// BucketFor maps a days-overdue value to its aging bucket.
func BucketFor(daysOverdue int) string {
	switch {
	case daysOverdue <= 0:
		return "current"
	case daysOverdue <= 30:
		return "thirty"
	case daysOverdue <= 60:
		return "sixty"
	case daysOverdue <= 90:
		return "ninety"
	default:
		return "older"
	}
}

// AgeItems buckets open items as of a date.
func AgeItems(items []OpenItem, asOf time.Time) Aging {
	aging := Aging{
		AsOf:    asOf,
		Current: decimal.Zero,
		Thirty:  decimal.Zero,
		Sixty:   decimal.Zero,
		Ninety:  decimal.Zero,
		Older:   decimal.Zero,
		Total:   decimal.Zero,
	}

	for _, item := range items {
		days := DaysOverdue(item.DueDate, asOf)
		bucket := BucketFor(days)

		aging.Items = append(aging.Items, AgedItem{
			OpenItem:    item,
			DaysOverdue: days,
			Bucket:      bucket,
		})

		switch bucket {
		case "current":
			aging.Current = aging.Current.Add(item.Amount)
		case "thirty":
			aging.Thirty = aging.Thirty.Add(item.Amount)
		case "sixty":
			aging.Sixty = aging.Sixty.Add(item.Amount)
		case "ninety":
			aging.Ninety = aging.Ninety.Add(item.Amount)
		default:
			aging.Older = aging.Older.Add(item.Amount)
		}
		aging.Total = aging.Total.Add(item.Amount)
	}

	return aging
}

// CashClassifier assigns a cash movement to a cash-flow activity based on
// the code of the non-cash account on the other side of the transaction.
type CashClassifier func(counterCode string) CashFlowActivity

// DefaultCashClassifier classifies by account-code prefix: fixed-asset
// codes (15xx) are investing, equity codes (3xxx) are financing, everything
// else is operating. Deliberately coarse; hosts with richer charts supply
// their own classifier.
func DefaultCashClassifier(counterCode string) CashFlowActivity {
	switch {
	case len(counterCode) >= 2 && counterCode[:2] == "15":
		return ActivityInvesting
	case len(counterCode) >= 1 && counterCode[:1] == "3":
		return ActivityFinancing
	default:
		return ActivityOperating
	}
}
