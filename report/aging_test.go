package report_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/carebridge/ledger/report"
)

func TestBucketBoundaries(t *testing.T) {
	tests := []struct {
		days   int
		bucket string
	}{
		{-5, "current"},
		{0, "current"},
		{1, "thirty"},
		{30, "thirty"},
		{31, "sixty"},
		{60, "sixty"},
		{61, "ninety"},
		{90, "ninety"},
		{91, "older"},
		{400, "older"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.bucket, report.BucketFor(tt.days), "days=%d", tt.days)
	}
}

func TestDaysOverdue(t *testing.T) {
	asOf := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, report.DaysOverdue(asOf, asOf))
	assert.Equal(t, 10, report.DaysOverdue(asOf.AddDate(0, 0, -10), asOf))
	assert.Equal(t, -10, report.DaysOverdue(asOf.AddDate(0, 0, 10), asOf))
}

func TestAgeItemsBuckets(t *testing.T) {
	asOf := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	items := []report.OpenItem{
		{Reference: "A", DueDate: asOf, Amount: decimal.NewFromInt(10)},
		{Reference: "B", DueDate: asOf.AddDate(0, 0, -15), Amount: decimal.NewFromInt(20)},
		{Reference: "C", DueDate: asOf.AddDate(0, 0, -45), Amount: decimal.NewFromInt(30)},
		{Reference: "D", DueDate: asOf.AddDate(0, 0, -75), Amount: decimal.NewFromInt(40)},
		{Reference: "E", DueDate: asOf.AddDate(0, 0, -120), Amount: decimal.NewFromInt(50)},
	}

	aging := report.AgeItems(items, asOf)

	assert.True(t, aging.Current.Equal(decimal.NewFromInt(10)))
	assert.True(t, aging.Thirty.Equal(decimal.NewFromInt(20)))
	assert.True(t, aging.Sixty.Equal(decimal.NewFromInt(30)))
	assert.True(t, aging.Ninety.Equal(decimal.NewFromInt(40)))
	assert.True(t, aging.Older.Equal(decimal.NewFromInt(50)))
	assert.True(t, aging.Total.Equal(decimal.NewFromInt(150)))

	assert.Len(t, aging.Items, 5)
	assert.Equal(t, "sixty", aging.Items[2].Bucket)
	assert.Equal(t, 45, aging.Items[2].DaysOverdue)
}

func TestAgeItemsEmpty(t *testing.T) {
	aging := report.AgeItems(nil, time.Now())
	assert.Empty(t, aging.Items)
	assert.True(t, aging.Total.IsZero())
}

func TestDefaultCashClassifier(t *testing.T) {
	assert.Equal(t, report.ActivityInvesting, report.DefaultCashClassifier("1500"))
	assert.Equal(t, report.ActivityFinancing, report.DefaultCashClassifier("3000"))
	assert.Equal(t, report.ActivityOperating, report.DefaultCashClassifier("4000"))
	assert.Equal(t, report.ActivityOperating, report.DefaultCashClassifier(""))
}
