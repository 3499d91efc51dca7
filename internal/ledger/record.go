// Package ledger is the append-only history of recorded sales and the
// read-only aggregates the dashboards are built from.
package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TimestampLayout = "2006-01-02 15:04:05"
	DayLayout       = "2006-01-02"
	PeriodLayout    = "2006-01"
)

// SaleRecord is an immutable fact: written once at commit, never updated.
// UnitPrice and TotalAmount are captured at sale time and do not track
// later catalog price changes. Period is the operator-chosen reporting
// month, deliberately independent of Timestamp.
type SaleRecord struct {
	ID            string          `json:"id,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
	Period        string          `json:"period"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	ProductName   string          `json:"product_name"`
	QuantitySold  int             `json:"quantity_sold"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// Day is the calendar day the record's timestamp falls on.
func (r SaleRecord) Day() string {
	return r.Timestamp.Format(DayLayout)
}

// Backing-store column names. The period and customer columns are optional
// in files written by earlier cuts of the tool; readers map by header name
// and treat an absent column as blank.
const (
	colDate     = "Date"
	colPeriod   = "Sale Period (YYYY-MM)"
	colCustomer = "Customer Name"
	colPhone    = "Phone Number"
	colProduct  = "Product Name"
	colQty      = "Quantity Sold"
	colUnit     = "Unit Price"
	colTotal    = "Total Sale Amount"
	colID       = "Sale ID"
)

// Header is the full column set written for new ledger files and exports.
func Header() []string {
	return []string{colDate, colPeriod, colCustomer, colPhone, colProduct, colQty, colUnit, colTotal, colID}
}

// Row serializes the record under the given header, so appends to a file
// written with an older column set keep that file's shape.
func Row(rec SaleRecord, header []string) []string {
	row := make([]string, len(header))
	for i, col := range header {
		switch col {
		case colDate:
			row[i] = rec.Timestamp.Format(TimestampLayout)
		case colPeriod:
			row[i] = rec.Period
		case colCustomer:
			row[i] = rec.CustomerName
		case colPhone:
			row[i] = rec.CustomerPhone
		case colProduct:
			row[i] = rec.ProductName
		case colQty:
			row[i] = strconv.Itoa(rec.QuantitySold)
		case colUnit:
			row[i] = rec.UnitPrice.String()
		case colTotal:
			row[i] = rec.TotalAmount.String()
		case colID:
			row[i] = rec.ID
		}
	}
	return row
}

// ParseRow is the inverse of Row for a file with the given header layout.
func ParseRow(row []string, index map[string]int) (SaleRecord, error) {
	cell := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var rec SaleRecord
	var err error

	rec.Timestamp, err = time.ParseInLocation(TimestampLayout, cell(colDate), time.Local)
	if err != nil {
		return SaleRecord{}, fmt.Errorf("bad %s %q: %w", colDate, cell(colDate), err)
	}

	rec.ID = cell(colID)
	rec.Period = cell(colPeriod)
	rec.CustomerName = cell(colCustomer)
	rec.CustomerPhone = cell(colPhone)
	rec.ProductName = cell(colProduct)

	rec.QuantitySold, err = strconv.Atoi(cell(colQty))
	if err != nil {
		return SaleRecord{}, fmt.Errorf("bad %s %q: %w", colQty, cell(colQty), err)
	}

	rec.UnitPrice, err = decimal.NewFromString(cell(colUnit))
	if err != nil {
		return SaleRecord{}, fmt.Errorf("bad %s %q: %w", colUnit, cell(colUnit), err)
	}

	rec.TotalAmount, err = decimal.NewFromString(cell(colTotal))
	if err != nil {
		return SaleRecord{}, fmt.Errorf("bad %s %q: %w", colTotal, cell(colTotal), err)
	}

	return rec, nil
}
