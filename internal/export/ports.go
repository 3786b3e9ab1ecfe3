// Package export writes completed transactions to an external spreadsheet.
package export

import "context"

// Row is one spreadsheet line for an exported transaction.
type Row struct {
	Date         string
	Description  string
	AmountEuros  float64
	CategoryName string
	Kind         string
	Username     string
}

// RowAppender is the outbound port the worker writes through.
type RowAppender interface {
	AppendRow(ctx context.Context, row Row) error
}
