// Package export writes a ParsingResult as JSON, CSV or an XLSX workbook.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dvloznov/finance-parser/internal/domain"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	transactionsSheet = "Transactions"
	summarySheet      = "Summary"
)

var columns = []string{
	"Date", "Merchant", "Description", "Amount", "Direction",
	"Category", "Subcategory", "Type", "Source", "Needs Review",
}

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("ParseFormat: unknown format %q (want json, csv or xlsx)", s)
	}
}

// Write encodes result in the given format.
func Write(w io.Writer, format Format, result *domain.ParsingResult) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, result)
	case FormatCSV:
		return WriteCSV(w, result)
	case FormatXLSX:
		return WriteXLSX(w, result)
	default:
		return fmt.Errorf("Write: unknown format %q", format)
	}
}

// WriteJSON writes the result as indented JSON.
func WriteJSON(w io.Writer, result *domain.ParsingResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("WriteJSON: %w", err)
	}
	return nil
}

// WriteCSV writes metadata as leading "# key,value" rows, a blank row, then the
// transaction table.
func WriteCSV(w io.Writer, result *domain.ParsingResult) error {
	cw := csv.NewWriter(w)

	for _, kv := range summaryRows(result) {
		if err := cw.Write([]string{"# " + kv[0], kv[1]}); err != nil {
			return fmt.Errorf("WriteCSV: %w", err)
		}
	}
	if err := cw.Write(nil); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	for _, tx := range result.Transactions {
		if err := cw.Write(transactionRow(tx)); err != nil {
			return fmt.Errorf("WriteCSV: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCSV: flush: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with a Transactions sheet and a Summary sheet.
func WriteXLSX(w io.Writer, result *domain.ParsingResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return fmt.Errorf("WriteXLSX: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("WriteXLSX: add summary sheet: %w", err)
	}

	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(transactionsSheet, cell, h)
	}

	for r, tx := range result.Transactions {
		row := r + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(transactionsSheet, cell, v)
		}
		write(1, tx.Date)
		write(2, tx.Merchant)
		write(3, tx.Description)
		write(4, tx.Amount.InexactFloat64())
		write(5, string(tx.Direction))
		write(6, tx.Category)
		write(7, tx.Subcategory)
		write(8, tx.Type)
		write(9, string(tx.Source))
		write(10, tx.NeedsAmountReview)
	}

	_ = f.SetColWidth(transactionsSheet, "A", "A", 12)
	_ = f.SetColWidth(transactionsSheet, "B", "B", 28)
	_ = f.SetColWidth(transactionsSheet, "C", "C", 48)
	_ = f.SetColWidth(transactionsSheet, "D", "E", 12)
	_ = f.SetColWidth(transactionsSheet, "F", "I", 18)

	for i, kv := range summaryRows(result) {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+1), kv[0])
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), kv[1])
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 20)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("WriteXLSX: write: %w", err)
	}
	return nil
}

func summaryRows(result *domain.ParsingResult) [][2]string {
	md := result.Metadata
	return [][2]string{
		{"confidence", strconv.FormatFloat(result.Confidence, 'f', 2, 64)},
		{"total_amount", md.TotalAmount.StringFixed(2)},
		{"transaction_count", strconv.Itoa(md.TransactionCount)},
		{"date_start", md.DateRange.Start},
		{"date_end", md.DateRange.End},
		{"currency", md.Currency},
	}
}

func transactionRow(tx domain.Transaction) []string {
	return []string{
		tx.Date,
		tx.Merchant,
		tx.Description,
		tx.Amount.StringFixed(2),
		string(tx.Direction),
		tx.Category,
		tx.Subcategory,
		tx.Type,
		string(tx.Source),
		strconv.FormatBool(tx.NeedsAmountReview),
	}
}
