// Package xlsximport converts uploaded spreadsheets into the engine's batch
// input rows. It is glue only: every semantic decision (registration,
// valuation, costing) happens in the workflow package.
package xlsximport

import (
	"fmt"
	"io"
	"strings"

	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"bitbucket.org/mmdatafocus/factory_backend/workflow"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// RowError is one spreadsheet row that failed to parse. Row numbers are
// 1-based as shown in the sheet.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

func openRows(r io.Reader, wantHeader []string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("unable to open xlsx file: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("xlsx file has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet %q: %v", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	header := rows[0]
	for i, want := range wantHeader {
		if i >= len(header) || !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return nil, fmt.Errorf("sheet %q: column %d must be %q", sheet, i+1, want)
		}
	}
	return rows[1:], nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func cellDecimal(row []string, i int) (decimal.Decimal, error) {
	v := cell(row, i)
	if v == "" {
		return decimal.Zero, nil
	}
	return utils.ParseDecimal(v)
}

// ReadPurchaseSheet parses a purchase upload. Expected columns:
// item_code, name, category, unit, quantity, unit_price, other_fees.
func ReadPurchaseSheet(r io.Reader) ([]workflow.PurchaseLine, []RowError, error) {
	rows, err := openRows(r, []string{"item_code", "name", "category", "unit", "quantity", "unit_price", "other_fees"})
	if err != nil {
		return nil, nil, err
	}

	var lines []workflow.PurchaseLine
	var rowErrs []RowError
	for idx, row := range rows {
		rowNum := idx + 2
		line := workflow.PurchaseLine{
			ItemCode: cell(row, 0),
			Name:     cell(row, 1),
			Category: cell(row, 2),
			Unit:     cell(row, 3),
		}
		if line.ItemCode == "" {
			continue // blank row
		}
		var parseErr error
		if line.Quantity, parseErr = cellDecimal(row, 4); parseErr == nil {
			if line.UnitPrice, parseErr = cellDecimal(row, 5); parseErr == nil {
				line.OtherFees, parseErr = cellDecimal(row, 6)
			}
		}
		if parseErr != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Error: parseErr.Error()})
			continue
		}
		lines = append(lines, line)
	}
	return lines, rowErrs, nil
}

// ReadBOMSheet parses a BOM upload. Expected columns:
// product_code, material_code, required_qty, unit, notes.
func ReadBOMSheet(r io.Reader) ([]workflow.BOMLineInput, []RowError, error) {
	rows, err := openRows(r, []string{"product_code", "material_code", "required_qty", "unit", "notes"})
	if err != nil {
		return nil, nil, err
	}

	var lines []workflow.BOMLineInput
	var rowErrs []RowError
	for idx, row := range rows {
		rowNum := idx + 2
		line := workflow.BOMLineInput{
			ProductCode:  cell(row, 0),
			MaterialCode: cell(row, 1),
			Unit:         cell(row, 3),
			Notes:        cell(row, 4),
		}
		if line.ProductCode == "" && line.MaterialCode == "" {
			continue
		}
		qty, parseErr := cellDecimal(row, 2)
		if parseErr != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Error: parseErr.Error()})
			continue
		}
		line.RequiredQty = qty
		lines = append(lines, line)
	}
	return lines, rowErrs, nil
}

// ReadSalesSheet parses a sales-order upload. Expected columns:
// order_id, customer, date, product_code, product_name, quantity, sale_price.
func ReadSalesSheet(r io.Reader) ([]workflow.SalesLine, []RowError, error) {
	rows, err := openRows(r, []string{"order_id", "customer", "date", "product_code", "product_name", "quantity", "sale_price"})
	if err != nil {
		return nil, nil, err
	}

	var lines []workflow.SalesLine
	var rowErrs []RowError
	for idx, row := range rows {
		rowNum := idx + 2
		line := workflow.SalesLine{
			OrderID:     cell(row, 0),
			Customer:    cell(row, 1),
			Date:        cell(row, 2),
			ProductCode: cell(row, 3),
			ProductName: cell(row, 4),
		}
		if line.OrderID == "" {
			continue
		}
		var parseErr error
		if line.Quantity, parseErr = cellDecimal(row, 5); parseErr == nil {
			line.SalePrice, parseErr = cellDecimal(row, 6)
		}
		if parseErr != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Error: parseErr.Error()})
			continue
		}
		lines = append(lines, line)
	}
	return lines, rowErrs, nil
}
