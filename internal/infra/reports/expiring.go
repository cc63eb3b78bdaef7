package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/guymor/wasteless/internal/domain/pricing"
	"github.com/guymor/wasteless/internal/domain/products"
)

// ExpiringXLSX renders the expiring-products report as a spreadsheet for the
// store manager.
func ExpiringXLSX(list []products.Product, now time.Time) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Expiring"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Name (HE)", "Name (EN)", "Category", "Base Price", "Current Price", "Discount %", "Quantity", "Unit", "Expiry Date", "Days Left"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, p := range list {
		values := []any{
			p.ID, p.NameHe, p.NameEn, p.Category,
			p.BasePrice, p.CurrentPrice, p.DiscountPercent,
			p.Quantity, p.Unit, p.ExpiryDate.Format("2006-01-02"),
			pricing.DaysToExpiry(p.ExpiryDate, now),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(sheet, "B", "D", 18); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	return buf, nil
}
