package billing

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
)

// RenderReceiptPDF renders a printable receipt for a prepared bill.
func RenderReceiptPDF(bill *Bill, restaurantName string) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, restaurantName, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Bill %s", bill.BillNumber), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Table %d", bill.TableNumber), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("%s %s", bill.BillDate, bill.BillTime), "", 1, "C", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Items", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, line := range bill.Lines {
		pdf.CellFormat(0, 5, fmt.Sprintf("%dx %s", line.Quantity, line.Name), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("  @ %.2f = %.2f", line.Price, line.Amount), "", 1, "L", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Totals", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Subtotal: %.2f", bill.Subtotal), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Tax: %.2f", bill.Tax), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Service: %.2f", bill.ServiceCharge), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total: %.2f", bill.Total), "", 1, "L", false, 0, "")

	if bill.IsPaid {
		pdf.Ln(2)
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 5, "Status: PAID", "", 1, "L", false, 0, "")
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
