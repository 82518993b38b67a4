package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"

	"bank-ledger/models"
)

// statementPDF renders a statement as a PDF table and streams it to the
// response.
func (h *Handler) statementPDF(w http.ResponseWriter, customerID string, period time.Time, txs []models.Transaction) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, fmt.Sprintf("Statement %s - %s", customerID, period.Format("2006-01")))

	pdf.Ln(10)

	// Table header
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(60, 7, "Transaction")
	pdf.Cell(25, 7, "Type")
	pdf.Cell(30, 7, "Amount")
	pdf.Cell(25, 7, "Method")
	pdf.Cell(45, 7, "Timestamp")
	pdf.Ln(7)

	// Table rows
	pdf.SetFont("Arial", "", 12)
	for _, t := range txs {
		pdf.CellFormat(60, 7, t.ID, "1", 0, "", false, 0, "")
		pdf.CellFormat(25, 7, string(t.Type), "1", 0, "", false, 0, "")
		pdf.CellFormat(30, 7, t.Amount.StringFixed(2), "1", 0, "", false, 0, "")
		pdf.CellFormat(25, 7, t.Method, "1", 0, "", false, 0, "")
		pdf.CellFormat(45, 7, t.Timestamp.Format("2006-01-02 15:04:05"), "1", 0, "", false, 0, "")
		pdf.Ln(7)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="statement.pdf"`)
	if err := pdf.Output(w); err != nil {
		h.logger.Error("write pdf statement", zap.Error(err))
	}
}

// statementXLSX renders a statement as an XLSX workbook and streams it to
// the response.
func (h *Handler) statementXLSX(w http.ResponseWriter, customerID string, period time.Time, txs []models.Transaction) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Statement " + period.Format("2006-01"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Header row
	row := sheet.AddRow()
	row.AddCell().SetValue("Transaction")
	row.AddCell().SetValue("Account")
	row.AddCell().SetValue("Type")
	row.AddCell().SetValue("Amount")
	row.AddCell().SetValue("Method")
	row.AddCell().SetValue("Timestamp")

	// Data rows
	for _, t := range txs {
		row = sheet.AddRow()
		row.AddCell().SetValue(t.ID)
		row.AddCell().SetValue(t.AccountID)
		row.AddCell().SetValue(string(t.Type))
		row.AddCell().SetValue(t.Amount.StringFixed(2))
		row.AddCell().SetValue(t.Method)
		row.AddCell().SetValue(t.Timestamp.Format("2006-01-02 15:04:05"))
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="statement.xlsx"`)
	if err := file.Write(w); err != nil {
		h.logger.Error("write xlsx statement", zap.Error(err))
	}
}
