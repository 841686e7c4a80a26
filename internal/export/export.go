// Package export writes the invitation table of an event as XLSX, PDF or CSV.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"rsvp-table/internal/models"
	"rsvp-table/internal/summary"
)

// Supported formats
const (
	FormatExcel = "xlsx"
	FormatPDF   = "pdf"
	FormatCSV   = "csv"
)

// Headers of the guest list, in column order
var Headers = []string{
	"Last Name", "First Name", "Gender", "Sent", "Channel",
	"Invited On", "Status", "Responded On", "Inv. Notes",
}

var (
	sheetUnsafe = regexp.MustCompile(`[/\\*?\[\]:]`)
	fileUnsafe  = regexp.MustCompile(`[^\w\-]`)
)

// SheetName makes an event name usable as a worksheet name
func SheetName(name string) string {
	name = sheetUnsafe.ReplaceAllString(name, "_")
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	if name == "" {
		name = "Guests"
	}
	return name
}

// FileName builds "<event>_guests.<ext>" from an event name
func FileName(eventName, ext string) string {
	safe := strings.ToLower(strings.Trim(fileUnsafe.ReplaceAllString(eventName, "_"), "_"))
	if safe == "" {
		safe = "event"
	}
	return fmt.Sprintf("%s_guests.%s", safe, ext)
}

// Record is the exported line of one row
func Record(r models.Row) []string {
	sent := "No"
	if r.Sent() {
		sent = "Yes"
	}
	return []string{
		r.LastName,
		r.FirstName,
		string(r.Gender),
		sent,
		r.Channel,
		r.DateInvitedISO,
		string(r.Status),
		r.DateRespondedISO,
		r.Notes,
	}
}

// Export renders rows in format and returns the data, file name and content type
func Export(format string, ev models.Event, rows []models.Row, s summary.Summary) ([]byte, string, string, error) {
	switch format {
	case FormatExcel:
		data, err := XLSX(ev, rows, s)
		if err != nil {
			return nil, "", "", err
		}
		return data, FileName(ev.Name, FormatExcel), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatPDF:
		data, err := PDF(ev, rows, s)
		if err != nil {
			return nil, "", "", err
		}
		return data, FileName(ev.Name, FormatPDF), "application/pdf", nil

	case FormatCSV:
		data, err := CSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, FileName(ev.Name, FormatCSV), "text/csv", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported export format: %s", format)
	}
}

// CSV writes a header line and one line per row
func CSV(rows []models.Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Headers); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(Record(r)); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// XLSX writes the guest list sheet plus a Summary sheet
func XLSX(ev models.Event, rows []models.Row, s summary.Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(ev.Name)
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(index)

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2C3E50"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	if err := writeRow(f, sheet, 1, Headers); err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(Headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, header); err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(Headers))
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return nil, err
	}

	for i, r := range rows {
		if err := writeRow(f, sheet, i+2, Record(r)); err != nil {
			return nil, err
		}
	}

	if err := writeSummarySheet(f, s, header); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, s summary.Summary, header int) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"", "Attending", "Pending", "Declined", "Not Sent", "Invited"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "F1", header); err != nil {
		return err
	}

	buckets := []struct {
		name string
		c    summary.Counts
	}{
		{"Male", s.Male},
		{"Female", s.Female},
		{"Total", s.Total},
	}
	for i, b := range buckets {
		row := i + 2
		values := []any{b.name, b.c.Attending, b.c.Pending, b.c.Declined, b.c.NotSent, b.c.Invited}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if s.Target.Target > 0 {
		if err := f.SetCellValue(sheet, "A6", "Target"); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, "B6", s.Target.Label()); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "F", 12)
}

// PDF writes a landscape A4 table of the guest list with a summary line
func PDF(ev models.Event, rows []models.Row, s summary.Summary) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(ev.Name+" - "+s.Heading()))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	line := fmt.Sprintf("Attending %d, Pending %d, Declined %d, Not Sent %d, %s",
		s.Total.Attending, s.Total.Pending, s.Total.Declined, s.Total.NotSent, s.Breakdown.Label())
	if s.Target.Target > 0 {
		line += fmt.Sprintf(", target %d/%d", s.Target.Attending, s.Target.Target)
	}
	pdf.Cell(0, 8, line)
	pdf.Ln(10)

	widths := []float64{35, 30, 20, 15, 25, 28, 25, 28, 71}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range Headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, r := range rows {
		for i, v := range Record(r) {
			align := "L"
			if i >= 2 && i <= 7 {
				align = "C"
			}
			pdf.CellFormat(widths[i], 6, tr(v), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
