package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rsvp-table/internal/models"
	"rsvp-table/internal/summary"
)

func sampleRows() []models.Row {
	return []models.Row{
		{InvitationID: 1, GuestID: 1, FirstName: "Dana", LastName: "Levi", Gender: models.GenderFemale,
			Status: models.StatusAttending, Channel: "WhatsApp", DateInvitedISO: "2024-06-12", DateRespondedISO: "2024-06-13"},
		{InvitationID: 2, GuestID: 2, FirstName: "Avi", Gender: models.GenderMale, Status: models.StatusNotSent, Notes: "call, later"},
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "dana___avi_s_wedding_guests.xlsx", FileName("Dana & Avi's Wedding", FormatExcel))
	assert.Equal(t, "event_guests.csv", FileName("!!!", FormatCSV))
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "a_b_c", SheetName("a/b:c"))
	assert.Len(t, []rune(SheetName("a very long wedding name that keeps going")), 31)
	assert.Equal(t, "Guests", SheetName(""))
}

func TestCSVOneLinePerRow(t *testing.T) {
	data, err := CSV(sampleRows())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Headers, records[0])
	assert.Equal(t, []string{"Levi", "Dana", "Female", "Yes", "WhatsApp", "2024-06-12", "Attending", "2024-06-13", ""}, records[1])
	assert.Equal(t, "No", records[2][3])
	assert.Equal(t, "call, later", records[2][8])
}

func TestXLSX(t *testing.T) {
	rows := sampleRows()
	s := summary.Compute(rows, 10)

	data, _, ctype, err := Export(FormatExcel, models.Event{Name: "Wedding"}, rows, s)
	require.NoError(t, err)
	assert.Contains(t, ctype, "spreadsheetml")

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Wedding", "Summary"}, f.GetSheetList())

	got, err := f.GetRows("Wedding")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Last Name", got[0][0])
	assert.Equal(t, "Dana", got[1][1])

	sum, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"Total", "1", "0", "0", "1", "1"}, sum[3])
	assert.Equal(t, "1/10", sum[5][1])
}

func TestPDF(t *testing.T) {
	rows := sampleRows()
	data, name, _, err := Export(FormatPDF, models.Event{Name: "Wedding"}, rows, summary.Compute(rows, 0))
	require.NoError(t, err)
	assert.Equal(t, "wedding_guests.pdf", name)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestUnsupportedFormat(t *testing.T) {
	_, _, _, err := Export("docx", models.Event{}, nil, summary.Summary{})
	assert.Error(t, err)
}
