// Package csvio reads bulk visitor registrations from CSV and writes visitor exports.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prohmpiriya/residence-gate/internal/domain"
	"github.com/prohmpiriya/residence-gate/internal/service"
)

// Column headers
const (
	ColName          = "Name"
	ColPhone         = "Phone"
	ColEmail         = "Email"
	ColIDNumber      = "ID Number"
	ColPurpose       = "Purpose"
	ColVisitDate     = "Visit Date"
	ColVisitTime     = "Visit Time"
	ColVehicleNumber = "Vehicle Number"
	ColStatus        = "Status"
	ColQRCode        = "QR Code"
	ColCheckIn       = "Check In"
	ColCheckOut      = "Check Out"
)

// RequiredHeaders must all be present in an import file
var RequiredHeaders = []string{ColName, ColPhone, ColEmail, ColIDNumber, ColPurpose, ColVisitDate, ColVisitTime}

// ExportHeaders is the column order of an export
var ExportHeaders = []string{
	ColName, ColPhone, ColEmail, ColIDNumber, ColPurpose, ColVisitDate, ColVisitTime, ColVehicleNumber,
	ColStatus, ColQRCode, ColCheckIn, ColCheckOut,
}

var templateRows = [][]string{
	{ColName, ColPhone, ColEmail, ColIDNumber, ColPurpose, ColVisitDate, ColVisitTime, ColVehicleNumber},
	{"John Doe", "+1234567890", "john@email.com", "DL123456", "Social Visit", "2025-01-25", "14:00", "MH01AB1234"},
	{"Jane Smith", "+1234567891", "jane@email.com", "ID789012", "Business Meeting", "2025-01-25", "15:30", ""},
	{"Mike Johnson", "+1234567892", "mike@email.com", "PP345678", "Maintenance Service", "2025-01-26", "10:00", "MH02CD5678"},
}

// ReadVisitors parses an import file into bulk rows. Row problems are left
// to the visitor service; only an unreadable file or missing headers fail here.
func ReadVisitors(r io.Reader) ([]service.BulkRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		verr := domain.NewValidationError()
		verr.Add("file", "CSV file is empty")
		return nil, verr
	}
	if err != nil {
		return nil, malformed(err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		index[strings.ToLower(h)] = i
	}
	var missing []string
	for _, h := range RequiredHeaders {
		if _, ok := index[strings.ToLower(h)]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		verr := domain.NewValidationError()
		verr.Add("headers", "Missing required columns: "+strings.Join(missing, ", "))
		return nil, verr
	}

	field := func(record []string, col string) string {
		i, ok := index[strings.ToLower(col)]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []service.BulkRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed(err)
		}
		if blank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, service.BulkRow{
			Row:  len(rows) + 1,
			Line: line,
			Registration: &domain.VisitorRegistration{
				Name:          field(record, ColName),
				Phone:         field(record, ColPhone),
				Email:         field(record, ColEmail),
				IDNumber:      field(record, ColIDNumber),
				Purpose:       field(record, ColPurpose),
				VisitDate:     field(record, ColVisitDate),
				VisitTime:     field(record, ColVisitTime),
				VehicleNumber: field(record, ColVehicleNumber),
				Source:        domain.SourceBulkImport,
			},
		})
	}
	return rows, nil
}

// malformed reports parse errors as validation; read failures pass through
func malformed(err error) error {
	var perr *csv.ParseError
	if !errors.As(err, &perr) {
		return fmt.Errorf("failed to read csv: %w", err)
	}
	verr := domain.NewValidationError()
	verr.Add("file", fmt.Sprintf("CSV file is malformed: %v", err))
	return verr
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// WriteVisitors writes an export with a header row
func WriteVisitors(w io.Writer, visitors []*domain.Visitor) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeaders); err != nil {
		return err
	}
	for _, v := range visitors {
		record := []string{
			v.Name, v.Phone, v.Email, v.IDNumber, v.Purpose, v.VisitDate, v.VisitTime, v.VehicleNumber,
			string(v.Status), v.QRCode, formatTime(v.CheckInTime), formatTime(v.CheckOutTime),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTemplate writes a sample import file
func WriteTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(templateRows); err != nil {
		return err
	}
	return cw.Error()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
