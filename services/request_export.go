package services

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

var requestExportHeaders = []string{
	"ID", "Request Type", "Student ID", "Name (Arabic)", "Name (English)", "Department",
	"Count", "Total Price", "Status", "Notes", "Submitted By", "Email", "Created At",
}

// Export writes the requests in a status to an xlsx workbook.
// It returns the workbook and a suggested file name.
func (q *RequestQuery) Export(ctx context.Context, admin Actor, status string) (*excelize.File, string, error) {
	if err := Authorize(admin, CapabilityReviewRequests); err != nil {
		return nil, "", err
	}

	st, err := parseStatusFilter(status)
	if err != nil {
		return nil, "", err
	}

	requests, err := q.findByStatus(ctx, st)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheet := "Requests"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", NewInternalError("Failed to build export", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, "", NewInternalError("Failed to build export", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &requestExportHeaders); err != nil {
		return nil, "", NewInternalError("Failed to build export", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(requestExportHeaders), 1)
	if err != nil {
		return nil, "", NewInternalError("Failed to build export", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, "", NewInternalError("Failed to build export", err)
	}

	for i := range requests {
		req := &requests[i]
		typeName, submitter, email := "", "", ""
		if req.RequestType != nil {
			typeName = req.RequestType.Name
		}
		if req.User != nil {
			submitter = req.User.Name
			email = req.User.Email
		}

		values := []interface{}{
			req.ID, typeName, req.StudentID, req.StudentNameAr, req.StudentNameEn, req.Department,
			req.Count, req.TotalPrice, string(req.Status), req.Notes, submitter, email,
			req.CreatedAt.Format("2006-01-02 15:04"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", NewInternalError("Failed to build export", err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, "", NewInternalError("Failed to write request row", err)
		}
	}

	widths := []struct {
		from, to string
		width    float64
	}{
		{"A", "A", 8},
		{"B", "F", 24},
		{"J", "L", 28},
	}
	for _, w := range widths {
		if err := f.SetColWidth(sheet, w.from, w.to, w.width); err != nil {
			return nil, "", NewInternalError("Failed to build export", err)
		}
	}

	return f, fmt.Sprintf("student-requests-%s.xlsx", st), nil
}
