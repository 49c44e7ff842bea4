package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/schoolcore/gradebook-api/internal/models"
	appErrors "github.com/schoolcore/gradebook-api/pkg/errors"
	"github.com/schoolcore/gradebook-api/pkg/export"
)

type classSheetProvider interface {
	ClassResults(ctx context.Context, claims models.TenantClaims, classID string) (*models.ClassResultSheet, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// Export formats accepted by the export endpoint.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// ExportFile is a rendered export ready to stream to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders class result sheets into downloadable files.
type ExportService struct {
	results classSheetProvider
	csv     csvRenderer
	pdf     pdfRenderer
	enabled bool
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(results classSheetProvider, enabled bool, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{results: results, csv: csv, pdf: pdf, enabled: enabled, logger: logger}
}

// ClassSheet renders the class result sheet in the requested format.
func (s *ExportService) ClassSheet(ctx context.Context, claims models.TenantClaims, classID, format string) (*ExportFile, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}

	sheet, err := s.results.ClassResults(ctx, claims, classID)
	if err != nil {
		return nil, err
	}
	dataset := sheetDataset(sheet)

	switch format {
	case FormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, internalErr(err, "render csv export")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("class-results-%s.csv", classID),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case FormatPDF:
		data, err := s.pdf.Render(dataset, fmt.Sprintf("Class Results %s", classID))
		if err != nil {
			return nil, internalErr(err, "render pdf export")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("class-results-%s.pdf", classID),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// sheetDataset flattens a result sheet into a tabular dataset: one row per
// student, one column per subject seen in the sheet.
func sheetDataset(sheet *models.ClassResultSheet) export.Dataset {
	headers := []string{"Student"}
	seen := make(map[string]struct{})
	for _, row := range sheet.Students {
		for _, cell := range row.Subjects {
			if _, ok := seen[cell.SubjectName]; !ok {
				seen[cell.SubjectName] = struct{}{}
				headers = append(headers, cell.SubjectName)
			}
		}
	}

	rows := make([]map[string]string, 0, len(sheet.Students))
	for _, student := range sheet.Students {
		row := map[string]string{"Student": student.StudentName}
		for _, cell := range student.Subjects {
			value := "-"
			if cell.TotalScore != nil {
				value = strconv.FormatFloat(*cell.TotalScore, 'f', 2, 64)
				if cell.LetterGrade != nil {
					value = fmt.Sprintf("%s (%s)", value, *cell.LetterGrade)
				}
			}
			row[cell.SubjectName] = value
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
