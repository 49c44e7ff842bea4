package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolcore/gradebook-api/internal/models"
)

type mockSheetProvider struct {
	sheet *models.ClassResultSheet
}

func (m *mockSheetProvider) ClassResults(ctx context.Context, claims models.TenantClaims, classID string) (*models.ClassResultSheet, error) {
	return m.sheet, nil
}

func sampleSheet() *models.ClassResultSheet {
	letterA := "A"
	return &models.ClassResultSheet{
		ClassID:   "class1",
		SessionID: "sess1",
		TermID:    "term1",
		Students: []models.StudentResultRow{
			{StudentID: "stu1", StudentName: "Ada Obi", Subjects: []models.ClassResultCell{
				{SubjectID: "sub1", SubjectName: "Mathematics", TotalScore: floatPtr(85), LetterGrade: &letterA},
			}},
			{StudentID: "stu2", StudentName: "Ben Eze"},
		},
	}
}

func TestExportServiceClassSheetCSV(t *testing.T) {
	svc := NewExportService(&mockSheetProvider{sheet: sampleSheet()}, true, zap.NewNop(), nil, nil)

	file, err := svc.ClassSheet(context.Background(), teacherClaims(), "class1", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "class-results-class1.csv", file.Filename)

	content := string(file.Data)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Student,Mathematics", lines[0])
	assert.Contains(t, lines[1], "85.00 (A)")
	assert.Contains(t, lines[2], "Ben Eze")
}

func TestExportServiceClassSheetPDF(t *testing.T) {
	svc := NewExportService(&mockSheetProvider{sheet: sampleSheet()}, true, zap.NewNop(), nil, nil)

	file, err := svc.ClassSheet(context.Background(), teacherClaims(), "class1", FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.NotEmpty(t, file.Data)
}

func TestExportServiceDisabled(t *testing.T) {
	svc := NewExportService(&mockSheetProvider{sheet: sampleSheet()}, false, zap.NewNop(), nil, nil)

	_, err := svc.ClassSheet(context.Background(), teacherClaims(), "class1", FormatCSV)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestExportServiceUnknownFormat(t *testing.T) {
	svc := NewExportService(&mockSheetProvider{sheet: sampleSheet()}, true, zap.NewNop(), nil, nil)

	_, err := svc.ClassSheet(context.Background(), teacherClaims(), "class1", "xlsx")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", errCode(t, err))
}
