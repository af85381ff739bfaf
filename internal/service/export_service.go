package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"reporthub/internal/models"
)

const (
	// ExportSheetName is the worksheet holding the exported reports
	ExportSheetName = "Informes Arrayanes"
	// DefaultExportName prefixes the download filename
	DefaultExportName = "informes_arrayanes"
)

type exportColumn struct {
	header string
	width  float64
	value  func(r *models.ServiceReport) interface{}
}

var exportColumns = []exportColumn{
	{"Nombre", 30, func(r *models.ServiceReport) interface{} { return r.FullName }},
	{"Rol", 18, func(r *models.ServiceReport) interface{} { return r.Role.Label() }},
	{"Participó", 12, func(r *models.ServiceReport) interface{} {
		if r.Participated {
			return "Sí"
		}
		return "No"
	}},
	{"Horas", 10, func(r *models.ServiceReport) interface{} { return optionalInt(r.Hours) }},
	{"Cursos Bíblicos", 15, func(r *models.ServiceReport) interface{} { return optionalInt(r.BibleCourses) }},
	{"Superintendente", 25, func(r *models.ServiceReport) interface{} { return r.SuperintendentName }},
	{"Notas", 35, func(r *models.ServiceReport) interface{} { return r.Notes }},
}

func optionalInt(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

type reportLister interface {
	List(ctx context.Context, filter models.ReportFilter) ([]models.ServiceReport, error)
}

// ExportService renders service reports as an xlsx workbook
type ExportService struct {
	reports reportLister
	now     func() time.Time
}

// NewExportService creates a new export service
func NewExportService(reports reportLister) *ExportService {
	return &ExportService{reports: reports, now: time.Now}
}

// Filename returns "{name}_{YYYY-MM-DD}.xlsx" for today
func (s *ExportService) Filename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultExportName
	}
	return fmt.Sprintf("%s_%s.xlsx", name, s.now().Format("2006-01-02"))
}

// Export writes the reports matching filter to w
func (s *ExportService) Export(ctx context.Context, w io.Writer, filter models.ReportFilter) (int, error) {
	reports, err := s.reports.List(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if err := WriteWorkbook(w, reports); err != nil {
		return 0, err
	}
	return len(reports), nil
}

// WriteWorkbook writes reports as a single-sheet workbook with a header row
func WriteWorkbook(w io.Writer, reports []models.ServiceReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(exportColumns))
	for i, col := range exportColumns {
		header[i] = col.header
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(ExportSheetName, name, name, col.width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	if err := f.SetSheetRow(ExportSheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, _ := excelize.ColumnNumberToName(len(exportColumns))
	if err := f.SetCellStyle(ExportSheetName, "A1", last+"1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i := range reports {
		row := make([]interface{}, len(exportColumns))
		for j, col := range exportColumns {
			row[j] = col.value(&reports[i])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ExportSheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write report %d: %w", reports[i].ID, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
