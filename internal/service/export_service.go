package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-finance-mirror/internal/dto"
	"github.com/noah-isme/sma-finance-mirror/pkg/export"
)

type staffLogSource interface {
	Logs(ctx context.Context, query dto.StaffLogQuery) (*dto.StaffLogReport, error)
}

type outstandingSource interface {
	PreCalculated(ctx context.Context) (*dto.OutstandingList, error)
	Computed(ctx context.Context) (*dto.OutstandingList, bool, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title, subtitle string) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders staff logs and outstanding lists into files.
type ExportService struct {
	staff       staffLogSource
	outstanding outstandingSource
	csv         csvRenderer
	pdf         pdfRenderer
	logger      *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(staff staffLogSource, outstanding outstandingSource, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{staff: staff, outstanding: outstanding, csv: csv, pdf: pdf, logger: logger}
}

var staffLogHeaders = []string{"Date", "Staff Name", "Role", "Time In", "Time Out", "Duties", "Notes"}

// StaffLogCSV renders the filtered logs of one day.
func (s *ExportService) StaffLogCSV(ctx context.Context, query dto.StaffLogQuery) (*ExportFile, error) {
	report, err := s.staff.Logs(ctx, query)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]string, 0, len(report.Logs))
	for _, log := range report.Logs {
		rows = append(rows, map[string]string{
			"Date":       log.Date,
			"Staff Name": log.StaffName,
			"Role":       log.Role,
			"Time In":    log.TimeIn,
			"Time Out":   log.TimeOut,
			"Duties":     log.Duties,
			"Notes":      log.Notes,
		})
	}
	payload, err := s.csv.Render(export.Dataset{Headers: staffLogHeaders, Rows: rows})
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("staff-log-%s.csv", sanitizeFilename(report.Date)),
		ContentType: "text/csv",
		Payload:     payload,
	}, nil
}

var outstandingHeaders = []string{"Student", "Class", "Class Group", "Parent Contact", "Transport", "Outstanding"}

// OutstandingPDF renders the pre-calculated or computed outstanding list.
func (s *ExportService) OutstandingPDF(ctx context.Context, source string) (*ExportFile, error) {
	var (
		list *dto.OutstandingList
		err  error
	)
	switch source {
	case "", OutstandingSourcePreCalculated:
		list, err = s.outstanding.PreCalculated(ctx)
	case OutstandingSourceComputed:
		list, _, err = s.outstanding.Computed(ctx)
	default:
		return nil, fmt.Errorf("unsupported outstanding source %s", source)
	}
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]string, 0, len(list.Entries))
	for _, entry := range list.Entries {
		transport := "No"
		if entry.HasTransport {
			transport = "Yes"
		}
		rows = append(rows, map[string]string{
			"Student":        entry.FullName,
			"Class":          entry.ClassName,
			"Class Group":    entry.ClassGroup,
			"Parent Contact": entry.ParentContact,
			"Transport":      transport,
			"Outstanding":    entry.Amount.StringFixed(2),
		})
	}
	dataset := export.Dataset{
		Headers: outstandingHeaders,
		Rows:    rows,
		Totals: map[string]string{
			"Student":     fmt.Sprintf("Total (%d students)", list.Count),
			"Outstanding": list.Total.StringFixed(2),
		},
		Numeric: map[string]bool{"Outstanding": true},
	}
	subtitle := fmt.Sprintf("Source: %s, billing cycle: %s", list.Source, list.BillingCycle)
	payload, err := s.pdf.Render(dataset, "Outstanding Balances", subtitle)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("outstanding export rendered", zap.String("source", list.Source), zap.Int("rows", len(rows)))
	return &ExportFile{
		Filename:    fmt.Sprintf("outstanding-%s.pdf", sanitizeFilename(list.Source)),
		ContentType: "application/pdf",
		Payload:     payload,
	}, nil
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
