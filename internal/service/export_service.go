package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AHSANooo/Clashes-Detector/internal/dto"
	"github.com/AHSANooo/Clashes-Detector/internal/models"
	"github.com/AHSANooo/Clashes-Detector/pkg/export"
	appErrors "github.com/AHSANooo/Clashes-Detector/pkg/errors"
)

// Export formats accepted by ExportService.Export.
const (
	// ExportFormatCSV renders a comma separated table.
	ExportFormatCSV = "csv"
	// ExportFormatPDF renders a printable weekly table.
	ExportFormatPDF = "pdf"

	defaultExportTitle = "Weekly schedule"
)

var exportHeaders = []string{"Day", "Time", "Course", "Section", "Kind", "Room"}

// tableRenderer turns an export table into file bytes.
type tableRenderer interface {
	Render(table export.Table) ([]byte, error)
}

// exportSessionSource resolves the sessions an export request refers to.
type exportSessionSource interface {
	Proposal(id string) (models.ScheduleAssignment, bool)
	SessionsFromInput(inputs []dto.SessionInput) []models.Session
}

// ExportService renders schedules as CSV or PDF downloads.
type ExportService struct {
	sessions  exportSessionSource
	csv       tableRenderer
	pdf       tableRenderer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers use the pkg/export defaults.
func NewExportService(sessions exportSessionSource, validate *validator.Validate, logger *zap.Logger, csv, pdf tableRenderer) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{sessions: sessions, csv: csv, pdf: pdf, validator: validate, logger: logger, now: time.Now}
}

// Export renders the proposal or sessions named by req.
func (s *ExportService) Export(ctx context.Context, format string, req dto.ExportRequest) (*dto.ExportFile, error) {
	if err := s.validator.StructCtx(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}

	var sessions []models.Session
	if req.ProposalID != "" {
		assignment, ok := s.sessions.Proposal(req.ProposalID)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("proposal %q not found or expired", req.ProposalID))
		}
		sessions = assignment.Sessions
	} else {
		sessions = s.sessions.SessionsFromInput(req.Sessions)
	}
	return s.Render(sessions, format, req.Title)
}

// Render turns sessions into a file of the requested format.
func (s *ExportService) Render(sessions []models.Session, format, title string) (*dto.ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if title == "" {
		title = defaultExportTitle
	}
	table := export.Table{Title: title, Headers: exportHeaders, Rows: sessionRows(sessions)}

	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(table)
		contentType = "text/csv; charset=utf-8"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(table)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.logger.Error("export render failed", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &dto.ExportFile{
		Filename:    fmt.Sprintf("schedule-%s.%s", s.now().UTC().Format("20060102-150405"), format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

func sessionRows(sessions []models.Session) [][]string {
	ordered := append([]models.Session(nil), sessions...)
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := models.WeekdayIndex(ordered[i].Day), models.WeekdayIndex(ordered[j].Day)
		if di != dj {
			return di < dj
		}
		return ordered[i].StartMinutes < ordered[j].StartMinutes
	})

	rows := make([][]string, 0, len(ordered))
	for _, session := range ordered {
		rows = append(rows, []string{
			session.Day,
			session.TimeSlot,
			session.CourseName,
			session.Section,
			string(session.Kind),
			session.Room,
		})
	}
	return rows
}
