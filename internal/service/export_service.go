package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/dto"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
	appErrors "github.com/noah-isme/tennis-lesson-scheduler/pkg/errors"
	"github.com/noah-isme/tennis-lesson-scheduler/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var exportHeaders = []string{"Coach", "Day", "Slot", "Time", "Student"}

type scheduleDetailReader interface {
	Get(ctx context.Context, scheduleID string) (*dto.LessonScheduleDetail, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	PDFTitle string
}

// ExportResult is a rendered timetable ready to be streamed.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders stored schedules as CSV or PDF tables.
type ExportService struct {
	schedules scheduleDetailReader
	coaches   coachLister
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(schedules scheduleDetailReader, coaches coachLister, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PDFTitle == "" {
		cfg.PDFTitle = "Weekly Tennis Lessons"
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		schedules: schedules,
		coaches:   coaches,
		csv:       csv,
		pdf:       pdf,
		logger:    logger,
		cfg:       cfg,
	}
}

// Export renders one stored schedule version. An empty format means CSV.
func (s *ExportService) Export(ctx context.Context, scheduleID string, query dto.ExportQuery) (*ExportResult, error) {
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", query.Format))
	}

	detail, err := s.schedules.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	coaches, err := s.coaches.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coaches")
	}

	dataset := BuildTimetableDataset(detail.Entries, coaches)
	filename := fmt.Sprintf("lessons_%s_v%d.%s", sanitizeFilename(detail.Schedule.TermID), detail.Schedule.Version, format)

	var (
		payload     []byte
		contentType string
	)
	switch format {
	case ExportFormatPDF:
		title := fmt.Sprintf("%s %s v%d", s.cfg.PDFTitle, detail.Schedule.TermID, detail.Schedule.Version)
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Debug("schedule exported",
		zap.String("schedule_id", scheduleID),
		zap.String("format", format),
		zap.Int("rows", len(dataset.Rows)),
	)
	return &ExportResult{Filename: filename, ContentType: contentType, Data: payload}, nil
}

// BuildTimetableDataset lays out one row per entry ordered by coach name then grid position.
func BuildTimetableDataset(entries []models.ScheduleEntry, coaches []models.Coach) export.Dataset {
	names := make(map[string]string, len(coaches))
	for _, coach := range coaches {
		names[coach.ID] = coach.Name
	}
	coachName := func(id string) string {
		if name, ok := names[id]; ok && name != "" {
			return name
		}
		return id
	}

	sorted := append([]models.ScheduleEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if na, nb := coachName(a.CoachID), coachName(b.CoachID); na != nb {
			return na < nb
		}
		if a.Day.Index() != b.Day.Index() {
			return a.Day.Index() < b.Day.Index()
		}
		if sa, sb := slotIndex(a.Slot), slotIndex(b.Slot); sa != sb {
			return sa < sb
		}
		return a.StudentName < b.StudentName
	})

	rows := make([]map[string]string, 0, len(sorted))
	for _, entry := range sorted {
		rows = append(rows, map[string]string{
			"Coach":   coachName(entry.CoachID),
			"Day":     entry.Day.Label(),
			"Slot":    entry.Slot.Label(),
			"Time":    entry.Slot.TimeLabel(),
			"Student": entry.StudentName,
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}

func slotIndex(slot models.Slot) int {
	for i, s := range models.DailySlots {
		if s == slot {
			return i
		}
	}
	return len(models.DailySlots)
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
