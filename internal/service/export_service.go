package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dhakalu/telehealth-web-app-sub001/internal/timeline"
	"github.com/dhakalu/telehealth-web-app-sub001/pkg/export"
	appErrors "github.com/dhakalu/telehealth-web-app-sub001/pkg/errors"
)

type weekTimelineProvider interface {
	WeekTimeline(ctx context.Context, scheduleID string, start time.Time, q TimelineQuery) (*timeline.WeekLayout, error)
}

// ExportService renders week timelines as downloadable documents.
type ExportService struct {
	timelines weekTimelineProvider
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(timelines weekTimelineProvider, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		timelines: timelines,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
	}
}

// WeekCSV renders the week's events as a flat CSV table, one row per event.
func (s *ExportService) WeekCSV(ctx context.Context, scheduleID string, start time.Time) ([]byte, string, error) {
	week, err := s.timelines.WeekTimeline(ctx, scheduleID, start, TimelineQuery{})
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"date", "category", "title", "start", "end"},
	}
	for _, day := range week.Days {
		for _, box := range day.Events {
			dataset.Rows = append(dataset.Rows, []string{
				day.Date,
				string(box.Category),
				box.Title,
				box.Start.Format("15:04"),
				endClock(day.Date, box.End),
			})
		}
	}

	raw, err := s.csv.Render(dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return raw, fmt.Sprintf("week-%s.csv", week.Start), nil
}

// WeekPDF renders the week as a time-proportional calendar grid.
func (s *ExportService) WeekPDF(ctx context.Context, scheduleID string, start time.Time) ([]byte, string, error) {
	week, err := s.timelines.WeekTimeline(ctx, scheduleID, start, TimelineQuery{})
	if err != nil {
		return nil, "", err
	}

	grid := export.WeekGrid{
		Title:      fmt.Sprintf("Week of %s", week.Start),
		GridHeight: week.HourHeight * timeline.HoursInDay,
		Columns:    make([]export.WeekGridColumn, len(week.Days)),
	}
	for i, day := range week.Days {
		col := export.WeekGridColumn{Label: columnLabel(day.Date)}
		for _, box := range day.Events {
			label := box.Title
			if box.Category == timeline.CategoryAppointment {
				label = fmt.Sprintf("%s %s", box.Start.Format("15:04"), box.Title)
			}
			col.Blocks = append(col.Blocks, export.WeekGridBlock{
				Label:  label,
				Top:    box.Top,
				Height: box.Height,
				Shaded: box.Category == timeline.CategoryNonWorking,
			})
		}
		grid.Columns[i] = col
	}

	raw, err := s.pdf.RenderWeekGrid(grid)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return raw, fmt.Sprintf("week-%s.pdf", week.Start), nil
}

// endClock formats an event's end instant on its column's date. An end that
// spills past the date is the bottom of the column, shown as 24:00.
func endClock(date string, end time.Time) string {
	if end.Format("2006-01-02") != date && end.Format("15:04") == "00:00" {
		return "24:00"
	}
	return end.Format("15:04")
}

func columnLabel(date string) string {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return parsed.Format("Mon 01/02")
}
