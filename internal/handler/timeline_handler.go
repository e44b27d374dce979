package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dhakalu/telehealth-web-app-sub001/internal/service"
	appErrors "github.com/dhakalu/telehealth-web-app-sub001/pkg/errors"
	"github.com/dhakalu/telehealth-web-app-sub001/pkg/response"
)

// TimelineHandler exposes rendered day and week timeline endpoints plus week
// exports.
type TimelineHandler struct {
	timelines *service.TimelineService
	exports   *service.ExportService
}

// NewTimelineHandler constructs handler.
func NewTimelineHandler(timelines *service.TimelineService, exports *service.ExportService) *TimelineHandler {
	return &TimelineHandler{timelines: timelines, exports: exports}
}

// Day godoc
// @Summary Render the day timeline for a schedule
// @Tags Timeline
// @Produce json
// @Param id path string true "Schedule id"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param hourHeight query number false "Pixels per hour row"
// @Param autoScroll query boolean false "Apply scroll to current time"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/timeline/day [get]
func (h *TimelineHandler) Day(c *gin.Context) {
	date, err := parseDateParam(c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	layout, err := h.timelines.DayTimeline(c.Request.Context(), c.Param("id"), date, parseTimelineQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, layout, nil)
}

// Week godoc
// @Summary Render the week timeline for a schedule
// @Tags Timeline
// @Produce json
// @Param id path string true "Schedule id"
// @Param start query string true "First day of the week (YYYY-MM-DD)"
// @Param hourHeight query number false "Pixels per hour row"
// @Param autoScroll query boolean false "Apply scroll to current time"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/timeline/week [get]
func (h *TimelineHandler) Week(c *gin.Context) {
	start, err := parseDateParam(c.Query("start"))
	if err != nil {
		response.Error(c, err)
		return
	}
	layout, err := h.timelines.WeekTimeline(c.Request.Context(), c.Param("id"), start, parseTimelineQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, layout, nil)
}

// ExportWeek godoc
// @Summary Export the week timeline as PDF or CSV
// @Tags Timeline
// @Produce application/pdf
// @Produce text/csv
// @Param id path string true "Schedule id"
// @Param start query string true "First day of the week (YYYY-MM-DD)"
// @Param format query string true "pdf or csv"
// @Success 200 {file} binary
// @Router /schedules/{id}/timeline/week/export [get]
func (h *TimelineHandler) ExportWeek(c *gin.Context) {
	start, err := parseDateParam(c.Query("start"))
	if err != nil {
		response.Error(c, err)
		return
	}

	var (
		raw         []byte
		filename    string
		contentType string
	)
	switch c.Query("format") {
	case "pdf":
		raw, filename, err = h.exports.WeekPDF(c.Request.Context(), c.Param("id"), start)
		contentType = "application/pdf"
	case "csv":
		raw, filename, err = h.exports.WeekCSV(c.Request.Context(), c.Param("id"), start)
		contentType = "text/csv"
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be pdf or csv"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, raw)
}

func parseDateParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrInvalidDate, "date parameter is required")
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrInvalidDate, "date must be YYYY-MM-DD")
	}
	return date, nil
}

func parseTimelineQuery(c *gin.Context) service.TimelineQuery {
	var q service.TimelineQuery
	if raw := c.Query("hourHeight"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			q.HourHeight = v
		}
	}
	if raw := c.Query("autoScroll"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			q.AutoScroll = &v
		}
	}
	return q
}
