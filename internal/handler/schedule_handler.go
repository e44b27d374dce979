package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dhakalu/telehealth-web-app-sub001/internal/service"
	appErrors "github.com/dhakalu/telehealth-web-app-sub001/pkg/errors"
	"github.com/dhakalu/telehealth-web-app-sub001/pkg/response"
)

// ScheduleHandler exposes office schedule, timeslot and exception endpoints.
type ScheduleHandler struct {
	schedules *service.ScheduleService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(schedules *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

// Get godoc
// @Summary Get an office schedule with its weekly timeslot rules
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule id"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.schedules.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// GetByPractitioner godoc
// @Summary Get a practitioner's office schedule
// @Tags Schedules
// @Produce json
// @Param practitionerId path string true "Practitioner id"
// @Success 200 {object} response.Envelope
// @Router /practitioners/{practitionerId}/schedule [get]
func (h *ScheduleHandler) GetByPractitioner(c *gin.Context) {
	schedule, err := h.schedules.GetScheduleForPractitioner(c.Request.Context(), c.Param("practitionerId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Create godoc
// @Summary Create an office schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body service.CreateScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Router /schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req service.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	schedule, err := h.schedules.CreateSchedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// Update godoc
// @Summary Update an office schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule id"
// @Param payload body service.UpdateScheduleRequest true "Schedule payload"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req service.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	schedule, err := h.schedules.UpdateSchedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// ListTimeslots godoc
// @Summary List weekly timeslot rules
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule id"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/timeslots [get]
func (h *ScheduleHandler) ListTimeslots(c *gin.Context) {
	timeslots, err := h.schedules.ListTimeslots(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timeslots, nil)
}

// CreateTimeslot godoc
// @Summary Add a weekly timeslot rule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule id"
// @Param payload body service.CreateTimeslotRequest true "Timeslot payload"
// @Success 201 {object} response.Envelope
// @Router /schedules/{id}/timeslots [post]
func (h *ScheduleHandler) CreateTimeslot(c *gin.Context) {
	var req service.CreateTimeslotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rule, warnings, err := h.schedules.CreateTimeslot(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, rule, nil, warningMeta(warnings))
}

// DeleteTimeslot godoc
// @Summary Remove a weekly timeslot rule
// @Tags Schedules
// @Param id path string true "Schedule id"
// @Param timeslotId path string true "Timeslot id"
// @Success 204
// @Router /schedules/{id}/timeslots/{timeslotId} [delete]
func (h *ScheduleHandler) DeleteTimeslot(c *gin.Context) {
	if err := h.schedules.DeleteTimeslot(c.Request.Context(), c.Param("id"), c.Param("timeslotId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListExceptions godoc
// @Summary List schedule exceptions
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule id"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/exceptions [get]
func (h *ScheduleHandler) ListExceptions(c *gin.Context) {
	exceptions, err := h.schedules.ListExceptions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exceptions, nil)
}

// CreateException godoc
// @Summary Add a date-specific schedule exception
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule id"
// @Param payload body service.CreateExceptionRequest true "Exception payload"
// @Success 201 {object} response.Envelope
// @Router /schedules/{id}/exceptions [post]
func (h *ScheduleHandler) CreateException(c *gin.Context) {
	var req service.CreateExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	exception, warnings, err := h.schedules.CreateException(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, exception, nil, warningMeta(warnings))
}

// DeleteException godoc
// @Summary Remove a schedule exception
// @Tags Schedules
// @Param id path string true "Schedule id"
// @Param exceptionId path string true "Exception id"
// @Success 204
// @Router /schedules/{id}/exceptions/{exceptionId} [delete]
func (h *ScheduleHandler) DeleteException(c *gin.Context) {
	if err := h.schedules.DeleteException(c.Request.Context(), c.Param("id"), c.Param("exceptionId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func warningMeta(warnings []string) map[string]interface{} {
	if len(warnings) == 0 {
		return nil
	}
	return map[string]interface{}{"warnings": warnings}
}
