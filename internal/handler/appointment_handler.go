package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dhakalu/telehealth-web-app-sub001/internal/models"
	"github.com/dhakalu/telehealth-web-app-sub001/internal/service"
	appErrors "github.com/dhakalu/telehealth-web-app-sub001/pkg/errors"
	"github.com/dhakalu/telehealth-web-app-sub001/pkg/response"
)

// AppointmentHandler exposes appointment endpoints.
type AppointmentHandler struct {
	appointments *service.AppointmentService
}

// NewAppointmentHandler constructs handler.
func NewAppointmentHandler(appointments *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

// List godoc
// @Summary List appointments
// @Tags Appointments
// @Produce json
// @Param practitionerId query string false "Filter by practitioner"
// @Param from query string false "Window start (YYYY-MM-DD)"
// @Param to query string false "Window end (YYYY-MM-DD, exclusive)"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /appointments [get]
func (h *AppointmentHandler) List(c *gin.Context) {
	h.list(c, c.Query("practitionerId"))
}

// ListForPractitioner godoc
// @Summary List a practitioner's appointments
// @Tags Appointments
// @Produce json
// @Param practitionerId path string true "Practitioner id"
// @Param from query string false "Window start (YYYY-MM-DD)"
// @Param to query string false "Window end (YYYY-MM-DD, exclusive)"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /practitioners/{practitionerId}/appointments [get]
func (h *AppointmentHandler) ListForPractitioner(c *gin.Context) {
	h.list(c, c.Param("practitionerId"))
}

func (h *AppointmentHandler) list(c *gin.Context, practitionerID string) {
	filter := models.AppointmentFilter{PractitionerID: practitionerID}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrInvalidDate, "from must be YYYY-MM-DD"))
			return
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrInvalidDate, "to must be YYYY-MM-DD"))
			return
		}
		filter.To = &to
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "50"))

	appointments, total, err := h.appointments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, appointments, pagination)
}

// Get godoc
// @Summary Get an appointment
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment id"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) Get(c *gin.Context) {
	appointment, err := h.appointments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appointment, nil)
}

// Create godoc
// @Summary Book an appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param payload body service.CreateAppointmentRequest true "Appointment payload"
// @Success 201 {object} response.Envelope
// @Router /appointments [post]
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req service.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	appointment, err := h.appointments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, appointment)
}

// Cancel godoc
// @Summary Cancel an appointment
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment id"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	appointment, err := h.appointments.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appointment, nil)
}
