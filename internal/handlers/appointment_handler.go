package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-loyalty/internal/dto"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
	apuc "github.com/BruksfildServices01/barber-loyalty/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

// AppointmentUseCases groups what the appointment routes call.
type AppointmentUseCases struct {
	Book         *apuc.BookAppointment
	Cancel       *apuc.CancelAppointment
	UpdateStatus *apuc.UpdateStatus
	Modify       *apuc.ModifyAppointment
	Delete       *apuc.DeleteAppointment
	Availability *apuc.GetAvailability
	List         *apuc.ListAppointments
	Revenue      *apuc.RevenueReport
	Lock         *apuc.LockSlot
	Unlock       *apuc.UnlockSlot
	Blocked      *apuc.BlockedSlots
}

type AppointmentHandler struct {
	uc  AppointmentUseCases
	loc *time.Location
}

func NewAppointmentHandler(uc AppointmentUseCases, loc *time.Location) *AppointmentHandler {
	return &AppointmentHandler{uc: uc, loc: loc}
}

// ======================================================
// REQUESTS
// ======================================================

type BookRequest struct {
	BarberID   uint   `json:"barberId" binding:"required"`
	ServiceIDs []uint `json:"serviceIds" binding:"required,min=1"`
	Date       string `json:"date" binding:"required,isodate"`
	StartTime  string `json:"startTime" binding:"required,clock"`

	UserName  string `json:"userName" binding:"max=100"`
	UserPhone string `json:"userPhone" binding:"max=20"`
	UserEmail string `json:"userEmail" binding:"omitempty,email"`

	UseReward bool   `json:"useReward"`
	Notes     string `json:"notes" binding:"max=255"`
}

type ModifyRequest struct {
	Date      string `json:"date" binding:"required,isodate"`
	StartTime string `json:"startTime" binding:"required,clock"`
}

// ContactRequest identifies a guest on cancel.
type ContactRequest struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// LockRequest comes as JSON or, from the dashboard, as query parameters.
type LockRequest struct {
	BarberID   uint   `json:"barberId" form:"barberId" binding:"required"`
	Date       string `json:"date" form:"date" binding:"required,isodate"`
	StartTime  string `json:"startTime" form:"startTime" binding:"required,clock"`
	UserName   string `json:"userName" form:"userName" binding:"max=100"`
	UserPhone  string `json:"userPhone" form:"userPhone" binding:"max=20"`
	ServiceIDs []uint `json:"serviceIds" form:"serviceIds"`
}

type BlockedSlotRequest struct {
	Date      string `json:"date" binding:"required,isodate"`
	StartTime string `json:"startTime" binding:"omitempty,clock"`
	EndTime   string `json:"endTime" binding:"omitempty,clock"`
	BarberID  *uint  `json:"barberId"`
	Reason    string `json:"reason" binding:"max=255"`
}

// ======================================================
// BOOKING
// ======================================================

func (h *AppointmentHandler) Book(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	ap, err := h.uc.Book.Execute(c.Request.Context(), apuc.BookInput{
		Actor:      actor(c),
		BarberID:   req.BarberID,
		ServiceIDs: req.ServiceIDs,
		Date:       req.Date,
		StartTime:  req.StartTime,
		UserName:   req.UserName,
		UserPhone:  req.UserPhone,
		UserEmail:  req.UserEmail,
		UseReward:  req.UseReward,
		Notes:      req.Notes,
	})
	if err != nil {
		httperr.Respond(c, err, "failed_to_book_appointment")
		return
	}

	c.JSON(http.StatusOK, dto.NewAppointment(ap, h.loc))
}

// UpdateStatus reads the target from ?status=, falling back to a JSON
// body {"status": "..."}.
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	status := c.Query("status")
	if status == "" {
		var body struct {
			Status string `json:"status"`
		}
		_ = c.ShouldBindJSON(&body)
		status = body.Status
	}
	if status == "" {
		httperr.BadRequest(c, "invalid_status", "A status is required.")
		return
	}

	ap, err := h.uc.UpdateStatus.Execute(c.Request.Context(), actor(c), id, status)
	if err != nil {
		httperr.Respond(c, err, "failed_to_update_status")
		return
	}

	c.JSON(http.StatusOK, dto.NewAppointment(ap, h.loc))
}

// Cancel accepts the guest contact in the query string or the body.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	a := actor(c)
	a.Phone = c.Query("phone")
	a.Email = c.Query("email")
	if a.Phone == "" && a.Email == "" && c.Request.ContentLength > 0 {
		var body ContactRequest
		if err := c.ShouldBindJSON(&body); err == nil {
			a.Phone, a.Email = body.Phone, body.Email
		}
	}

	ap, err := h.uc.Cancel.Execute(c.Request.Context(), a, id)
	if err != nil {
		httperr.Respond(c, err, "failed_to_cancel_appointment")
		return
	}

	c.JSON(http.StatusOK, dto.NewAppointment(ap, h.loc))
}

func (h *AppointmentHandler) Modify(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req ModifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	ap, err := h.uc.Modify.Execute(c.Request.Context(), actor(c), id, req.Date, req.StartTime)
	if err != nil {
		httperr.Respond(c, err, "failed_to_modify_appointment")
		return
	}

	c.JSON(http.StatusOK, dto.NewAppointment(ap, h.loc))
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.uc.Delete.Execute(c.Request.Context(), actor(c), id); err != nil {
		httperr.Respond(c, err, "failed_to_delete_appointment")
		return
	}
	c.Status(http.StatusNoContent)
}

// ======================================================
// QUERIES
// ======================================================

func (h *AppointmentHandler) List(c *gin.Context) {
	list, err := h.uc.List.All(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err, "failed_to_list_appointments")
		return
	}
	c.JSON(http.StatusOK, dto.NewAppointments(list, h.loc))
}

func (h *AppointmentHandler) Filter(c *gin.Context) {
	barberID, ok := queryID(c, "barberId")
	if !ok {
		return
	}

	list, err := h.uc.List.Filter(c.Request.Context(), apuc.ListQuery{
		BarberID: barberID,
		Date:     c.Query("date"),
		Status:   c.Query("status"),
		Query:    c.Query("q"),
		Sort:     c.Query("sort"),
	})
	if err != nil {
		httperr.Respond(c, err, "failed_to_filter_appointments")
		return
	}
	c.JSON(http.StatusOK, dto.NewAppointments(list, h.loc))
}

func (h *AppointmentHandler) Mine(c *gin.Context) {
	uid := actorID(c)
	if uid == nil {
		httperr.Unauthorized(c, "unauthorized", "Authentication required.")
		return
	}

	list, err := h.uc.List.Mine(c.Request.Context(), *uid)
	if err != nil {
		httperr.Respond(c, err, "failed_to_list_appointments")
		return
	}
	c.JSON(http.StatusOK, dto.NewAppointments(list, h.loc))
}

func (h *AppointmentHandler) ByContact(c *gin.Context) {
	list, err := h.uc.List.ByContact(c.Request.Context(), c.Query("phone"), c.Query("email"))
	if err != nil {
		httperr.Respond(c, err, "failed_to_list_appointments")
		return
	}
	c.JSON(http.StatusOK, dto.NewAppointments(list, h.loc))
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ap, err := h.uc.List.Get(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err, "failed_to_get_appointment")
		return
	}
	c.JSON(http.StatusOK, dto.NewAppointment(ap, h.loc))
}

// Available lists free start times: ?barberId=&date=YYYY-MM-DD.
func (h *AppointmentHandler) Available(c *gin.Context) {
	barberID, ok := queryID(c, "barberId")
	if !ok {
		return
	}
	if barberID == nil || c.Query("date") == "" {
		httperr.BadRequest(c, "invalid_request", "barberId and date are required.")
		return
	}

	slots, err := h.uc.Availability.Execute(c.Request.Context(), *barberID, c.Query("date"))
	if err != nil {
		httperr.Respond(c, err, "failed_to_get_availability")
		return
	}
	c.JSON(http.StatusOK, slots)
}

func (h *AppointmentHandler) MarkViewed(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ap, err := h.uc.List.MarkViewed(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err, "failed_to_mark_viewed")
		return
	}
	c.JSON(http.StatusOK, dto.NewAppointment(ap, h.loc))
}

func (h *AppointmentHandler) NewCount(c *gin.Context) {
	n, err := h.uc.List.CountNew(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err, "failed_to_count_appointments")
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *AppointmentHandler) RevenueReport(c *gin.Context) {
	barberID, ok := paramID(c, "barberId")
	if !ok {
		return
	}

	report, err := h.uc.Revenue.Execute(c.Request.Context(), barberID, c.Query("date"))
	if err != nil {
		httperr.Respond(c, err, "failed_to_build_report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// ======================================================
// ADMIN SLOT TOOLS
// ======================================================

func (h *AppointmentHandler) Lock(c *gin.Context) {
	bind := c.ShouldBindJSON
	if c.Query("barberId") != "" {
		bind = c.ShouldBindQuery
	}

	var req LockRequest
	if err := bind(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	ap, err := h.uc.Lock.Execute(c.Request.Context(), actor(c), apuc.LockSlotInput(req))
	if err != nil {
		httperr.Respond(c, err, "failed_to_lock_slot")
		return
	}
	c.JSON(http.StatusOK, dto.NewAppointment(ap, h.loc))
}

// Unlock frees a BLOCKED slot: ?barberId=&date=&startTime=.
func (h *AppointmentHandler) Unlock(c *gin.Context) {
	barberID, ok := queryID(c, "barberId")
	if !ok {
		return
	}
	if barberID == nil {
		httperr.BadRequest(c, "invalid_request", "barberId is required.")
		return
	}

	err := h.uc.Unlock.Execute(c.Request.Context(), actor(c), *barberID, c.Query("date"), c.Query("startTime"))
	if err != nil {
		httperr.Respond(c, err, "failed_to_unlock_slot")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AppointmentHandler) ListBlocked(c *gin.Context) {
	list, err := h.uc.Blocked.List(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		httperr.Respond(c, err, "failed_to_list_blocked_slots")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AppointmentHandler) CreateBlocked(c *gin.Context) {
	var req BlockedSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	b, err := h.uc.Blocked.Create(c.Request.Context(), actor(c), models.BlockedSlot{
		Day:       req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		BarberID:  req.BarberID,
		Reason:    req.Reason,
	})
	if err != nil {
		httperr.Respond(c, err, "failed_to_block_slot")
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *AppointmentHandler) DeleteBlocked(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.uc.Blocked.Delete(c.Request.Context(), actor(c), id); err != nil {
		httperr.Respond(c, err, "failed_to_delete_blocked_slot")
		return
	}
	c.Status(http.StatusNoContent)
}
