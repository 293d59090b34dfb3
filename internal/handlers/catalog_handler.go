package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/middleware"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
	"github.com/BruksfildServices01/barber-loyalty/internal/usecase/catalog"
)

const maxPhotoBytes = 5 << 20

// CatalogHandler serves services, barbers, products and working hours.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// --------- Requests ---------

type ServiceRequest struct {
	Name        string  `json:"name" binding:"required,max=150"`
	Description string  `json:"description" binding:"max=255"`
	Price       float64 `json:"price" binding:"min=0"`
	DurationMin int     `json:"durationMin" binding:"min=0"`
}

type BarberRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Speciality  string `json:"speciality" binding:"max=100"`
	Description string `json:"description" binding:"max=500"`
	UserID      *uint  `json:"userId"`
}

type ProductRequest struct {
	Name        string  `json:"name" binding:"required,max=150"`
	Description string  `json:"description" binding:"max=500"`
	Price       float64 `json:"price" binding:"min=0"`
	Image       string  `json:"image" binding:"max=255"`
	Category    string  `json:"category" binding:"max=50"`
}

type ProductPatchRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Image       *string  `json:"image,omitempty"`
	Active      *bool    `json:"active,omitempty"`
	Category    *string  `json:"category,omitempty"`
}

type WorkingDayRequest struct {
	Weekday    int    `json:"weekday" binding:"min=0,max=6"`
	Active     bool   `json:"active"`
	StartTime  string `json:"startTime" binding:"omitempty,clock"`
	EndTime    string `json:"endTime" binding:"omitempty,clock"`
	LunchStart string `json:"lunchStart" binding:"omitempty,clock"`
	LunchEnd   string `json:"lunchEnd" binding:"omitempty,clock"`
}

type WorkingHoursRequest struct {
	Days []WorkingDayRequest `json:"days" binding:"required,dive"`
}

// ======================================================
// SERVICES
// ======================================================

func (h *CatalogHandler) ListServices(c *gin.Context) {
	list, err := h.catalog.ListServices(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err, "failed_to_list_services")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) GetService(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	s, err := h.catalog.GetService(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err, "failed_to_get_service")
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	s, err := h.catalog.CreateService(c.Request.Context(), actorID(c), catalog.ServiceInput(req))
	if err != nil {
		httperr.Respond(c, err, "failed_to_create_service")
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *CatalogHandler) UpdateService(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	s, err := h.catalog.UpdateService(c.Request.Context(), actorID(c), id, catalog.ServiceInput(req))
	if err != nil {
		httperr.Respond(c, err, "failed_to_update_service")
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *CatalogHandler) DeleteService(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteService(c.Request.Context(), actorID(c), id); err != nil {
		httperr.Respond(c, err, "failed_to_delete_service")
		return
	}
	c.Status(http.StatusNoContent)
}

// ======================================================
// BARBERS
// ======================================================

func (h *CatalogHandler) ListBarbers(c *gin.Context) {
	list, err := h.catalog.ListBarbers(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err, "failed_to_list_barbers")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) GetBarber(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.catalog.GetBarber(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err, "failed_to_get_barber")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *CatalogHandler) CreateBarber(c *gin.Context) {
	var req BarberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	b, err := h.catalog.CreateBarber(c.Request.Context(), actorID(c), catalog.BarberInput(req))
	if err != nil {
		httperr.Respond(c, err, "failed_to_create_barber")
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *CatalogHandler) UpdateBarber(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req BarberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	b, err := h.catalog.UpdateBarber(c.Request.Context(), actorID(c), id, catalog.BarberInput(req))
	if err != nil {
		httperr.Respond(c, err, "failed_to_update_barber")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *CatalogHandler) DeleteBarber(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteBarber(c.Request.Context(), actorID(c), id); err != nil {
		httperr.Respond(c, err, "failed_to_delete_barber")
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadPhoto takes a multipart "file" field.
func (h *CatalogHandler) UploadPhoto(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		httperr.BadRequest(c, "file_required", "A photo file is required.")
		return
	}
	if fh.Size > maxPhotoBytes {
		httperr.BadRequest(c, "file_too_large", "The photo must be 5 MB or less.")
		return
	}

	f, err := fh.Open()
	if err != nil {
		httperr.BadRequest(c, "file_required", "A photo file is required.")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes))
	if err != nil {
		httperr.Respond(c, err, "failed_to_read_photo")
		return
	}

	b, err := h.catalog.UploadBarberPhoto(c.Request.Context(), actorID(c), id, data)
	if err != nil {
		httperr.Respond(c, err, "failed_to_upload_photo")
		return
	}
	c.JSON(http.StatusOK, b)
}

// ======================================================
// WORKING HOURS
// ======================================================

func (h *CatalogHandler) GetWorkingHours(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	hours, err := h.catalog.WorkingHours(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err, "failed_to_get_working_hours")
		return
	}
	c.JSON(http.StatusOK, hours)
}

func (h *CatalogHandler) UpdateWorkingHours(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req WorkingHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	days := make([]models.WorkingHours, 0, len(req.Days))
	for _, d := range req.Days {
		days = append(days, models.WorkingHours{
			Weekday:    d.Weekday,
			Active:     d.Active,
			StartTime:  d.StartTime,
			EndTime:    d.EndTime,
			LunchStart: d.LunchStart,
			LunchEnd:   d.LunchEnd,
		})
	}

	hours, err := h.catalog.SetWorkingHours(c.Request.Context(), actorID(c), id, days)
	if err != nil {
		httperr.Respond(c, err, "failed_to_update_working_hours")
		return
	}
	c.JSON(http.StatusOK, hours)
}

// ======================================================
// PRODUCTS
// ======================================================

// ListProducts shows active products; admins may pass all=true.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	all := c.Query("all") == "true" && c.GetString(middleware.ContextUserRole) == models.RoleAdmin

	list, err := h.catalog.ListProducts(c.Request.Context(), all)
	if err != nil {
		httperr.Respond(c, err, "failed_to_list_products")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	p, err := h.catalog.CreateProduct(c.Request.Context(), actorID(c), models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Category:    req.Category,
	})
	if err != nil {
		httperr.Respond(c, err, "failed_to_create_product")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req ProductPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	p, err := h.catalog.UpdateProduct(c.Request.Context(), actorID(c), id, catalog.ProductPatch(req))
	if err != nil {
		httperr.Respond(c, err, "failed_to_update_product")
		return
	}
	c.JSON(http.StatusOK, p)
}
