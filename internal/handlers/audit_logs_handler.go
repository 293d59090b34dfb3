package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/httpresp"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
	"github.com/BruksfildServices01/barber-loyalty/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db  *gorm.DB
	loc *time.Location
}

func NewAuditLogsHandler(db *gorm.DB, loc *time.Location) *AuditLogsHandler {
	return &AuditLogsHandler{db: db, loc: loc}
}

// List filters by action, entity, userId and a from/to day range.
func (h *AuditLogsHandler) List(c *gin.Context) {
	page, limit, offset := httpresp.Paging(c)

	userID, ok := queryID(c, "userId")
	if !ok {
		return
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.AuditLog{})

	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}
	if entity := c.Query("entity"); entity != "" {
		q = q.Where("entity = ?", entity)
	}
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if from, err := timezone.ParseDate(c.Query("from"), h.loc); err == nil {
		q = q.Where("created_at >= ?", from)
	}
	if to, err := timezone.ParseDate(c.Query("to"), h.loc); err == nil {
		q = q.Where("created_at < ?", to.AddDate(0, 0, 1))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "audit_count_failed", "Failed to count audit logs.")
		return
	}

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error; err != nil {

		httperr.Internal(c, "audit_list_failed", "Failed to list audit logs.")
		return
	}

	httpresp.List(c, page, limit, total, logs)
}
