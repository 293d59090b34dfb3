package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/httpresp"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

// AdminChatHandler is the shared message board of the admin dashboard.
type AdminChatHandler struct {
	db *gorm.DB
}

func NewAdminChatHandler(db *gorm.DB) *AdminChatHandler {
	return &AdminChatHandler{db: db}
}

type ChatMessageRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// List returns the newest messages first.
func (h *AdminChatHandler) List(c *gin.Context) {
	page, limit, offset := httpresp.Paging(c)

	q := h.db.WithContext(c.Request.Context()).Model(&models.AdminMessage{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "chat_count_failed", "Failed to count messages.")
		return
	}

	var msgs []models.AdminMessage
	if err := q.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error; err != nil {

		httperr.Internal(c, "chat_list_failed", "Failed to list messages.")
		return
	}

	httpresp.List(c, page, limit, total, msgs)
}

func (h *AdminChatHandler) Post(c *gin.Context) {
	uid := actorID(c)
	if uid == nil {
		httperr.Unauthorized(c, "unauthorized", "Authentication required.")
		return
	}

	var req ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		httperr.BadRequest(c, "content_required", "The message is empty.")
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var sender models.User
	if err := db.First(&sender, *uid).Error; err != nil {
		httperr.Unauthorized(c, "user_not_found", "User not found.")
		return
	}

	name := sender.Name
	if name == "" {
		name = sender.Username
	}

	msg := models.AdminMessage{
		Content:    content,
		SenderID:   sender.ID,
		SenderName: name,
	}
	if err := db.Create(&msg).Error; err != nil {
		httperr.Internal(c, "chat_post_failed", "Failed to save the message.")
		return
	}

	c.JSON(http.StatusCreated, msg)
}
