package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/push"
)

type PushHandler struct {
	svc *push.Service
}

func NewPushHandler(svc *push.Service) *PushHandler {
	return &PushHandler{svc: svc}
}

type subscribeRequest struct {
	Subscription struct {
		Endpoint string `json:"endpoint" binding:"required"`
		Keys     struct {
			P256dh string `json:"p256dh" binding:"required"`
			Auth   string `json:"auth" binding:"required"`
		} `json:"keys"`
	} `json:"subscription"`
	BarberID *uint `json:"barberId"`
}

// PublicKey hands the VAPID application server key to the browser.
func (h *PushHandler) PublicKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"publicKey": h.svc.PublicKey()})
}

func (h *PushHandler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	a := actor(c)
	if a.UserID == nil {
		httperr.Unauthorized(c, "unauthorized", "Authentication required.")
		return
	}

	err := h.svc.Subscribe(c.Request.Context(), *a.UserID, push.SubscribeInput{
		Endpoint: req.Subscription.Endpoint,
		P256dh:   req.Subscription.Keys.P256dh,
		Auth:     req.Subscription.Keys.Auth,
		BarberID: req.BarberID,
	})
	if err != nil {
		httperr.Respond(c, err, "failed_to_subscribe")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Subscribed to notifications."})
}

func (h *PushHandler) Unsubscribe(c *gin.Context) {
	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	a := actor(c)
	if a.UserID == nil {
		httperr.Unauthorized(c, "unauthorized", "Authentication required.")
		return
	}

	if err := h.svc.Unsubscribe(c.Request.Context(), *a.UserID, a.IsAdmin(), req.Endpoint); err != nil {
		httperr.Respond(c, err, "failed_to_unsubscribe")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed from notifications."})
}
