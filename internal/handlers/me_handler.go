package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-loyalty/internal/dto"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
)

// Me returns the caller with the loyalty counters.
func (h *AuthHandler) Me(c *gin.Context) {
	id := actorID(c)
	if id == nil {
		httperr.Unauthorized(c, "unauthorized", "Authentication required.")
		return
	}

	u, err := h.identity.Me(c.Request.Context(), *id)
	if err != nil {
		httperr.Respond(c, err, "failed_to_load_user")
		return
	}

	c.JSON(http.StatusOK, dto.NewUser(u, h.identity.Policy()))
}
