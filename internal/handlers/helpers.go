package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/middleware"
	apuc "github.com/BruksfildServices01/barber-loyalty/internal/usecase/appointment"
)

// paramID reads a positive numeric path parameter, writing a 400 on
// failure.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "Invalid identifier.")
		return 0, false
	}
	return uint(id), true
}

func queryID(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_"+name, "Invalid "+name+".")
		return nil, false
	}
	v := uint(id)
	return &v, true
}

// actorID is nil for anonymous callers.
func actorID(c *gin.Context) *uint {
	if id, ok := middleware.UserID(c); ok {
		return &id
	}
	return nil
}

func actor(c *gin.Context) apuc.Actor {
	return apuc.Actor{
		UserID: actorID(c),
		Role:   c.GetString(middleware.ContextUserRole),
	}
}

func invalidRequest(c *gin.Context, err error) {
	httperr.BadRequest(c, "invalid_request", err.Error())
}
