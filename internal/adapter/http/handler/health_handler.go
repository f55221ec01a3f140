package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	. "userdir/internal/adapter/http/helper"
	"userdir/internal/core/model/response"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		SendError(c, http.StatusServiceUnavailable, DatabaseErrorMessage)
		return
	}

	c.JSON(http.StatusOK, response.HealthResponse{Status: "ok"})
}
