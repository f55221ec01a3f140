package helper

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"userdir/internal/core/model/response"
)

const (
	DatabaseErrorMessage  = "Database error"
	InvalidRequestMessage = "Invalid request body"
)

func SendError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, response.ErrorResponse{Error: message})
}

// SendDatabaseError answers any store failure. Callers cannot tell causes apart.
func SendDatabaseError(c *gin.Context) {
	SendError(c, http.StatusInternalServerError, DatabaseErrorMessage)
}

func SendBadRequest(c *gin.Context) {
	SendError(c, http.StatusBadRequest, InvalidRequestMessage)
}

func SendMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, response.MessageResponse{Message: message})
}
