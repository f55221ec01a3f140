package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	. "userdir/internal/adapter/http/helper"
	"userdir/internal/core/domain"
	"userdir/internal/core/model/request"
	"userdir/internal/core/model/response"
	"userdir/internal/core/port"
	"userdir/pkg/logger"
	. "userdir/pkg/tracing"
)

const deletedMessage = "User deleted successfully"

type UserHandler struct {
	svc    port.UserService
	Logger *logger.LokiLogger
}

func NewUserHandler(svc port.UserService, log *logger.LokiLogger) *UserHandler {
	if log == nil {
		log = logger.NewNop()
	}

	return &UserHandler{
		svc:    svc,
		Logger: log,
	}
}

func toResponse(user domain.User) response.UserResponse {
	return response.UserResponse{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Age:      user.Age,
		Gender:   user.Gender,
		Address:  user.Address,
	}
}

func toDomain(params request.UserRequest) domain.User {
	return domain.User{
		ID:       params.ID,
		FullName: params.FullName,
		Email:    params.Email,
		Age:      params.Age,
		Gender:   params.Gender,
		Address:  params.Address,
	}
}

func (h *UserHandler) startSpan(c *gin.Context, operation string) func(status int, err error) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.user."+operation, []attribute.KeyValue{
		attribute.String("handler.operation", operation),
	})
	c.Request = c.Request.WithContext(ctx)

	return func(status int, err error) {
		if err != nil {
			AddSpanError(span, err)
		}
		AddHTTPAttributes(span, c.Request.Method, c.FullPath(), status)
		span.End()
	}
}

func (h *UserHandler) GetAllUsers(c *gin.Context) {
	finish := h.startSpan(c, "GetAllUsers")
	ctx := c.Request.Context()

	users, err := h.svc.List(ctx)

	if err != nil {
		logger.LogError(ctx, h.Logger, err, "Error fetching users")
		finish(http.StatusInternalServerError, err)
		SendDatabaseError(c)
		return
	}

	data := make([]response.UserResponse, 0, len(users))
	for _, user := range users {
		data = append(data, toResponse(user))
	}

	finish(http.StatusOK, nil)
	c.JSON(http.StatusOK, data)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	finish := h.startSpan(c, "CreateUser")
	ctx := c.Request.Context()

	var params request.UserRequest

	if err := c.ShouldBindJSON(&params); err != nil {
		h.Logger.WarnWithTrace(ctx, "Invalid user payload", zap.Error(err))
		finish(http.StatusBadRequest, err)
		SendBadRequest(c)
		return
	}

	user, err := h.svc.Create(ctx, toDomain(params))

	if err != nil {
		logger.LogError(ctx, h.Logger, err, "Error creating user")
		finish(http.StatusInternalServerError, err)
		SendDatabaseError(c)
		return
	}

	finish(http.StatusOK, nil)
	c.JSON(http.StatusOK, toResponse(user))
}

// UpdateUser overwrites the record named by the body's id and echoes the body.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	finish := h.startSpan(c, "UpdateUser")
	ctx := c.Request.Context()

	var params request.UserRequest

	if err := c.ShouldBindJSON(&params); err != nil {
		h.Logger.WarnWithTrace(ctx, "Invalid user payload", zap.Error(err))
		finish(http.StatusBadRequest, err)
		SendBadRequest(c)
		return
	}

	user, err := h.svc.Update(ctx, toDomain(params))

	if err != nil {
		logger.LogError(ctx, h.Logger, err, "Error updating user", zap.String("user_id", params.ID))
		finish(http.StatusInternalServerError, err)
		SendDatabaseError(c)
		return
	}

	finish(http.StatusOK, nil)
	c.JSON(http.StatusOK, toResponse(user))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	finish := h.startSpan(c, "DeleteUser")
	ctx := c.Request.Context()
	id := c.Param("id")

	if err := h.svc.DeleteByID(ctx, id); err != nil {
		logger.LogError(ctx, h.Logger, err, "Error deleting user", zap.String("user_id", id))
		finish(http.StatusInternalServerError, err)
		SendDatabaseError(c)
		return
	}

	finish(http.StatusOK, nil)
	SendMessage(c, http.StatusOK, deletedMessage)
}
