package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"userdir/internal/adapter/http/helper"
	"userdir/internal/core/domain"
	"userdir/internal/view"
	"userdir/pkg/logger"
)

func genderOptions() []string {
	options := make([]string, 0, len(domain.Genders))
	for _, g := range domain.Genders {
		options = append(options, string(g))
	}

	return options
}

type formField struct {
	Name    string
	Label   string
	Type    string
	Value   string
	Error   string
	Options []string
}

type page struct {
	State   view.State
	Fields  []formField
	Refresh bool
}

type PageHandler struct {
	program *view.Program
	logger  *logger.LokiLogger
}

func NewPageHandler(program *view.Program, log *logger.LokiLogger) *PageHandler {
	return &PageHandler{program: program, logger: log}
}

func newPage(s view.State) page {
	fields := []formField{
		{Name: string(view.FieldFullName), Label: "Full Name", Type: "text", Value: s.Form.FullName},
		{Name: string(view.FieldEmail), Label: "Email", Type: "email", Value: s.Form.Email},
		{Name: string(view.FieldAge), Label: "Age", Type: "number", Value: s.Form.Age},
		{Name: string(view.FieldGender), Label: "Gender", Type: "select", Value: s.Form.Gender, Options: genderOptions()},
		{Name: string(view.FieldAddress), Label: "Address", Type: "textarea", Value: s.Form.Address},
	}

	for i := range fields {
		fields[i].Error = s.Errors[view.Field(fields[i].Name)]
	}

	return page{State: s, Fields: fields, Refresh: s.Pending()}
}

func (h *PageHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", newPage(h.program.State()))
}

func (h *PageHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.program.State())
}

// Submit posts the whole form as one message so concurrent posts cannot mix fields.
func (h *PageHandler) Submit(c *gin.Context) {
	var form view.Form

	if err := c.ShouldBind(&form); err != nil {
		h.logger.WarnWithTrace(c.Request.Context(), "Invalid form post", zap.Error(err))
		helper.SendBadRequest(c)
		return
	}

	h.dispatch(c, view.Submit{Form: &form})
}

func (h *PageHandler) Edit(c *gin.Context) {
	h.dispatch(c, view.Edit{ID: c.Param("id")})
}

func (h *PageHandler) CancelEdit(c *gin.Context) {
	h.dispatch(c, view.CancelEdit{})
}

func (h *PageHandler) Delete(c *gin.Context) {
	h.dispatch(c, view.Delete{ID: c.Param("id")})
}

// dispatch applies msgs in order and sends the browser back to the page.
func (h *PageHandler) dispatch(c *gin.Context, msgs ...view.Msg) {
	for _, msg := range msgs {
		if err := h.program.Dispatch(c.Request.Context(), msg); err != nil {
			h.logger.WarnWithTrace(c.Request.Context(), "View action not applied", zap.Error(err))
			helper.SendError(c, http.StatusServiceUnavailable, "View unavailable")
			return
		}
	}

	c.Redirect(http.StatusSeeOther, "/")
}
