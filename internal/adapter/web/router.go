package web

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"userdir/internal/adapter/http/middleware"
	"userdir/internal/view"
	"userdir/pkg/logger"
)

//go:embed templates/*.html
var templates embed.FS

// NewRouter serves the user directory page backed by program.
func NewRouter(program *view.Program, log *logger.LokiLogger, serviceName string) (*gin.Engine, error) {
	if log == nil {
		log = logger.NewNop()
	}

	tmpl, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(middleware.Logging(log))

	h := NewPageHandler(program, log)

	router.GET("/", h.Index)
	router.GET("/state", h.State)
	router.POST("/users", h.Submit)
	router.POST("/users/edit/cancel", h.CancelEdit)
	router.POST("/users/:id/edit", h.Edit)
	router.POST("/users/:id/delete", h.Delete)

	return router, nil
}
