// Package handler provides HTTP request handlers for the catalog service.
package handler

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vidshelf/media-catalog-go/internal/service"
	"github.com/vidshelf/media-catalog-go/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates for the gin engine.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// PageHandler renders the gallery and calendar pages.
type PageHandler struct {
	catalog *service.CatalogService
}

// NewPageHandler creates a new PageHandler instance.
func NewPageHandler(catalog *service.CatalogService) *PageHandler {
	return &PageHandler{catalog: catalog}
}

// Gallery renders the main page: videos grouped by category, newest
// first within each group.
func (h *PageHandler) Gallery(c *gin.Context) {
	groups, err := h.catalog.GalleryGroups(c.Request.Context())
	if err != nil {
		logger.Log.Error("failed to load gallery", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to load gallery")
		return
	}

	c.HTML(http.StatusOK, "gallery.html", gin.H{
		"Groups": groups,
	})
}

// Calendar renders videos grouped by upload day, newest first.
func (h *PageHandler) Calendar(c *gin.Context) {
	groups, err := h.catalog.CalendarGroups(c.Request.Context())
	if err != nil {
		logger.Log.Error("failed to load calendar", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to load calendar")
		return
	}

	c.HTML(http.StatusOK, "calendar.html", gin.H{
		"Groups": groups,
	})
}
