package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vidshelf/media-catalog-go/internal/models"
	"github.com/vidshelf/media-catalog-go/internal/service"
	"github.com/vidshelf/media-catalog-go/pkg/logger"
)

// CategoryHandler handles category-related HTTP requests.
type CategoryHandler struct {
	catalog *service.CatalogService
}

// NewCategoryHandler creates a new CategoryHandler instance.
func NewCategoryHandler(catalog *service.CatalogService) *CategoryHandler {
	return &CategoryHandler{catalog: catalog}
}

// AddCategory creates a category from the submitted form. Invalid or
// duplicate names are a no-op; the client is redirected to the gallery
// regardless of outcome.
func (h *CategoryHandler) AddCategory(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("category_name"))
	if name == "" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	if _, err := h.catalog.AddCategory(c.Request.Context(), name); err != nil {
		logger.Log.Error("failed to add category",
			zap.String("name", name),
			zap.Error(err),
		)
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// GetCategories returns all categories as JSON, sorted by name.
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		logger.Log.Error("failed to list categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Status:    http.StatusInternalServerError,
			Error:     "Internal Server Error",
			Message:   "failed to list categories",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	c.JSON(http.StatusOK, categories)
}
