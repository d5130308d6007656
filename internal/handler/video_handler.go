package handler

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vidshelf/media-catalog-go/internal/db"
	"github.com/vidshelf/media-catalog-go/internal/models"
	"github.com/vidshelf/media-catalog-go/internal/service"
	"github.com/vidshelf/media-catalog-go/internal/validation"
	"github.com/vidshelf/media-catalog-go/pkg/logger"
)

// VideoHandler handles video ingestion and deletion requests.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type VideoHandler struct {
	catalog       *service.CatalogService
	validator     *validation.Validator
	uploadDir     string
	maxUploadSize int64
}

// NewVideoHandler creates a new VideoHandler instance.
func NewVideoHandler(catalog *service.CatalogService, validator *validation.Validator, uploadDir string, maxUploadSize int64) *VideoHandler {
	return &VideoHandler{
		catalog:       catalog,
		validator:     validator,
		uploadDir:     uploadDir,
		maxUploadSize: maxUploadSize,
	}
}

// AddYouTube ingests a linked external video. Missing fields no-op; the
// client is redirected to the gallery regardless of outcome.
func (h *VideoHandler) AddYouTube(c *gin.Context) {
	videoURL := c.PostForm("youtube_url")
	categoryID, err := uuid.Parse(c.PostForm("category_id"))
	if videoURL == "" || err != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	if _, err := h.catalog.AddExternalVideo(c.Request.Context(), videoURL, categoryID); err != nil {
		logger.Log.Error("external ingestion failed",
			zap.String("url", videoURL),
			zap.Error(err),
		)
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// UploadVideo saves a submitted video file and ingests it. Disallowed
// extensions and missing fields no-op; the client is redirected to the
// gallery regardless of outcome.
func (h *VideoHandler) UploadVideo(c *gin.Context) {
	// Cap the request body before the multipart form is parsed.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)

	file, err := c.FormFile("video_file")
	if err != nil {
		logger.Log.Warn("upload rejected", zap.Error(err))
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	categoryID, err := uuid.Parse(c.PostForm("category_id"))
	if err != nil || !h.validator.AllowedFile(file.Filename) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	storedFilename := service.GenerateUploadFilename(file.Filename)
	if storedFilename == "" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, storedFilename)); err != nil {
		logger.Log.Error("failed to save upload",
			zap.String("filename", storedFilename),
			zap.Error(err),
		)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	title := c.PostForm("video_title")
	if _, err := h.catalog.AddUploadedVideo(c.Request.Context(), storedFilename, title, categoryID); err != nil {
		logger.Log.Error("upload ingestion failed",
			zap.String("filename", storedFilename),
			zap.Error(err),
		)
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// DeleteVideo removes a video and its backing files. Unknown or
// malformed IDs answer 404; success redirects to the referring page.
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.notFound(c, "unknown video")
		return
	}

	if err := h.catalog.DeleteVideo(c.Request.Context(), id); err != nil {
		if db.IsNotFound(err) {
			h.notFound(c, "unknown video")
			return
		}
		logger.Log.Error("failed to delete video",
			zap.String("videoId", id.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Status:    http.StatusInternalServerError,
			Error:     "Internal Server Error",
			Message:   "failed to delete video",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	target := c.Request.Referer()
	if target == "" {
		target = "/"
	}
	c.Redirect(http.StatusSeeOther, target)
}

func (h *VideoHandler) notFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Status:    http.StatusNotFound,
		Error:     "Not Found",
		Message:   message,
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}
