package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vidshelf/media-catalog-go/internal/db"
	"github.com/vidshelf/media-catalog-go/internal/metrics"
	"github.com/vidshelf/media-catalog-go/internal/models"
	"github.com/vidshelf/media-catalog-go/internal/validation"
	"github.com/vidshelf/media-catalog-go/pkg/logger"
)

// CategoryStore defines the category persistence operations the service needs.
type CategoryStore interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// VideoStore defines the video persistence operations the service needs.
type VideoStore interface {
	CreateVideo(ctx context.Context, video *models.Video) error
	GetVideoByID(ctx context.Context, id uuid.UUID) (*models.Video, error)
	ListVideos(ctx context.Context) ([]models.Video, error)
	ListVideosByCategoryID(ctx context.Context, categoryID uuid.UUID) ([]models.Video, error)
	DeleteVideo(ctx context.Context, id uuid.UUID) error
}

// EventPublisher publishes catalog change events for downstream consumers.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *models.CatalogEvent) error
}

// CatalogService implements the catalog operations: category creation,
// both video ingestion paths, deletion, and the grouped listings.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type CatalogService struct {
	categories   CategoryStore
	videos       VideoStore
	pipeline     *ThumbnailPipeline
	publisher    EventPublisher // optional, may be nil
	uploadDir    string
	thumbnailDir string
}

// NewCatalogService creates a CatalogService. publisher may be nil when
// event publishing is disabled.
func NewCatalogService(
	categories CategoryStore,
	videos VideoStore,
	pipeline *ThumbnailPipeline,
	publisher EventPublisher,
	uploadDir, thumbnailDir string,
) *CatalogService {
	return &CatalogService{
		categories:   categories,
		videos:       videos,
		pipeline:     pipeline,
		publisher:    publisher,
		uploadDir:    uploadDir,
		thumbnailDir: thumbnailDir,
	}
}

// AddCategory creates a category with the given name. Creation is
// idempotent: when the name already exists, the existing category is
// returned without error. Empty names are rejected.
func (s *CatalogService) AddCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Message: "category name must not be empty"}
	}

	category := &models.Category{ID: uuid.New(), Name: name}
	err := s.categories.CreateCategory(ctx, category)
	if db.IsDuplicateKey(err) {
		logger.Log.Info("category already exists", zap.String("name", name))
		return s.categories.GetCategoryByName(ctx, name)
	}
	if err != nil {
		return nil, &ProcessingError{Message: "failed to create category", Cause: err}
	}

	logger.Log.Info("category created",
		zap.String("categoryId", category.ID.String()),
		zap.String("name", name),
	)
	return category, nil
}

// AddExternalVideo ingests a linked external video. The thumbnail
// pipeline runs best-effort; a record is created as long as it produced
// at least a title or a thumbnail. A total pipeline failure is a silent
// no-op returning (nil, nil).
func (s *CatalogService) AddExternalVideo(ctx context.Context, videoURL string, categoryID uuid.UUID) (*models.Video, error) {
	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return nil, &ValidationError{Message: "video URL must not be empty"}
	}

	result := s.pipeline.ForExternal(ctx, videoURL)
	if result.Filename == "" && result.Title == "" {
		logger.Log.Warn("external ingestion produced nothing, skipping record",
			zap.String("url", videoURL),
		)
		metrics.IngestTotal.WithLabelValues("external", "skipped").Inc()
		return nil, nil
	}

	title := result.Title
	if title == "" {
		title = PlaceholderExternalTitle
	}

	video := &models.Video{
		ID:                uuid.New(),
		Title:             title,
		ThumbnailFilename: result.Filename,
		ExternalURL:       videoURL,
		IsExternal:        true,
		CategoryID:        categoryID,
	}
	if err := s.videos.CreateVideo(ctx, video); err != nil {
		metrics.IngestTotal.WithLabelValues("external", "error").Inc()
		return nil, wrapCreateVideoError(err)
	}

	metrics.IngestTotal.WithLabelValues("external", "created").Inc()
	logger.Log.Info("external video ingested",
		zap.String("videoId", video.ID.String()),
		zap.String("title", video.Title),
		zap.Bool("hasThumbnail", video.ThumbnailFilename != ""),
	)

	s.publish(ctx, models.EventVideoCreated, video)
	return video, nil
}

// AddUploadedVideo ingests a previously saved upload: it derives a
// thumbnail from the stored file and creates the record. An empty title
// falls back to the stored filename.
func (s *CatalogService) AddUploadedVideo(ctx context.Context, storedFilename, title string, categoryID uuid.UUID) (*models.Video, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = storedFilename
	}

	thumbnailFilename := s.pipeline.ForUpload(ctx, filepath.Join(s.uploadDir, storedFilename))

	video := &models.Video{
		ID:                uuid.New(),
		Title:             title,
		ThumbnailFilename: thumbnailFilename,
		VideoFilename:     storedFilename,
		IsExternal:        false,
		CategoryID:        categoryID,
	}
	if err := s.videos.CreateVideo(ctx, video); err != nil {
		metrics.IngestTotal.WithLabelValues("upload", "error").Inc()
		return nil, wrapCreateVideoError(err)
	}

	metrics.IngestTotal.WithLabelValues("upload", "created").Inc()
	logger.Log.Info("uploaded video ingested",
		zap.String("videoId", video.ID.String()),
		zap.String("filename", storedFilename),
		zap.Bool("hasThumbnail", video.ThumbnailFilename != ""),
	)

	s.publish(ctx, models.EventVideoCreated, video)
	return video, nil
}

// DeleteVideo removes a video record and best-effort removes its backing
// files. Returns db.ErrNotFound when the video does not exist; file
// removal failures are logged and swallowed.
func (s *CatalogService) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	video, err := s.videos.GetVideoByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.videos.DeleteVideo(ctx, id); err != nil {
		return err
	}

	if video.ThumbnailFilename != "" {
		s.removeFile(filepath.Join(s.thumbnailDir, video.ThumbnailFilename))
	}
	if !video.IsExternal && video.VideoFilename != "" {
		s.removeFile(filepath.Join(s.uploadDir, video.VideoFilename))
	}

	logger.Log.Info("video deleted", zap.String("videoId", id.String()))
	s.publish(ctx, models.EventVideoDeleted, video)
	return nil
}

// Categories lists all categories sorted by name.
func (s *CatalogService) Categories(ctx context.Context) ([]models.CategoryDTO, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]models.CategoryDTO, 0, len(categories))
	for _, category := range categories {
		dtos = append(dtos, models.CategoryDTO{ID: category.ID, Name: category.Name})
	}
	return dtos, nil
}

// GalleryGroups returns every category (sorted by name) with its videos,
// newest first.
func (s *CatalogService) GalleryGroups(ctx context.Context) ([]models.CategoryGroup, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	groups := make([]models.CategoryGroup, 0, len(categories))
	for _, category := range categories {
		videos, err := s.videos.ListVideosByCategoryID(ctx, category.ID)
		if err != nil {
			return nil, err
		}
		groups = append(groups, models.CategoryGroup{Category: category, Videos: videos})
	}
	return groups, nil
}

// CalendarGroups returns videos grouped by upload day (YYYY-MM-DD),
// newest day first, newest video first within each day.
func (s *CatalogService) CalendarGroups(ctx context.Context) ([]models.DateGroup, error) {
	videos, err := s.videos.ListVideos(ctx)
	if err != nil {
		return nil, err
	}

	var groups []models.DateGroup
	for _, video := range videos {
		key := video.UploadDate.Format("2006-01-02")
		if len(groups) == 0 || groups[len(groups)-1].Date != key {
			groups = append(groups, models.DateGroup{Date: key})
		}
		last := len(groups) - 1
		groups[last].Videos = append(groups[last].Videos, video)
	}
	return groups, nil
}

// GenerateUploadFilename builds the stored name for an uploaded file: a
// timestamp prefix, a UUID segment, and the sanitized original name.
// Returns "" when the original name sanitizes to nothing.
func GenerateUploadFilename(originalName string) string {
	safe := validation.SanitizeFilename(originalName)
	if safe == "" {
		return ""
	}
	stamp := time.Now().Format(filenameTimeFormat)
	return fmt.Sprintf("%s_%s_%s", stamp, uuid.NewString()[:8], safe)
}

func (s *CatalogService) removeFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := os.Remove(path); err != nil {
		logger.Log.Warn("failed to remove file", zap.String("path", path), zap.Error(err))
	}
}

func (s *CatalogService) publish(ctx context.Context, eventType models.EventType, video *models.Video) {
	if s.publisher == nil {
		return
	}

	event := &models.CatalogEvent{
		ID:         uuid.New(),
		Type:       eventType,
		VideoID:    video.ID,
		CategoryID: video.CategoryID,
		Title:      video.Title,
		IsExternal: video.IsExternal,
		OccurredAt: time.Now(),
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		logger.Log.Error("failed to publish catalog event",
			zap.String("eventId", event.ID.String()),
			zap.String("type", string(eventType)),
			zap.Error(err),
		)
	}
}

func wrapCreateVideoError(err error) error {
	if db.IsForeignKeyViolation(err) {
		return &ValidationError{Message: "category does not exist"}
	}
	return &ProcessingError{Message: "failed to create video", Cause: err}
}

// Custom errors

// ValidationError represents invalid user input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProcessingError represents an error that occurred during catalog processing.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ProcessingError struct {
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}
