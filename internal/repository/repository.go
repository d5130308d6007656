// Package repository provides database operations for the media catalog.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidshelf/media-catalog-go/internal/db"
	"github.com/vidshelf/media-catalog-go/internal/models"
)

// Repository handles all database operations for the media catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new Repository instance with the provided connection pool.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Category methods

// CreateCategory inserts a new category. Name uniqueness is enforced by a
// store-level constraint; a duplicate surfaces as db.ErrDuplicateKey.
func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, name)
		VALUES ($1, $2)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query, category.ID, category.Name).Scan(&category.CreatedAt)
	return db.WrapError(err, "create category")
}

// GetCategoryByID retrieves a category by its ID.
func (r *Repository) GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	query := `
		SELECT id, name, created_at
		FROM categories
		WHERE id = $1
	`
	var category models.Category
	err := r.pool.QueryRow(ctx, query, id).Scan(&category.ID, &category.Name, &category.CreatedAt)
	if err != nil {
		return nil, db.WrapError(err, "get category by id")
	}
	return &category, nil
}

// GetCategoryByName retrieves a category by its exact name (case-sensitive).
func (r *Repository) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	query := `
		SELECT id, name, created_at
		FROM categories
		WHERE name = $1
	`
	var category models.Category
	err := r.pool.QueryRow(ctx, query, name).Scan(&category.ID, &category.Name, &category.CreatedAt)
	if err != nil {
		return nil, db.WrapError(err, "get category by name")
	}
	return &category, nil
}

// ListCategories retrieves all categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	query := `
		SELECT id, name, created_at
		FROM categories
		ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, db.WrapError(err, "list categories")
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedAt); err != nil {
			return nil, db.WrapError(err, "scan category")
		}
		categories = append(categories, category)
	}
	return categories, db.WrapError(rows.Err(), "iterate categories")
}

// Video methods

// CreateVideo inserts a new video. The referenced category must exist; a
// missing one surfaces as db.ErrForeignKeyViolation.
func (r *Repository) CreateVideo(ctx context.Context, video *models.Video) error {
	query := `
		INSERT INTO videos (id, title, thumbnail_filename, video_filename, external_url, is_external, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING upload_date
	`
	err := r.pool.QueryRow(ctx, query,
		video.ID,
		video.Title,
		video.ThumbnailFilename,
		nullableString(video.VideoFilename),
		nullableString(video.ExternalURL),
		video.IsExternal,
		video.CategoryID,
	).Scan(&video.UploadDate)
	return db.WrapError(err, "create video")
}

// GetVideoByID retrieves a video by its ID.
func (r *Repository) GetVideoByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	query := `
		SELECT id, title, thumbnail_filename, video_filename, external_url, is_external, category_id, upload_date
		FROM videos
		WHERE id = $1
	`
	video, err := scanVideo(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, db.WrapError(err, "get video by id")
	}
	return video, nil
}

// ListVideos retrieves all videos, newest first.
func (r *Repository) ListVideos(ctx context.Context) ([]models.Video, error) {
	query := `
		SELECT id, title, thumbnail_filename, video_filename, external_url, is_external, category_id, upload_date
		FROM videos
		ORDER BY upload_date DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, db.WrapError(err, "list videos")
	}
	defer rows.Close()

	return scanVideos(rows)
}

// ListVideosByCategoryID retrieves all videos in a category, newest first.
func (r *Repository) ListVideosByCategoryID(ctx context.Context, categoryID uuid.UUID) ([]models.Video, error) {
	query := `
		SELECT id, title, thumbnail_filename, video_filename, external_url, is_external, category_id, upload_date
		FROM videos
		WHERE category_id = $1
		ORDER BY upload_date DESC
	`
	rows, err := r.pool.Query(ctx, query, categoryID)
	if err != nil {
		return nil, db.WrapError(err, "list videos by category")
	}
	defer rows.Close()

	return scanVideos(rows)
}

// DeleteVideo removes a video row. Returns db.ErrNotFound when no row
// matches the given ID.
func (r *Repository) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return db.WrapError(err, "delete video")
	}
	if tag.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "delete video")
	}
	return nil
}

// Ping checks the database connection health.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (*models.Video, error) {
	var video models.Video
	var videoFilename, externalURL sql.NullString

	err := row.Scan(
		&video.ID,
		&video.Title,
		&video.ThumbnailFilename,
		&videoFilename,
		&externalURL,
		&video.IsExternal,
		&video.CategoryID,
		&video.UploadDate,
	)
	if err != nil {
		return nil, err
	}

	video.VideoFilename = videoFilename.String
	video.ExternalURL = externalURL.String
	return &video, nil
}

func scanVideos(rows pgx.Rows) ([]models.Video, error) {
	var videos []models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, db.WrapError(err, "scan video")
		}
		videos = append(videos, *video)
	}
	return videos, db.WrapError(rows.Err(), "iterate videos")
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
