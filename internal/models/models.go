// Package models contains the data models and DTOs for the media catalog service.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a user-defined named grouping that every video belongs to.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Video is one catalog entry, either an uploaded file or a link to an
// externally hosted video. Exactly one of VideoFilename / ExternalURL is
// populated, selected by IsExternal and never changed afterwards.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Video struct {
	ID                uuid.UUID `json:"id"`
	Title             string    `json:"title"`
	ThumbnailFilename string    `json:"thumbnail_filename"`
	VideoFilename     string    `json:"video_filename,omitempty"`
	ExternalURL       string    `json:"external_url,omitempty"`
	IsExternal        bool      `json:"is_external"`
	CategoryID        uuid.UUID `json:"category_id"`
	UploadDate        time.Time `json:"upload_date"`
}

// CategoryDTO is the JSON shape returned by the category listing endpoint.
type CategoryDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// CategoryGroup is one gallery section: a category and its videos,
// newest first.
type CategoryGroup struct {
	Category Category `json:"category"`
	Videos   []Video  `json:"videos"`
}

// DateGroup is one calendar section: an upload day (YYYY-MM-DD) and its
// videos, newest first.
type DateGroup struct {
	Date   string  `json:"date"`
	Videos []Video `json:"videos"`
}

// EventType identifies a catalog change published to the event exchange.
type EventType string

// EventType constants define the published catalog changes.
const (
	EventVideoCreated EventType = "video.created"
	EventVideoDeleted EventType = "video.deleted"
)

// CatalogEvent is the message body published for catalog changes.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type CatalogEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       EventType `json:"type"`
	VideoID    uuid.UUID `json:"video_id"`
	CategoryID uuid.UUID `json:"category_id"`
	Title      string    `json:"title"`
	IsExternal bool      `json:"is_external"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ErrorResponse represents an error response.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}
