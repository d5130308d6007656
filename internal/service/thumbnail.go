// Package service provides the ingestion business logic for the media catalog.
package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif" // register decoders for remote thumbnail bodies
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vidshelf/media-catalog-go/internal/metrics"
	"github.com/vidshelf/media-catalog-go/internal/service/youtube"
	"github.com/vidshelf/media-catalog-go/pkg/logger"
)

const filenameTimeFormat = "20060102150405"

// PlaceholderExternalTitle is the display title recorded when no title
// could be resolved for an external video.
const PlaceholderExternalTitle = youtube.PlaceholderTitle

// ThumbnailStore writes derived thumbnail images into the thumbnail
// directory as quality-controlled JPEG files.
type ThumbnailStore struct {
	dir     string
	quality int
}

// NewThumbnailStore creates a ThumbnailStore writing into dir.
func NewThumbnailStore(dir string, quality int) *ThumbnailStore {
	return &ThumbnailStore{dir: dir, quality: quality}
}

// SaveRemote decodes a fetched thumbnail body, normalizes it to RGBA, and
// writes it as a JPEG named after the video identifier. Returns the
// stored filename.
func (s *ThumbnailStore) SaveRemote(data []byte, videoID string) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode thumbnail: %w", err)
	}
	return s.save(img, "yt_"+videoID)
}

// SaveFrame writes an extracted video frame as a JPEG. Returns the
// stored filename.
func (s *ThumbnailStore) SaveFrame(img image.Image) (string, error) {
	return s.save(img, "video")
}

func (s *ThumbnailStore) save(img image.Image, prefix string) (string, error) {
	// Normalize the color model; remote bodies may decode as paletted
	// or grayscale images.
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	filename := generateFilename(prefix, "jpg")
	path := filepath.Join(s.dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create thumbnail file: %w", err)
	}

	if err := jpeg.Encode(f, rgba, &jpeg.Options{Quality: s.quality}); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close thumbnail file: %w", err)
	}
	return filename, nil
}

// generateFilename builds a stored-file name from a prefix, the current
// timestamp, and a UUID segment. The UUID keeps concurrent requests
// within the same second from colliding.
func generateFilename(prefix, ext string) string {
	stamp := time.Now().Format(filenameTimeFormat)
	return fmt.Sprintf("%s_%s_%s.%s", prefix, stamp, uuid.NewString()[:8], ext)
}

// remoteFetcher retrieves external video metadata and thumbnail bodies.
type remoteFetcher interface {
	FetchTitle(ctx context.Context, videoID string) string
	FetchThumbnail(ctx context.Context, videoID string) ([]byte, error)
}

// frameExtractor decodes a representative frame from a stored video file.
type frameExtractor interface {
	ExtractFrame(ctx context.Context, videoPath string) (image.Image, error)
}

// ThumbnailResult is the outcome of a pipeline run. Either field may be
// empty; both empty means the external source was unusable.
type ThumbnailResult struct {
	Filename string
	Title    string
}

// ThumbnailPipeline derives a representative still image and display
// title for either ingestion path. Every stage degrades instead of
// failing: the worst outcome is an empty filename or placeholder title.
type ThumbnailPipeline struct {
	fetcher remoteFetcher
	frames  frameExtractor
	store   *ThumbnailStore
}

// NewThumbnailPipeline composes the pipeline from its stages.
func NewThumbnailPipeline(fetcher remoteFetcher, frames frameExtractor, store *ThumbnailStore) *ThumbnailPipeline {
	return &ThumbnailPipeline{
		fetcher: fetcher,
		frames:  frames,
		store:   store,
	}
}

// ForExternal resolves a thumbnail and title for a linked external
// video. When the URL yields no identifier, it returns an empty result
// without touching the network.
func (p *ThumbnailPipeline) ForExternal(ctx context.Context, videoURL string) ThumbnailResult {
	videoID, ok := youtube.ExtractVideoID(videoURL)
	if !ok {
		logger.Log.Info("no video identifier in URL", zap.String("url", videoURL))
		return ThumbnailResult{}
	}

	title := p.fetcher.FetchTitle(ctx, videoID)

	data, err := p.fetcher.FetchThumbnail(ctx, videoID)
	if err != nil {
		logger.Log.Warn("thumbnail fetch failed, keeping title only",
			zap.String("videoId", videoID),
			zap.Error(err),
		)
		metrics.ThumbnailResults.WithLabelValues("external", "missing").Inc()
		return ThumbnailResult{Title: title}
	}

	filename, err := p.store.SaveRemote(data, videoID)
	if err != nil {
		logger.Log.Warn("thumbnail save failed, keeping title only",
			zap.String("videoId", videoID),
			zap.Error(err),
		)
		metrics.ThumbnailResults.WithLabelValues("external", "missing").Inc()
		return ThumbnailResult{Title: title}
	}

	metrics.ThumbnailResults.WithLabelValues("external", "stored").Inc()
	return ThumbnailResult{Filename: filename, Title: title}
}

// ForUpload derives a thumbnail from a saved upload. Returns the stored
// filename, or "" when the frame could not be extracted.
func (p *ThumbnailPipeline) ForUpload(ctx context.Context, videoPath string) string {
	frame, err := p.frames.ExtractFrame(ctx, videoPath)
	if err != nil {
		logger.Log.Warn("frame extraction failed",
			zap.String("path", videoPath),
			zap.Error(err),
		)
		metrics.ThumbnailResults.WithLabelValues("upload", "missing").Inc()
		return ""
	}

	filename, err := p.store.SaveFrame(frame)
	if err != nil {
		logger.Log.Warn("frame save failed",
			zap.String("path", videoPath),
			zap.Error(err),
		)
		metrics.ThumbnailResults.WithLabelValues("upload", "missing").Inc()
		return ""
	}

	metrics.ThumbnailResults.WithLabelValues("upload", "stored").Inc()
	return filename
}
