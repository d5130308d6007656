package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vidshelf/media-catalog-go/internal/db"
	"github.com/vidshelf/media-catalog-go/internal/models"
)

type fakeCategoryStore struct {
	categories map[uuid.UUID]*models.Category
	createErr  error
}

func newFakeCategoryStore() *fakeCategoryStore {
	return &fakeCategoryStore{categories: make(map[uuid.UUID]*models.Category)}
}

func (f *fakeCategoryStore) CreateCategory(ctx context.Context, category *models.Category) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.categories {
		if existing.Name == category.Name {
			return db.ErrDuplicateKey
		}
	}
	category.CreatedAt = time.Now()
	clone := *category
	f.categories[category.ID] = &clone
	return nil
}

func (f *fakeCategoryStore) GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, ok := f.categories[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	clone := *category
	return &clone, nil
}

func (f *fakeCategoryStore) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	for _, category := range f.categories {
		if category.Name == name {
			clone := *category
			return &clone, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeCategoryStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	out := make([]models.Category, 0, len(f.categories))
	for _, category := range f.categories {
		out = append(out, *category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeVideoStore struct {
	videos    map[uuid.UUID]*models.Video
	createErr error
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{videos: make(map[uuid.UUID]*models.Video)}
}

func (f *fakeVideoStore) CreateVideo(ctx context.Context, video *models.Video) error {
	if f.createErr != nil {
		return f.createErr
	}
	if video.UploadDate.IsZero() {
		video.UploadDate = time.Now()
	}
	clone := *video
	f.videos[video.ID] = &clone
	return nil
}

func (f *fakeVideoStore) GetVideoByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	video, ok := f.videos[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	clone := *video
	return &clone, nil
}

func (f *fakeVideoStore) ListVideos(ctx context.Context) ([]models.Video, error) {
	out := make([]models.Video, 0, len(f.videos))
	for _, video := range f.videos {
		out = append(out, *video)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadDate.After(out[j].UploadDate) })
	return out, nil
}

func (f *fakeVideoStore) ListVideosByCategoryID(ctx context.Context, categoryID uuid.UUID) ([]models.Video, error) {
	all, _ := f.ListVideos(ctx)
	out := make([]models.Video, 0)
	for _, video := range all {
		if video.CategoryID == categoryID {
			out = append(out, video)
		}
	}
	return out, nil
}

func (f *fakeVideoStore) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.videos[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.videos, id)
	return nil
}

type recordingPublisher struct {
	events []*models.CatalogEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, event *models.CatalogEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func newTestService(t *testing.T, categories *fakeCategoryStore, videos *fakeVideoStore, fetcher *stubFetcher, extractor *stubExtractor, publisher EventPublisher) *CatalogService {
	t.Helper()
	dir := t.TempDir()
	pipeline := NewThumbnailPipeline(fetcher, extractor, NewThumbnailStore(dir, 85))
	return NewCatalogService(categories, videos, pipeline, publisher, t.TempDir(), dir)
}

func TestCatalogService_AddCategory(t *testing.T) {
	t.Run("creates category", func(t *testing.T) {
		categories := newFakeCategoryStore()
		svc := newTestService(t, categories, newFakeVideoStore(), &stubFetcher{}, &stubExtractor{}, nil)

		category, err := svc.AddCategory(context.Background(), "  Tutorials  ")
		if err != nil {
			t.Fatalf("AddCategory() error = %v", err)
		}
		if category.Name != "Tutorials" {
			t.Errorf("Name = %q, want trimmed %q", category.Name, "Tutorials")
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		svc := newTestService(t, newFakeCategoryStore(), newFakeVideoStore(), &stubFetcher{}, &stubExtractor{}, nil)

		_, err := svc.AddCategory(context.Background(), "   ")
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("duplicate name is idempotent", func(t *testing.T) {
		categories := newFakeCategoryStore()
		svc := newTestService(t, categories, newFakeVideoStore(), &stubFetcher{}, &stubExtractor{}, nil)

		first, err := svc.AddCategory(context.Background(), "Music")
		if err != nil {
			t.Fatalf("first AddCategory() error = %v", err)
		}

		second, err := svc.AddCategory(context.Background(), "Music")
		if err != nil {
			t.Fatalf("second AddCategory() error = %v", err)
		}
		if second.ID != first.ID {
			t.Errorf("duplicate create returned a different category: %s vs %s", second.ID, first.ID)
		}
		if len(categories.categories) != 1 {
			t.Errorf("store has %d categories, want 1", len(categories.categories))
		}
	})
}

func TestCatalogService_AddExternalVideo(t *testing.T) {
	categoryID := uuid.New()

	t.Run("creates record with title and thumbnail", func(t *testing.T) {
		videos := newFakeVideoStore()
		publisher := &recordingPublisher{}
		fetcher := &stubFetcher{title: "Some Video", thumbnail: pngBytes(t)}
		svc := newTestService(t, newFakeCategoryStore(), videos, fetcher, &stubExtractor{}, publisher)

		video, err := svc.AddExternalVideo(context.Background(), "https://youtu.be/dQw4w9WgXcQ", categoryID)
		if err != nil {
			t.Fatalf("AddExternalVideo() error = %v", err)
		}
		if video.Title != "Some Video" {
			t.Errorf("Title = %q, want %q", video.Title, "Some Video")
		}
		if !video.IsExternal {
			t.Error("IsExternal = false, want true")
		}
		if video.ThumbnailFilename == "" {
			t.Error("expected a thumbnail filename")
		}
		if len(publisher.events) != 1 || publisher.events[0].Type != models.EventVideoCreated {
			t.Errorf("expected one %s event, got %+v", models.EventVideoCreated, publisher.events)
		}
	})

	t.Run("total pipeline failure is a silent no-op", func(t *testing.T) {
		videos := newFakeVideoStore()
		svc := newTestService(t, newFakeCategoryStore(), videos, &stubFetcher{}, &stubExtractor{}, nil)

		video, err := svc.AddExternalVideo(context.Background(), "https://example.com/not-a-video", categoryID)
		if err != nil {
			t.Fatalf("AddExternalVideo() error = %v", err)
		}
		if video != nil {
			t.Errorf("expected nil video, got %+v", video)
		}
		if len(videos.videos) != 0 {
			t.Errorf("store has %d videos, want 0", len(videos.videos))
		}
	})

	t.Run("thumbnail failure still records with title", func(t *testing.T) {
		videos := newFakeVideoStore()
		fetcher := &stubFetcher{title: "Title Only", thumbnailErr: errors.New("all candidates rejected")}
		svc := newTestService(t, newFakeCategoryStore(), videos, fetcher, &stubExtractor{}, nil)

		video, err := svc.AddExternalVideo(context.Background(), "https://youtu.be/dQw4w9WgXcQ", categoryID)
		if err != nil {
			t.Fatalf("AddExternalVideo() error = %v", err)
		}
		if video.ThumbnailFilename != "" {
			t.Errorf("ThumbnailFilename = %q, want empty", video.ThumbnailFilename)
		}
		if video.Title != "Title Only" {
			t.Errorf("Title = %q, want %q", video.Title, "Title Only")
		}
	})

	t.Run("missing category maps to validation error", func(t *testing.T) {
		videos := newFakeVideoStore()
		videos.createErr = db.ErrForeignKeyViolation
		fetcher := &stubFetcher{title: "Some Video", thumbnail: pngBytes(t)}
		svc := newTestService(t, newFakeCategoryStore(), videos, fetcher, &stubExtractor{}, nil)

		_, err := svc.AddExternalVideo(context.Background(), "https://youtu.be/dQw4w9WgXcQ", categoryID)
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestCatalogService_AddUploadedVideo(t *testing.T) {
	categoryID := uuid.New()

	t.Run("empty title falls back to filename", func(t *testing.T) {
		videos := newFakeVideoStore()
		svc := newTestService(t, newFakeCategoryStore(), videos, &stubFetcher{}, &stubExtractor{frame: testImage()}, nil)

		video, err := svc.AddUploadedVideo(context.Background(), "20250101120000_abcd1234_clip.mp4", "  ", categoryID)
		if err != nil {
			t.Fatalf("AddUploadedVideo() error = %v", err)
		}
		if video.Title != "20250101120000_abcd1234_clip.mp4" {
			t.Errorf("Title = %q, want stored filename", video.Title)
		}
		if video.IsExternal {
			t.Error("IsExternal = true, want false")
		}
		if video.ThumbnailFilename == "" {
			t.Error("expected a thumbnail filename")
		}
	})

	t.Run("frame extraction failure records without thumbnail", func(t *testing.T) {
		videos := newFakeVideoStore()
		svc := newTestService(t, newFakeCategoryStore(), videos, &stubFetcher{}, &stubExtractor{err: errors.New("no video stream")}, nil)

		video, err := svc.AddUploadedVideo(context.Background(), "clip.mp4", "My Clip", categoryID)
		if err != nil {
			t.Fatalf("AddUploadedVideo() error = %v", err)
		}
		if video.ThumbnailFilename != "" {
			t.Errorf("ThumbnailFilename = %q, want empty", video.ThumbnailFilename)
		}
	})
}

func TestCatalogService_DeleteVideo(t *testing.T) {
	t.Run("unknown video returns not found", func(t *testing.T) {
		svc := newTestService(t, newFakeCategoryStore(), newFakeVideoStore(), &stubFetcher{}, &stubExtractor{}, nil)

		err := svc.DeleteVideo(context.Background(), uuid.New())
		if !db.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("removes record and publishes event", func(t *testing.T) {
		videos := newFakeVideoStore()
		publisher := &recordingPublisher{}
		fetcher := &stubFetcher{title: "Some Video", thumbnail: pngBytes(t)}
		svc := newTestService(t, newFakeCategoryStore(), videos, fetcher, &stubExtractor{}, publisher)

		video, err := svc.AddExternalVideo(context.Background(), "https://youtu.be/dQw4w9WgXcQ", uuid.New())
		if err != nil {
			t.Fatalf("AddExternalVideo() error = %v", err)
		}

		if err := svc.DeleteVideo(context.Background(), video.ID); err != nil {
			t.Fatalf("DeleteVideo() error = %v", err)
		}
		if len(videos.videos) != 0 {
			t.Errorf("store has %d videos, want 0", len(videos.videos))
		}
		last := publisher.events[len(publisher.events)-1]
		if last.Type != models.EventVideoDeleted {
			t.Errorf("last event = %s, want %s", last.Type, models.EventVideoDeleted)
		}
	})

	t.Run("publisher failure does not fail the delete", func(t *testing.T) {
		videos := newFakeVideoStore()
		video := &models.Video{ID: uuid.New(), Title: "t", IsExternal: true, ExternalURL: "https://youtu.be/dQw4w9WgXcQ", CategoryID: uuid.New()}
		if err := videos.CreateVideo(context.Background(), video); err != nil {
			t.Fatal(err)
		}
		publisher := &recordingPublisher{err: errors.New("broker unavailable")}
		svc := newTestService(t, newFakeCategoryStore(), videos, &stubFetcher{}, &stubExtractor{}, publisher)

		if err := svc.DeleteVideo(context.Background(), video.ID); err != nil {
			t.Fatalf("DeleteVideo() error = %v", err)
		}
	})
}

func TestCatalogService_CalendarGroups(t *testing.T) {
	videos := newFakeVideoStore()
	categoryID := uuid.New()

	day := func(d int, hour int) time.Time {
		return time.Date(2025, time.March, d, hour, 0, 0, 0, time.UTC)
	}
	for i, ts := range []time.Time{day(3, 9), day(3, 18), day(1, 12), day(2, 8)} {
		video := &models.Video{ID: uuid.New(), Title: "v", IsExternal: true, ExternalURL: "https://youtu.be/dQw4w9WgXcQ", CategoryID: categoryID, UploadDate: ts}
		if err := videos.CreateVideo(context.Background(), video); err != nil {
			t.Fatalf("seed video %d: %v", i, err)
		}
	}

	svc := newTestService(t, newFakeCategoryStore(), videos, &stubFetcher{}, &stubExtractor{}, nil)
	groups, err := svc.CalendarGroups(context.Background())
	if err != nil {
		t.Fatalf("CalendarGroups() error = %v", err)
	}

	wantDates := []string{"2025-03-03", "2025-03-02", "2025-03-01"}
	if len(groups) != len(wantDates) {
		t.Fatalf("got %d groups, want %d", len(groups), len(wantDates))
	}
	for i, want := range wantDates {
		if groups[i].Date != want {
			t.Errorf("group %d date = %s, want %s", i, groups[i].Date, want)
		}
	}
	if len(groups[0].Videos) != 2 {
		t.Errorf("newest day has %d videos, want 2", len(groups[0].Videos))
	}
	if !groups[0].Videos[0].UploadDate.After(groups[0].Videos[1].UploadDate) {
		t.Error("videos within a day should be newest first")
	}
}

func TestCatalogService_GalleryGroups(t *testing.T) {
	categories := newFakeCategoryStore()
	videos := newFakeVideoStore()
	svc := newTestService(t, categories, videos, &stubFetcher{}, &stubExtractor{}, nil)

	music, err := svc.AddCategory(context.Background(), "Music")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddCategory(context.Background(), "Art"); err != nil {
		t.Fatal(err)
	}

	video := &models.Video{ID: uuid.New(), Title: "v", IsExternal: true, ExternalURL: "https://youtu.be/dQw4w9WgXcQ", CategoryID: music.ID}
	if err := videos.CreateVideo(context.Background(), video); err != nil {
		t.Fatal(err)
	}

	groups, err := svc.GalleryGroups(context.Background())
	if err != nil {
		t.Fatalf("GalleryGroups() error = %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Category.Name != "Art" || groups[1].Category.Name != "Music" {
		t.Errorf("groups not sorted by name: %s, %s", groups[0].Category.Name, groups[1].Category.Name)
	}
	if len(groups[0].Videos) != 0 {
		t.Errorf("empty category has %d videos", len(groups[0].Videos))
	}
	if len(groups[1].Videos) != 1 {
		t.Errorf("Music category has %d videos, want 1", len(groups[1].Videos))
	}
}

func TestGenerateUploadFilename(t *testing.T) {
	t.Run("carries sanitized original name", func(t *testing.T) {
		got := GenerateUploadFilename("my clip (1).mp4")
		if got == "" {
			t.Fatal("expected a filename")
		}
		if !strings.HasSuffix(got, "_my_clip_1_.mp4") {
			t.Errorf("filename = %q, want sanitized original name suffix", got)
		}
	})

	t.Run("hostile name sanitizes to nothing", func(t *testing.T) {
		if got := GenerateUploadFilename("...."); got != "" {
			t.Errorf("filename = %q, want empty", got)
		}
	})

	t.Run("consecutive names differ", func(t *testing.T) {
		if GenerateUploadFilename("clip.mp4") == GenerateUploadFilename("clip.mp4") {
			t.Error("consecutive filenames should differ")
		}
	})
}
