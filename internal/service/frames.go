package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vidshelf/media-catalog-go/pkg/logger"
)

const (
	defaultFrameRate = 25.0
	extractTimeout   = 30 * time.Second
)

// FrameExtractor decodes a single representative frame from a stored
// video file using ffprobe and ffmpeg.
type FrameExtractor struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFrameExtractor creates a FrameExtractor invoking the given binaries.
func NewFrameExtractor(ffmpegPath, ffprobePath string) *FrameExtractor {
	return &FrameExtractor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}
}

// videoProbe is the subset of stream metadata the extractor needs.
type videoProbe struct {
	FrameRate   float64
	TotalFrames int
}

// SelectFrameIndex picks the frame to extract: the 1-second mark, capped
// at the midpoint for videos shorter than two seconds so the seek never
// runs past end-of-stream. Unknown totals select frame zero.
func SelectFrameIndex(frameRate float64, totalFrames int) int {
	midpoint := 0
	if totalFrames > 0 {
		midpoint = totalFrames / 2
	}
	oneSecond := int(frameRate)
	if oneSecond < midpoint {
		return oneSecond
	}
	return midpoint
}

// ExtractFrame probes the video and decodes the selected frame. Any
// failure (unreadable file, probe failure, decode failure) returns an
// error; callers degrade to "no thumbnail".
func (fe *FrameExtractor) ExtractFrame(ctx context.Context, videoPath string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	probe, err := fe.probe(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("probe video: %w", err)
	}

	frameIndex := SelectFrameIndex(probe.FrameRate, probe.TotalFrames)
	seekSeconds := float64(frameIndex) / probe.FrameRate

	logger.Log.Debug("extracting frame",
		zap.String("path", videoPath),
		zap.Float64("fps", probe.FrameRate),
		zap.Int("totalFrames", probe.TotalFrames),
		zap.Int("frameIndex", frameIndex),
	)

	args := []string{
		"-ss", fmt.Sprintf("%.3f", seekSeconds),
		"-i", videoPath,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	}

	cmd := exec.CommandContext(ctx, fe.ffmpegPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w, output: %s", err, stderr.String())
	}

	frame, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return frame, nil
}

func (fe *FrameExtractor) probe(ctx context.Context, videoPath string) (videoProbe, error) {
	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_streams",
		"-of", "json",
		videoPath,
	}

	cmd := exec.CommandContext(ctx, fe.ffprobePath, args...)
	out, err := cmd.Output()
	if err != nil {
		return videoProbe{}, fmt.Errorf("ffprobe: %w", err)
	}

	return parseProbeOutput(out)
}

// parseProbeOutput extracts the frame rate and frame count from ffprobe
// JSON. A missing or zero frame rate falls back to 25 fps; a missing
// frame count is reported as zero.
func parseProbeOutput(data []byte) (videoProbe, error) {
	var payload struct {
		Streams []struct {
			RFrameRate string `json:"r_frame_rate"`
			NbFrames   string `json:"nb_frames"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return videoProbe{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(payload.Streams) == 0 {
		return videoProbe{}, fmt.Errorf("no video stream found")
	}

	stream := payload.Streams[0]

	probe := videoProbe{FrameRate: parseFrameRate(stream.RFrameRate)}
	if probe.FrameRate <= 0 {
		probe.FrameRate = defaultFrameRate
	}
	if n, err := strconv.Atoi(stream.NbFrames); err == nil {
		probe.TotalFrames = n
	}
	return probe, nil
}

// parseFrameRate parses ffprobe's rational notation ("25/1", "30000/1001").
func parseFrameRate(rate string) float64 {
	num, den, found := strings.Cut(rate, "/")
	if !found {
		f, err := strconv.ParseFloat(rate, 64)
		if err != nil {
			return 0
		}
		return f
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
