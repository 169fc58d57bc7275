package service

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"smritikosha/memory-api/model"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	reelWidth  = 1080
	reelHeight = 1920
	reelFPS    = 30

	// How many frame images are fetched at once
	fetchParallelism = 4
)

var imageFetchClient = &http.Client{
	Timeout: 30 * time.Second,
}

// runRenderJob renders the visual flow into a fragmented MP4: a 2s title
// card followed by every frame held for its clamped duration, all piped
// out of a single ffmpeg invocation
func runRenderJob(ctx context.Context, title string, params model.RenderParams, threads int) (*RenderResult, error) {
	if len(params.VisualFlow) == 0 {
		return nil, errors.New("no frames to render")
	}

	tl := ExportTimeline(params.VisualFlow)

	dir, err := os.MkdirTemp("", "reel-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir, %w", err)
	}
	defer os.RemoveAll(dir)

	paths := fetchFrameImages(ctx, dir, params.VisualFlow)

	args := buildFFmpegArgs(tl, title, params, paths, threads)

	cmd := exec.CommandContext(ctx, viper.GetString("render.ffmpeg_path"), args...)

	zap.L().Debug("Running FFmpeg command", zap.String("cmd", cmd.String()))

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed, %w: %s", err, tail(stderr.String()))
	}

	mp4 := out.Bytes()
	if len(mp4) == 0 {
		return nil, errors.New("ffmpeg produced no output")
	}

	sum := sha1.Sum(mp4)

	return &RenderResult{
		MP4:             mp4,
		Poster:          makePoster(ctx, dir, mp4),
		DurationSeconds: tl.Total,
		Checksum:        hex.EncodeToString(sum[:]),
	}, nil
}

// fetchFrameImages downloads every frame image into dir. A frame whose
// image can't be fetched gets an empty path and renders as a black frame,
// it never aborts the export
func fetchFrameImages(ctx context.Context, dir string, flow []model.ReelFrame) []string {
	paths := make([]string, len(flow))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchParallelism)

	for i, f := range flow {
		g.Go(func() error {
			p := filepath.Join(dir, "frame_"+strconv.Itoa(i))

			if err := fetchImage(ctx, f.ImageURL, p); err != nil {
				zap.L().Warn("Failed to fetch frame image, rendering blank",
					zap.Int("frame", i),
					zap.Error(err))
				return nil
			}

			paths[i] = p
			return nil
		})
	}
	g.Wait()

	return paths
}

func fetchImage(ctx context.Context, url, dest string) error {
	if url == "" {
		return errors.New("no image url")
	}

	// Stylized frames may carry their image inline as a data URL
	if strings.HasPrefix(url, "data:") {
		_, payload, ok := strings.Cut(url, ",")
		if !ok {
			return errors.New("malformed data url")
		}

		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return fmt.Errorf("failed to decode data url, %w", err)
		}

		return os.WriteFile(dest, raw, 0o600)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := imageFetchClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, resp.Body)
	return err
}

// buildFFmpegArgs assembles one ffmpeg invocation: input 0 is the title
// card (lavfi color source), every following input is either a looped
// image or a black filler for frames whose image is missing. All inputs
// are scaled/padded to 1080x1920 and concatenated
func buildFFmpegArgs(tl Timeline, title string, params model.RenderParams, paths []string, threads int) []string {
	size := fmt.Sprintf("%dx%d", reelWidth, reelHeight)

	args := []string{
		"-f", "lavfi",
		"-t", formatSeconds(TitleCardExportSeconds),
		"-r", strconv.Itoa(reelFPS),
		"-i", "color=c=white:s=" + size,
	}

	for i, seg := range tl.Segments[1:] {
		hold := formatSeconds(seg.Hold)

		if paths[i] != "" {
			args = append(args,
				"-loop", "1",
				"-t", hold,
				"-r", strconv.Itoa(reelFPS),
				"-i", paths[i],
			)
		} else {
			args = append(args,
				"-f", "lavfi",
				"-t", hold,
				"-r", strconv.Itoa(reelFPS),
				"-i", "color=c=black:s="+size,
			)
		}
	}

	var fc strings.Builder

	if title == "" {
		title = "My SmritiKosha Reel"
	}
	fmt.Fprintf(&fc, "[0:v]drawtext=text='%s':fontcolor=0x111827:fontsize=72:x=(w-text_w)/2:y=(h-text_h)/2-60", drawtextEscape(title))

	subtitle := joinNonEmpty(" - ", params.Theme, params.Mood)
	if subtitle != "" {
		fmt.Fprintf(&fc, ",drawtext=text='%s':fontcolor=0x6B7280:fontsize=36:x=(w-text_w)/2:y=(h-text_h)/2+40", drawtextEscape(subtitle))
	}
	fc.WriteString(",setsar=1,format=yuv420p[v0];")

	for i, seg := range tl.Segments[1:] {
		fmt.Fprintf(&fc, "[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=white",
			i+1, reelWidth, reelHeight, reelWidth, reelHeight)

		if seg.Caption != "" {
			fmt.Fprintf(&fc, ",drawtext=text='%s':fontcolor=0xF9FAFB:fontsize=42:box=1:boxcolor=black@0.6:boxborderw=24:x=(w-text_w)/2:y=h-220",
				drawtextEscape(seg.Caption))
		}

		fmt.Fprintf(&fc, ",setsar=1,format=yuv420p[v%d];", i+1)
	}

	for i := range tl.Segments {
		fmt.Fprintf(&fc, "[v%d]", i)
	}
	fmt.Fprintf(&fc, "concat=n=%d:v=1:a=0[outv]", len(tl.Segments))

	args = append(args,
		"-filter_complex", fc.String(),
		"-map", "[outv]",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-threads", strconv.Itoa(threads),
		"-an",
		"-movflags", "frag_keyframe+empty_moov",
		"-loglevel", "error",
		"-nostats",
		"-f", "mp4",
		"pipe:1",
	)

	return args
}

// makePoster extracts the first real frame (right after the title card)
// as a JPEG. Poster extraction failing is not fatal to the render
func makePoster(ctx context.Context, dir string, mp4 []byte) []byte {
	src := filepath.Join(dir, "out.mp4")
	if err := os.WriteFile(src, mp4, 0o600); err != nil {
		zap.L().Warn("Failed to write video for poster extraction", zap.Error(err))
		return nil
	}

	cmd := exec.CommandContext(ctx, viper.GetString("render.ffmpeg_path"),
		"-ss", formatSeconds(TitleCardExportSeconds),
		"-i", src,
		"-frames:v", "1",
		"-c:v", "mjpeg",
		"-loglevel", "error",
		"-f", "image2pipe",
		"pipe:1",
	)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		zap.L().Warn("Poster extraction failed", zap.Error(err), zap.String("stderr", tail(stderr.String())))
		return nil
	}

	if out.Len() == 0 {
		return nil
	}

	return out.Bytes()
}

// drawtextEscape escapes the characters the drawtext filter treats
// specially inside a quoted text value
func drawtextEscape(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
		`,`, `\,`,
	)
	return r.Replace(s)
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

// tail keeps error messages readable, ffmpeg can be very chatty
func tail(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
