package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"smritikosha/memory-api/ai"
	"smritikosha/memory-api/model"
	"smritikosha/memory-api/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrMemoryNotFound means the memory doesn't exist or isn't owned by
	// the caller. The two cases are deliberately indistinguishable
	ErrMemoryNotFound = errors.New("memory not found")

	// ErrNoImages means no image of the memory could be turned into a frame
	ErrNoImages = errors.New("memory has no usable images")

	// ErrBadGeneration means the generation step returned something that
	// doesn't match the required JSON schema. Never retried
	ErrBadGeneration = errors.New("generation response violates schema")
)

// How long image signed URLs stay valid. Long enough for the client to
// preview and export the reel in one sitting
const imageURLExpiry = time.Hour

// SmartDuration computes the per-frame default so a full reel lands near
// one minute while a frame is never shown shorter than 1.8s or longer
// than 3s
func SmartDuration(imageCount int) float64 {
	d := 60.0 / float64(imageCount)
	if d < 1.8 {
		return 1.8
	}
	if d > 3.0 {
		return 3.0
	}
	return d
}

// FlowBuilder turns a memory's photos into a reel preview: signed image
// URLs, an LLM-proposed frame order with captions and effects, and at
// most StylizeBudget regenerated stylized images
type FlowBuilder struct {
	DB      *gorm.DB
	Store   storage.ObjectStore
	Buckets storage.Buckets
	AI      ai.Client

	// Hard cap on frames that may receive a regenerated image per reel
	StylizeBudget int
}

// ReelPreview is what the client needs to play and later save a reel
type ReelPreview struct {
	MemoryID        string            `json:"memoryId"`
	Title           string            `json:"title"`
	Summary         string            `json:"summary,omitempty"`
	Theme           string            `json:"theme"`
	Mood            string            `json:"mood"`
	MusicStyle      string            `json:"musicStyle"`
	VisualFlow      []model.ReelFrame `json:"visualFlow"`
	MemoryTags      []string          `json:"memoryTags"`
	DurationSeconds float64           `json:"durationSeconds"`
}

// sourceFrame is one image that survived signed URL generation
type sourceFrame struct {
	model.ReelFrame
	tags []string
}

// Build produces the visual flow for a memory owned by userID
func (b *FlowBuilder) Build(ctx context.Context, userID, memoryID string) (*ReelPreview, error) {
	var memory model.Memory

	err := b.DB.
		Preload("Images").
		Where("id = ? AND user_id = ?", memoryID, userID).
		First(&memory).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemoryNotFound
		}
		return nil, fmt.Errorf("failed to fetch memory, %w", err)
	}

	if len(memory.Images) == 0 {
		return nil, ErrNoImages
	}

	sources := b.signSources(ctx, memory.Images)
	if len(sources) == 0 {
		return nil, ErrNoImages
	}

	smart := SmartDuration(len(sources))

	raw, err := b.AI.Chat(ctx, flowPrompt(&memory, sources, smart))
	if err != nil {
		return nil, fmt.Errorf("flow generation failed, %w", err)
	}

	gen, err := parseGeneration(raw)
	if err != nil {
		return nil, err
	}

	flow := reconcileFlow(gen.VisualFlow, sources, smart)
	b.stylizeFrames(ctx, flow)

	var total float64
	for _, f := range flow {
		total += f.Duration
	}

	title := gen.Title
	if title == "" {
		title = memory.Title
	}

	return &ReelPreview{
		MemoryID:        memoryID,
		Title:           title,
		Theme:           gen.Theme,
		Mood:            gen.Mood,
		MusicStyle:      gen.MusicStyle,
		VisualFlow:      flow,
		MemoryTags:      memory.Tags,
		DurationSeconds: total,
	}, nil
}

// signSources generates a signed URL per image concurrently. Images whose
// URL can't be generated are dropped with a warning, never fatal
func (b *FlowBuilder) signSources(ctx context.Context, images []model.MemoryImage) []sourceFrame {
	results := make([]*sourceFrame, len(images))

	var wg sync.WaitGroup
	for i, img := range images {
		wg.Add(1)

		go func() {
			defer wg.Done()

			url, err := b.Store.PresignGet(ctx, b.Buckets.Images, img.ImagePath, imageURLExpiry)
			if err != nil {
				zap.L().Warn("Failed to generate signed URL, dropping image",
					zap.String("imageID", img.ID),
					zap.Error(err))
				return
			}

			f := sourceFrame{tags: img.Tags}
			f.ImageID = img.ID
			f.ImageURL = url
			f.Caption = img.Description
			f.Location = img.Location
			if img.CaptureDate != nil {
				f.Date = img.CaptureDate.Format("2006-01-02")
			}

			results[i] = &f
		}()
	}
	wg.Wait()

	sources := make([]sourceFrame, 0, len(images))
	for _, r := range results {
		if r != nil {
			sources = append(sources, *r)
		}
	}

	return sources
}

// stylizeFrames regenerates the image of up to StylizeBudget frames
// flagged with the ghibli effect. Regeneration is best effort: a failed
// call leaves the original image in place. Frames flagged beyond the
// budget also keep their original image
func (b *FlowBuilder) stylizeFrames(ctx context.Context, flow []model.ReelFrame) {
	budget := b.StylizeBudget

	for i := range flow {
		if flow[i].Effect != model.EffectGhibli {
			continue
		}
		if budget <= 0 {
			continue
		}
		budget--

		url, err := b.AI.GenerateImage(ctx, StylizePrompt(flow[i].ImageURL))
		if err != nil {
			zap.L().Warn("Stylized regeneration failed, keeping original image",
				zap.String("imageID", flow[i].ImageID),
				zap.Error(err))
			continue
		}

		flow[i].ImageURL = url
	}
}

// generation is the exact JSON shape the chat call must return
type generation struct {
	Title      string            `json:"title"`
	Theme      string            `json:"theme"`
	Mood       string            `json:"mood"`
	MusicStyle string            `json:"musicStyle"`
	VisualFlow []model.ReelFrame `json:"visualFlow"`
}

// parseGeneration validates the raw completion against the required
// schema. Anything missing or malformed fails with ErrBadGeneration and
// is not retried
func parseGeneration(raw string) (*generation, error) {
	raw = stripCodeFence(raw)

	var gen generation
	if err := json.Unmarshal([]byte(raw), &gen); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadGeneration, err)
	}

	if gen.Theme == "" || gen.Mood == "" || gen.MusicStyle == "" {
		return nil, fmt.Errorf("%w: missing theme, mood or musicStyle", ErrBadGeneration)
	}
	if len(gen.VisualFlow) == 0 {
		return nil, fmt.Errorf("%w: visualFlow is missing or empty", ErrBadGeneration)
	}

	return &gen, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models insist on
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// reconcileFlow forces the invariant that every source image appears in
// the flow exactly once. Proposed frames referencing unknown images are
// dropped, sources the model skipped are appended with defaults, and
// durations/effects are normalized
func reconcileFlow(proposed []model.ReelFrame, sources []sourceFrame, smart float64) []model.ReelFrame {
	bySource := make(map[string]sourceFrame, len(sources))
	for _, s := range sources {
		bySource[s.ImageID] = s
	}

	flow := make([]model.ReelFrame, 0, len(sources))
	seen := make(map[string]bool, len(sources))

	for _, p := range proposed {
		src, ok := bySource[p.ImageID]
		if !ok || seen[p.ImageID] {
			continue
		}
		seen[p.ImageID] = true

		f := p
		// The signed URL is authoritative, models occasionally truncate it
		f.ImageURL = src.ImageURL
		f.Location = src.Location
		f.Date = src.Date
		if f.Caption == "" {
			f.Caption = src.Caption
		}
		if f.Duration <= 0 {
			f.Duration = smart
		}
		if !model.ValidEffect(f.Effect) {
			f.Effect = model.EffectNone
		}

		flow = append(flow, f)
	}

	for _, s := range sources {
		if seen[s.ImageID] {
			continue
		}

		f := s.ReelFrame
		f.Duration = smart
		f.Effect = model.EffectNone
		flow = append(flow, f)
	}

	return flow
}

func flowPrompt(memory *model.Memory, sources []sourceFrame, smart float64) string {
	var sb strings.Builder

	sb.WriteString("You are directing a short vertical photo reel for a personal memory journal.\n")
	fmt.Fprintf(&sb, "Memory title: %s\n", memory.Title)
	if memory.Location != "" {
		fmt.Fprintf(&sb, "Location: %s\n", memory.Location)
	}
	if memory.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", memory.Description)
	}
	if len(memory.Tags) > 0 {
		fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(memory.Tags, ", "))
	}

	sb.WriteString("\nPhotos (use every id exactly once):\n")
	for _, s := range sources {
		fmt.Fprintf(&sb, "- id=%s caption=%q location=%q date=%q tags=%q\n",
			s.ImageID, s.Caption, s.Location, s.Date, strings.Join(s.tags, " "))
	}

	fmt.Fprintf(&sb, `
Order the photos into an emotionally coherent sequence. Respond with JSON
only, no prose, exactly this shape:
{"title": string, "theme": string, "mood": string, "musicStyle": string,
 "visualFlow": [{"imageId": string, "caption": string, "duration": number,
 "effect": "fade"|"zoom"|"pan"|"ghibli"|"map-travel"|"none"}]}
Default duration is %.1f seconds per frame. Flag at most 2 frames with the
"ghibli" effect.`, smart)

	return sb.String()
}

// StylizePrompt is the image generation prompt for the ghibli effect.
// Shared with the standalone stylize endpoint
func StylizePrompt(imageURL string) string {
	return fmt.Sprintf(`Studio Ghibli style illustration of a poetic moment captured in this image: %s.
Warm tones, soft lighting, nature-inspired, detailed background, inspired by Hayao Miyazaki's visual storytelling.`, imageURL)
}
