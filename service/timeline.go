// Package service contains the reel pipeline: building the visual flow,
// turning a flow into a playback/export schedule and rendering it to MP4
package service

import "smritikosha/memory-api/model"

// Timing constants shared by the renderer and the client facing schedule.
// Export timing matches the canvas capture path the web client used to
// implement; playback timing matches the in-app slideshow player
const (
	TitleCardExportSeconds   = 2.0
	TitleCardPlaybackSeconds = 3.0

	defaultExportFrameSeconds   = 3.0
	defaultPlaybackFrameSeconds = 3.5
	minExportFrameSeconds       = 1.0

	// Entry/exit tween applied around each frame during playback
	TweenSeconds = 1.2
)

// TitleIndex marks the title card segment in a schedule
const TitleIndex = -1

// Segment is one step of a reel schedule: the title card or a single
// frame with its hold time
type Segment struct {
	// Index into the visual flow, or TitleIndex for the title card
	Index int `json:"index"`

	ImageURL string  `json:"imageUrl,omitempty"`
	Caption  string  `json:"caption,omitempty"`
	Effect   string  `json:"effect,omitempty"`
	Start    float64 `json:"start"`
	Hold     float64 `json:"hold"`
	Entry    float64 `json:"entry,omitempty"`
	Exit     float64 `json:"exit,omitempty"`
}

type Timeline struct {
	Segments []Segment `json:"segments"`
	// Total wall-clock duration in seconds
	Total float64 `json:"total"`
}

// ExportFrameSeconds applies the export duration policy: non-positive
// durations fall back to 3s, anything below one second is clamped up.
// Callers must not assume validation happened upstream
func ExportFrameSeconds(d float64) float64 {
	if d <= 0 {
		d = defaultExportFrameSeconds
	}
	if d < minExportFrameSeconds {
		d = minExportFrameSeconds
	}
	return d
}

// ExportTimeline computes the schedule the renderer follows: a 2s title
// card followed by every frame held for its clamped duration
func ExportTimeline(flow []model.ReelFrame) Timeline {
	tl := Timeline{
		Segments: make([]Segment, 0, len(flow)+1),
	}

	tl.Segments = append(tl.Segments, Segment{
		Index: TitleIndex,
		Hold:  TitleCardExportSeconds,
	})
	tl.Total = TitleCardExportSeconds

	for i, f := range flow {
		hold := ExportFrameSeconds(f.Duration)

		tl.Segments = append(tl.Segments, Segment{
			Index:    i,
			ImageURL: f.ImageURL,
			Caption:  f.Caption,
			Effect:   f.Effect,
			Start:    tl.Total,
			Hold:     hold,
		})
		tl.Total += hold
	}

	return tl
}

// PlaybackTimeline computes the schedule a client player follows. Each
// frame dwell is entry tween + duration (default 3.5s) + exit tween
func PlaybackTimeline(flow []model.ReelFrame) Timeline {
	tl := Timeline{
		Segments: make([]Segment, 0, len(flow)+1),
	}

	tl.Segments = append(tl.Segments, Segment{
		Index: TitleIndex,
		Hold:  TitleCardPlaybackSeconds,
	})
	tl.Total = TitleCardPlaybackSeconds

	for i, f := range flow {
		hold := f.Duration
		if hold <= 0 {
			hold = defaultPlaybackFrameSeconds
		}

		tl.Segments = append(tl.Segments, Segment{
			Index:    i,
			ImageURL: f.ImageURL,
			Caption:  f.Caption,
			Effect:   f.Effect,
			Start:    tl.Total,
			Hold:     hold,
			Entry:    TweenSeconds,
			Exit:     TweenSeconds,
		})
		tl.Total += TweenSeconds + hold + TweenSeconds
	}

	return tl
}
