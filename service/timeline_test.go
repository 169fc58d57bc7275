package service

import (
	"math"
	"testing"

	"smritikosha/memory-api/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestExportFrameSeconds(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 3.0},
		{-2, 3.0},
		{0.2, 1.0},
		{1.0, 1.0},
		{2.5, 2.5},
	}

	for _, c := range cases {
		if got := ExportFrameSeconds(c.in); !almostEqual(got, c.want) {
			t.Errorf("ExportFrameSeconds(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestExportTimeline(t *testing.T) {
	flow := []model.ReelFrame{
		{ImageURL: "a", Duration: 2},
		{ImageURL: "b", Duration: 3},
		{ImageURL: "c", Duration: 1.5},
	}

	tl := ExportTimeline(flow)

	if len(tl.Segments) != 4 {
		t.Fatalf("expected 4 segments, got %d", len(tl.Segments))
	}

	if tl.Segments[0].Index != TitleIndex {
		t.Errorf("first segment should be the title card, got index %d", tl.Segments[0].Index)
	}
	if !almostEqual(tl.Segments[0].Hold, TitleCardExportSeconds) {
		t.Errorf("title card hold = %v, want %v", tl.Segments[0].Hold, TitleCardExportSeconds)
	}

	wantStarts := []float64{2, 4, 7}
	for i, want := range wantStarts {
		if got := tl.Segments[i+1].Start; !almostEqual(got, want) {
			t.Errorf("segment %d start = %v, want %v", i, got, want)
		}
	}

	if !almostEqual(tl.Total, 8.5) {
		t.Errorf("total = %v, want 8.5", tl.Total)
	}
}

func TestExportTimelineClampsShortFrames(t *testing.T) {
	flow := []model.ReelFrame{
		{ImageURL: "a", Duration: 0},
		{ImageURL: "b", Duration: 0.3},
	}

	tl := ExportTimeline(flow)

	if !almostEqual(tl.Segments[1].Hold, 3.0) {
		t.Errorf("zero duration should fall back to 3s, got %v", tl.Segments[1].Hold)
	}
	if !almostEqual(tl.Segments[2].Hold, 1.0) {
		t.Errorf("sub-second duration should clamp to 1s, got %v", tl.Segments[2].Hold)
	}
}

func TestPlaybackTimeline(t *testing.T) {
	flow := []model.ReelFrame{
		{ImageURL: "a", Duration: 0},
		{ImageURL: "b", Duration: 2},
	}

	tl := PlaybackTimeline(flow)

	if len(tl.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(tl.Segments))
	}

	if !almostEqual(tl.Segments[0].Hold, TitleCardPlaybackSeconds) {
		t.Errorf("title card hold = %v, want %v", tl.Segments[0].Hold, TitleCardPlaybackSeconds)
	}

	// Unset durations get the 3.5s playback default
	if !almostEqual(tl.Segments[1].Hold, 3.5) {
		t.Errorf("default hold = %v, want 3.5", tl.Segments[1].Hold)
	}

	for i, seg := range tl.Segments[1:] {
		if !almostEqual(seg.Entry, TweenSeconds) || !almostEqual(seg.Exit, TweenSeconds) {
			t.Errorf("segment %d tweens = %v/%v, want %v", i, seg.Entry, seg.Exit, TweenSeconds)
		}
	}

	// 3 + (1.2 + 3.5 + 1.2) + (1.2 + 2 + 1.2)
	if !almostEqual(tl.Total, 13.3) {
		t.Errorf("total = %v, want 13.3", tl.Total)
	}
}
