package model

// Transition effects a reel frame may carry. Anything else coming back
// from the generation step is coerced to EffectNone
const (
	EffectFade      = "fade"
	EffectZoom      = "zoom"
	EffectPan       = "pan"
	EffectGhibli    = "ghibli"
	EffectMapTravel = "map-travel"
	EffectNone      = "none"
)

// ValidEffect reports whether e is one of the known transition effects
func ValidEffect(e string) bool {
	switch e {
	case EffectFade, EffectZoom, EffectPan, EffectGhibli, EffectMapTravel, EffectNone:
		return true
	}
	return false
}

// ReelFrame is one entry of a reel's visual flow
type ReelFrame struct {
	// ID of the source MemoryImage this frame was built from. Empty for
	// frames of ephemeral downloads where the caller supplies URLs only
	ImageID  string  `json:"imageId,omitempty"`
	ImageURL string  `json:"imageUrl"`
	Caption  string  `json:"caption,omitempty"`
	Location string  `json:"location,omitempty"`
	Date     string  `json:"date,omitempty"`
	Duration float64 `json:"duration"`
	Effect   string  `json:"effect"`
}

// RenderParams is the whitelisted subset of caller supplied reel data that
// gets persisted on a reel row and drives rendering. Unknown keys in the
// incoming JSON are dropped by virtue of this struct's shape
type RenderParams struct {
	Theme           string      `json:"theme,omitempty"`
	Mood            string      `json:"mood,omitempty"`
	MusicStyle      string      `json:"musicStyle,omitempty"`
	VisualFlow      []ReelFrame `json:"visualFlow"`
	DurationSeconds float64     `json:"durationSeconds,omitempty"`
}
