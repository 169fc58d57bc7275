package validators

import (
	"errors"
	"fmt"

	"smritikosha/memory-api/model"
)

var ErrEmptyFlow = errors.New("visual flow has no frames")

// RenderParamsValidator sanity checks caller supplied render parameters
// before they're persisted or rendered. Durations are normalized by the
// renderer, only structural problems are rejected here
func RenderParamsValidator(p *model.RenderParams) error {
	if len(p.VisualFlow) == 0 {
		return ErrEmptyFlow
	}

	for i := range p.VisualFlow {
		f := &p.VisualFlow[i]

		if f.ImageURL == "" {
			return fmt.Errorf("frame %d has no image url", i)
		}

		if f.Effect == "" {
			f.Effect = model.EffectNone
		}
		if !model.ValidEffect(f.Effect) {
			return fmt.Errorf("frame %d has unknown effect %q", i, f.Effect)
		}
	}

	return nil
}
