package player

import (
	"context"

	"github.com/desertthunder/groove/internal/models"
)

// MultiRecorder fans a play out to several recorders in order.
type MultiRecorder []Recorder

func (m MultiRecorder) RecordPlay(ctx context.Context, track models.Track) {
	for _, r := range m {
		if r != nil {
			r.RecordPlay(ctx, track)
		}
	}
}
