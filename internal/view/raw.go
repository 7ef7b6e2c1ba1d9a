package view

import (
	"context"
	"fmt"
	"math"
)

// Raw plots the unfiltered strain of the plot interval.
type Raw struct {
	// VLine marks t0.
	VLine bool
}

func (Raw) Name() string                 { return NameRaw }
func (Raw) SkipText() string             { return "" }
func (Raw) Validate(_ RateSettings) error { return nil }

// Render fails with ErrDataGap when the plot interval holds missing
// samples; the session stops there.
func (v Raw) Render(ctx context.Context, r *Renderer, in *Input) (*Panel, error) {
	s := in.Settings
	p := &Panel{
		View:  v.Name(),
		Title: fmt.Sprintf("%s, around %s (%s UTC), raw", s.Interferometer, s.T0Label(), s.T0ISO),
	}

	if in.Cropped.Len() == 0 || math.IsNaN(in.Cropped.Max()) {
		err := dataGap(nil, rawGapText)
		p.fail(UserMessage(err))
		return p, err
	}

	chart := r.strainChart(p.Title, s, in.Cropped, "dimensionless", v.VLine)
	png, err := r.draw(ctx, v.Name(), chart.PNG)
	if err != nil {
		return nil, err
	}
	p.PNG = png
	return p, nil
}
