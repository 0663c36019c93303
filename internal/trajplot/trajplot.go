// Package trajplot renders recorded cursor trajectories, one PNG per trial.
package trajplot

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"visuomotor/experiment/session"
)

// ErrNoSamples is returned for a trial without cursor positions.
var ErrNoSamples = errors.New("trajplot: trial has no samples")

var (
	pathColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	startColor = color.RGBA{G: 128, A: 255}
	endColor   = color.RGBA{R: 255, A: 255}
)

// New builds the plot for one trial: the path from first to last sample, the
// start marked green and the end red. The Y axis grows downward like the screen.
func New(tr session.TrialRecord) (*plot.Plot, error) {
	if len(tr.CursorPositions) == 0 {
		return nil, ErrNoSamples
	}

	pts := make(plotter.XYs, len(tr.CursorPositions))
	for i, p := range tr.CursorPositions {
		pts[i].X = p[0]
		pts[i].Y = p[1]
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Trial %d", tr.TrialNumber)
	p.X.Label.Text = "X Position"
	p.Y.Label.Text = "Y Position"
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Legend.Top = true

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("trial %d path: %w", tr.TrialNumber, err)
	}
	line.Color = pathColor
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add(fmt.Sprintf("Trial %d", tr.TrialNumber), line)

	start, err := marker(pts[:1], startColor)
	if err != nil {
		return nil, err
	}
	end, err := marker(pts[len(pts)-1:], endColor)
	if err != nil {
		return nil, err
	}
	p.Add(start, end)
	p.Legend.Add("Start", start)
	p.Legend.Add("End", end)
	return p, nil
}

func marker(pts plotter.XYs, c color.Color) (*plotter.Scatter, error) {
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(4)
	return s, nil
}

// Save writes the trial plot to path; the extension picks the image format.
func Save(tr session.TrialRecord, path string) error {
	p, err := New(tr)
	if err != nil {
		return err
	}
	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save %q: %w", path, err)
	}
	return nil
}

// PlotName returns "<artifact stem>_trial<N>.png" next to the artifact.
func PlotName(artifact string, trialNumber int) string {
	stem := strings.TrimSuffix(artifact, filepath.Ext(artifact))
	return fmt.Sprintf("%s_trial%d.png", stem, trialNumber)
}

// SaveSession writes one PNG per trial next to the artifact and returns the
// paths written. Trials without samples are skipped and reported in skipped.
func SaveSession(rec session.Record, artifact string) (written []string, skipped []int, err error) {
	for _, tr := range rec {
		path := PlotName(artifact, tr.TrialNumber)
		if err := Save(tr, path); err != nil {
			if errors.Is(err, ErrNoSamples) {
				skipped = append(skipped, tr.TrialNumber)
				continue
			}
			return written, skipped, err
		}
		written = append(written, path)
	}
	return written, skipped, nil
}
