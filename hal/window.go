package hal

// FrameRate is the step rate of both runners. Samples are taken once per step, so it
// sets the resolution of recorded trajectories.
const FrameRate = 60

// WindowConfig controls the desktop window runner.
type WindowConfig struct {
	Title      string
	Fullscreen bool
	Width      int
	Height     int
}

func (c WindowConfig) title() string {
	if c.Title == "" {
		return "Visuomotor Adaptation Experiment"
	}
	return c.Title
}
