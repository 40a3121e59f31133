package depthsegment

import "go.viam.com/depthsegment/segment"

// View selects what the frame loop renders.
type View int

const (
	// ViewImages shows the depth, color and mask images with blob outlines.
	ViewImages View = iota
	// ViewPointCloud shows the projected point cloud.
	ViewPointCloud
)

func (v View) String() string {
	if v == ViewPointCloud {
		return "point cloud"
	}
	return "images"
}

// State is the user adjustable part of a session.
type State struct {
	Near     int
	Far      int
	Strategy segment.Strategy
	View     View
}

// Controller owns the session state and applies user input to it.
type Controller struct {
	state State
}

// NewController starts a session from the given state, clamping its thresholds.
func NewController(state State) *Controller {
	state.Near = clamp(state.Near)
	state.Far = clamp(state.Far)
	return &Controller{state: state}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	return c.state
}

// IncNear raises the near threshold by one, up to 255.
func (c *Controller) IncNear() {
	c.state.Near = clamp(c.state.Near + 1)
}

// DecNear lowers the near threshold by one, down to 0.
func (c *Controller) DecNear() {
	c.state.Near = clamp(c.state.Near - 1)
}

// IncFar raises the far threshold by one, up to 255.
func (c *Controller) IncFar() {
	c.state.Far = clamp(c.state.Far + 1)
}

// DecFar lowers the far threshold by one, down to 0.
func (c *Controller) DecFar() {
	c.state.Far = clamp(c.state.Far - 1)
}

// ToggleStrategy switches between the library and the manual threshold.
func (c *Controller) ToggleStrategy() {
	if c.state.Strategy == segment.StrategyLibrary {
		c.state.Strategy = segment.StrategyManual
	} else {
		c.state.Strategy = segment.StrategyLibrary
	}
}

// ToggleView switches between the image view and the point cloud view.
func (c *Controller) ToggleView() {
	if c.state.View == ViewImages {
		c.state.View = ViewPointCloud
	} else {
		c.state.View = ViewImages
	}
}

// HandleKey applies a key press and reports whether the key is bound.
func (c *Controller) HandleKey(key rune) bool {
	switch key {
	case ' ':
		c.ToggleStrategy()
	case 'p':
		c.ToggleView()
	case '>', '.':
		c.IncFar()
	case '<', ',':
		c.DecFar()
	case '+', '=':
		c.IncNear()
	case '-':
		c.DecNear()
	default:
		return false
	}
	return true
}
