package recording

import "image/color"

// CommandType identifies the type of a command.
type CommandType uint8

const (
	CmdSave           CommandType = iota // Save current state
	CmdRestore                           // Restore previous state
	CmdClip                              // Intersect the clip with a rectangle
	CmdClear                             // Fill the whole canvas
	CmdFillRect                          // Fill a rectangle
	CmdStrokePolyline                    // Stroke a run of points
	CmdDrawText                          // Draw a text run
)

var commandTypeNames = [...]string{
	CmdSave:           "Save",
	CmdRestore:        "Restore",
	CmdClip:           "Clip",
	CmdClear:          "Clear",
	CmdFillRect:       "FillRect",
	CmdStrokePolyline: "StrokePolyline",
	CmdDrawText:       "DrawText",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is implemented by all command types.
type Command interface {
	Type() CommandType
}

// Point is a position in logical pixels.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in logical pixels.
type Rect struct {
	X, Y, W, H float64
}

// Empty reports whether r covers no area.
func (r Rect) Empty() bool {
	return !(r.W > 0) || !(r.H > 0)
}

// Stroke describes line styling.
type Stroke struct {
	Width float64

	// Dash alternates dash and gap lengths. Nil draws solid lines.
	Dash []float64
}

// Anchor positions a text run relative to its reference point, as fractions
// of the run's extent: (0, 0) is top-left, (1, 1) is bottom-right.
type Anchor struct {
	X, Y float64
}

// Common anchors.
var (
	AnchorTopLeft      = Anchor{0, 0}
	AnchorTopCenter    = Anchor{0.5, 0}
	AnchorCenterLeft   = Anchor{0, 0.5}
	AnchorCenterRight  = Anchor{1, 0.5}
	AnchorCenter       = Anchor{0.5, 0.5}
	AnchorBottomCenter = Anchor{0.5, 1}
)

// PolylineRef is a reference to a point run in the resource pool.
type PolylineRef uint32

// SaveCommand saves the clip state.
type SaveCommand struct{}

// Type implements Command.
func (SaveCommand) Type() CommandType { return CmdSave }

// RestoreCommand restores the last saved clip state.
type RestoreCommand struct{}

// Type implements Command.
func (RestoreCommand) Type() CommandType { return CmdRestore }

// ClipCommand intersects the clip with Rect.
type ClipCommand struct {
	Rect Rect
}

// Type implements Command.
func (ClipCommand) Type() CommandType { return CmdClip }

// ClearCommand fills the whole canvas with Color, ignoring the clip.
type ClearCommand struct {
	Color color.NRGBA
}

// Type implements Command.
func (ClearCommand) Type() CommandType { return CmdClear }

// FillRectCommand fills Rect with Color.
type FillRectCommand struct {
	Rect  Rect
	Color color.NRGBA
}

// Type implements Command.
func (FillRectCommand) Type() CommandType { return CmdFillRect }

// StrokePolylineCommand strokes the pooled point run Points.
type StrokePolylineCommand struct {
	Points PolylineRef
	Color  color.NRGBA
	Stroke Stroke
}

// Type implements Command.
func (StrokePolylineCommand) Type() CommandType { return CmdStrokePolyline }

// DrawTextCommand draws Text at (X, Y) positioned by Anchor.
type DrawTextCommand struct {
	Text   string
	X, Y   float64
	Size   float64
	Anchor Anchor
	Color  color.NRGBA
}

// Type implements Command.
func (DrawTextCommand) Type() CommandType { return CmdDrawText }
