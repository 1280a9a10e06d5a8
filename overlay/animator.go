package overlay

import (
	"math"
	"time"

	"github.com/gogpu/chart/frame"
)

// Default transition durations.
const (
	DefaultCursorDuration   = 150 * time.Millisecond
	DefaultEmphasisDuration = 200 * time.Millisecond
	DefaultStreamDuration   = 300 * time.Millisecond
)

// Epsilon is the level below which a decaying state counts as gone.
const Epsilon = 1e-3

// Phase describes where a state is heading.
type Phase uint8

const (
	Settled Phase = iota
	Rising
	Falling
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case Settled:
		return "Settled"
	case Rising:
		return "Rising"
	case Falling:
		return "Falling"
	default:
		return "Phase(?)"
	}
}

// AnimationState is one animated scalar.
type AnimationState struct {
	Target  float64
	Current float64
	Phase   Phase
}

// retarget points the state at target.
func (s *AnimationState) retarget(target float64) {
	s.Target = target
	switch {
	case target > s.Current:
		s.Phase = Rising
	case target < s.Current:
		s.Phase = Falling
	default:
		s.Phase = Settled
	}
}

// step moves Current toward Target by dt over a full-range duration d.
func (s *AnimationState) step(dt, d time.Duration) {
	if s.Phase == Settled {
		return
	}
	delta := 1.0
	if d > 0 {
		delta = float64(dt) / float64(d)
	}
	if s.Current < s.Target {
		s.Current = math.Min(s.Current+delta, s.Target)
	} else {
		s.Current = math.Max(s.Current-delta, s.Target)
	}
	if s.Current == s.Target {
		s.Phase = Settled
	}
}

// MotionPreference reports the platform reduced-motion setting.
// gpucontext.PlatformProvider satisfies it.
type MotionPreference interface {
	ReduceMotion() bool
}

type staticMotion bool

func (m staticMotion) ReduceMotion() bool { return bool(m) }

// Option configures an Animator.
type Option func(*Animator)

// WithCursorDuration sets the cursor fade duration.
func WithCursorDuration(d time.Duration) Option {
	return func(a *Animator) { a.cursorDur = d }
}

// WithEmphasisDuration sets the annotation emphasis duration.
func WithEmphasisDuration(d time.Duration) Option {
	return func(a *Animator) { a.emphasisDur = d }
}

// WithStreamDuration sets the series fade-in and slide-in duration.
func WithStreamDuration(d time.Duration) Option {
	return func(a *Animator) { a.streamDur = d }
}

// WithMotionPreference sets the source of the reduced-motion flag. It is
// queried on every Advance.
func WithMotionPreference(p MotionPreference) Option {
	return func(a *Animator) {
		if p != nil {
			a.motion = p
		}
	}
}

// WithReducedMotion fixes the reduced-motion flag.
func WithReducedMotion(reduced bool) Option {
	return func(a *Animator) { a.motion = staticMotion(reduced) }
}

// Cursor is the animated crosshair state.
type Cursor struct {
	X, Y    float64
	Visible bool
	Opacity float64
}

// Stream is the entry transition of a series. Opacity ramps 0 to 1 and
// Slide, a fraction of the slide distance still to travel, ramps 1 to 0.
type Stream struct {
	Opacity float64
	Slide   float64
}

// settledStream is reported for series with no running transition.
var settledStream = Stream{Opacity: 1, Slide: 0}

type streamState struct {
	fade  AnimationState
	slide AnimationState
}

// Animator advances overlay animations once per frame.
type Animator struct {
	cursorDur   time.Duration
	emphasisDur time.Duration
	streamDur   time.Duration
	motion      MotionPreference

	last    time.Duration
	started bool

	cursor   AnimationState
	cursorX  float64
	cursorY  float64
	emphasis map[string]*AnimationState
	streams  map[uint32]*streamState
}

// NewAnimator creates an animator with default durations and motion
// enabled.
func NewAnimator(opts ...Option) *Animator {
	a := &Animator{
		cursorDur:   DefaultCursorDuration,
		emphasisDur: DefaultEmphasisDuration,
		streamDur:   DefaultStreamDuration,
		motion:      staticMotion(false),
		emphasis:    make(map[string]*AnimationState),
		streams:     make(map[uint32]*streamState),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetMotionPreference replaces the reduced-motion source.
func (a *Animator) SetMotionPreference(p MotionPreference) {
	if p == nil {
		p = staticMotion(false)
	}
	a.motion = p
}

// ReducedMotion reports the current reduced-motion flag.
func (a *Animator) ReducedMotion() bool {
	return a.motion.ReduceMotion()
}

// ShowCursor fades the cursor in.
func (a *Animator) ShowCursor() { a.cursor.retarget(1) }

// HideCursor fades the cursor out.
func (a *Animator) HideCursor() { a.cursor.retarget(0) }

// MoveCursor sets the cursor position. Position is not animated.
func (a *Animator) MoveCursor(x, y float64) {
	a.cursorX, a.cursorY = x, y
}

// Highlight ramps the emphasis of an annotation to 1.
func (a *Animator) Highlight(id string) {
	st, ok := a.emphasis[id]
	if !ok {
		st = &AnimationState{}
		a.emphasis[id] = st
	}
	st.retarget(1)
}

// Unhighlight lets the emphasis of an annotation decay.
func (a *Animator) Unhighlight(id string) {
	if st, ok := a.emphasis[id]; ok {
		st.retarget(0)
	}
}

// BeginStream starts the one-shot entry transition of a series. Calling it
// again for a series already in transition has no effect.
func (a *Animator) BeginStream(seriesID uint32) {
	if _, ok := a.streams[seriesID]; ok {
		return
	}
	st := &streamState{
		fade:  AnimationState{Current: 0},
		slide: AnimationState{Current: 1},
	}
	st.fade.retarget(1)
	st.slide.retarget(0)
	if a.ReducedMotion() {
		st.slide = AnimationState{}
	}
	a.streams[seriesID] = st
}

// Advance moves every state forward to the frame time of tk. The first
// call only records the start time.
func (a *Animator) Advance(tk frame.Tick) {
	if !a.started {
		a.started = true
		a.last = tk.Elapsed
		return
	}
	dt := tk.Elapsed - a.last
	a.last = tk.Elapsed
	a.AdvanceBy(dt)
}

// AdvanceBy moves every state forward by dt. Negative dt is ignored.
func (a *Animator) AdvanceBy(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	reduced := a.ReducedMotion()

	a.cursor.step(dt, a.cursorDur)
	if a.cursor.Target == 0 && a.cursor.Current < Epsilon {
		a.cursor = AnimationState{}
	}

	for id, st := range a.emphasis {
		st.step(dt, a.emphasisDur)
		if st.Target == 0 && st.Current < Epsilon {
			delete(a.emphasis, id)
		}
	}

	for id, st := range a.streams {
		st.fade.step(dt, a.streamDur)
		if reduced {
			st.slide = AnimationState{}
		} else {
			st.slide.step(dt, a.streamDur)
		}
		if st.fade.Phase == Settled && st.slide.Phase == Settled {
			delete(a.streams, id)
		}
	}
}

// Animating reports whether any state is still moving.
func (a *Animator) Animating() bool {
	return a.cursor.Phase != Settled || a.anyEmphasisMoving() || len(a.streams) > 0
}

func (a *Animator) anyEmphasisMoving() bool {
	for _, st := range a.emphasis {
		if st.Phase != Settled {
			return true
		}
	}
	return false
}

// Cursor returns the cursor state.
func (a *Animator) Cursor() Cursor {
	return Cursor{
		X:       a.cursorX,
		Y:       a.cursorY,
		Visible: a.cursor.Current >= Epsilon,
		Opacity: a.cursor.Current,
	}
}

// Emphasis returns the emphasis of an annotation, 0 if none.
func (a *Animator) Emphasis(id string) float64 {
	if st, ok := a.emphasis[id]; ok {
		return st.Current
	}
	return 0
}

// Stream returns the entry transition of a series. Series without a running
// transition are fully shown.
func (a *Animator) Stream(seriesID uint32) Stream {
	st, ok := a.streams[seriesID]
	if !ok {
		return settledStream
	}
	slide := st.slide.Current
	if a.ReducedMotion() {
		slide = 0
	}
	return Stream{Opacity: st.fade.Current, Slide: slide}
}

// Snapshot is a copy of every visible overlay state.
type Snapshot struct {
	Cursor   Cursor
	Emphasis map[string]float64
	Streams  map[uint32]Stream
}

// Snapshot returns the visible overlay state. Emphasis entries that have
// decayed below Epsilon are left out.
func (a *Animator) Snapshot() Snapshot {
	s := Snapshot{
		Cursor:   a.Cursor(),
		Emphasis: make(map[string]float64, len(a.emphasis)),
		Streams:  make(map[uint32]Stream, len(a.streams)),
	}
	for id, st := range a.emphasis {
		if st.Current >= Epsilon {
			s.Emphasis[id] = st.Current
		}
	}
	for id := range a.streams {
		s.Streams[id] = a.Stream(id)
	}
	return s
}

// State returns the raw animation state of an annotation.
func (a *Animator) State(id string) (AnimationState, bool) {
	st, ok := a.emphasis[id]
	if !ok {
		return AnimationState{}, false
	}
	return *st, true
}
