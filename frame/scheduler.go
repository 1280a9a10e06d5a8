package frame

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// State is the scheduler life-cycle state.
type State uint32

const (
	Idle State = iota
	TickRequested
	Draining
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case TickRequested:
		return "TickRequested"
	case Draining:
		return "Draining"
	default:
		return fmt.Sprintf("State(%d)", uint32(s))
	}
}

// Tick describes the frame a drain runs in. One Tick is created per drain
// and shared by every callback of that drain.
type Tick struct {
	// Frame is the 1-based drain sequence number.
	Frame uint64

	// Elapsed is the time since the scheduler was created.
	Elapsed time.Duration

	// Budget is the advisory frame budget. It is never enforced.
	Budget time.Duration
}

// Callback is a scheduled unit of render work. A non-nil error stops the
// drain it runs in.
type Callback func(Tick) error

// DefaultFrameBudget corresponds to 60 frames per second.
const DefaultFrameBudget = time.Second / 60

// Option configures a Scheduler.
type Option func(*options)

type options struct {
	budget   time.Duration
	pacing   time.Duration
	autoTick bool
	clock    func() time.Time
	logger   *slog.Logger
}

// WithFrameBudget sets the advisory budget passed to callbacks.
func WithFrameBudget(d time.Duration) Option {
	return func(o *options) {
		o.budget = d
	}
}

// WithPacing sets the minimum interval between drains of the internal
// driver. Zero drains as soon as work arrives.
func WithPacing(d time.Duration) Option {
	return func(o *options) {
		o.pacing = d
	}
}

// WithAutoTick enables or disables the internal driver. It is enabled by
// default.
func WithAutoTick(enabled bool) Option {
	return func(o *options) {
		o.autoTick = enabled
	}
}

// WithClock sets the time source used for Tick.Elapsed and pacing.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithLogger sets the scheduler logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Scheduler coalesces render callbacks and drains them once per tick.
// All methods are safe for concurrent use.
type Scheduler struct {
	opts  options
	start time.Time

	mu     sync.Mutex
	queue  []Callback
	source TickSource

	requested atomic.Bool
	draining  atomic.Bool
	followUp  atomic.Bool
	closed    atomic.Bool
	frames    atomic.Uint64

	// Internal driver.
	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup

	errMu sync.Mutex
	err   error
}

// NewScheduler creates a scheduler and, unless WithAutoTick(false) is
// given, starts its internal driver goroutine.
func NewScheduler(opts ...Option) (*Scheduler, error) {
	o := options{
		budget:   DefaultFrameBudget,
		autoTick: true,
		clock:    time.Now,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.budget < 0 || o.pacing < 0 {
		return nil, fmt.Errorf("%w: budget=%v pacing=%v", ErrInvalidConfiguration, o.budget, o.pacing)
	}

	s := &Scheduler{
		opts:  o,
		start: o.clock(),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	if o.autoTick {
		s.wg.Add(1)
		go s.run()
		o.logger.Info("frame: internal driver started", "pacing", o.pacing, "budget", o.budget)
	}
	return s, nil
}

// Schedule enqueues cb for the next tick and requests one from the active
// source.
func (s *Scheduler) Schedule(cb Callback) error {
	if cb == nil {
		return fmt.Errorf("%w: nil callback", ErrInvalidConfiguration)
	}
	if s.closed.Load() {
		return ErrClosed
	}
	s.mu.Lock()
	s.queue = append(s.queue, cb)
	s.mu.Unlock()
	s.requestTick()
	return nil
}

// requestTick asks the active source for a tick unless one is already
// outstanding.
func (s *Scheduler) requestTick() {
	if s.closed.Load() || !s.requested.CompareAndSwap(false, true) {
		return
	}
	s.mu.Lock()
	src := s.source
	s.mu.Unlock()

	switch {
	case src != nil:
		src.RequestTick()
	case s.opts.autoTick:
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
}

// SetTickSource makes src the active tick source. The previous external
// source is detached and, when disposePrevious is set and it implements
// io.Closer, closed. A nil src returns control to the internal driver.
// Pending work is re-requested from the new source.
func (s *Scheduler) SetTickSource(src TickSource, disposePrevious bool) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.mu.Lock()
	prev := s.source
	s.source = src
	s.mu.Unlock()

	if prev != nil && prev != src {
		prev.Detach()
		if c, ok := prev.(io.Closer); ok && disposePrevious {
			if err := c.Close(); err != nil {
				s.opts.logger.Warn("frame: closing previous tick source", "err", err)
			}
		}
	}
	if src != nil && prev != src {
		src.Attach(func() error {
			if s.activeSource() != src {
				return nil
			}
			return s.drain(false)
		})
	}
	s.opts.logger.Info("frame: tick source swapped", "external", src != nil, "pending", s.Pending())

	s.requested.Store(false)
	if s.Pending() > 0 {
		s.requestTick()
	}
	return nil
}

func (s *Scheduler) activeSource() TickSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// RunPending drains the queue on the calling goroutine. With single set,
// at most one callback runs. It returns the first callback error.
func (s *Scheduler) RunPending(single bool) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.drain(single)
}

// drain runs queued callbacks. If another drain is in progress it records
// a follow-up and returns immediately. A panicking callback propagates to
// the caller; the callbacks after it are requeued and the scheduler leaves
// the Draining state.
func (s *Scheduler) drain(single bool) error {
	if !s.draining.CompareAndSwap(false, true) {
		// The tick consumed the outstanding request.
		s.requested.Store(false)
		s.followUp.Store(true)
		return nil
	}
	// Requests made from here on belong to the next tick.
	s.requested.Store(false)

	s.mu.Lock()
	var batch []Callback
	switch {
	case len(s.queue) == 0:
	case single:
		batch = []Callback{s.queue[0]}
		s.queue = s.queue[1:]
	default:
		batch = s.queue
		s.queue = nil
	}
	s.mu.Unlock()

	var err error
	running, finished := -1, false
	defer func() {
		if !finished {
			s.requeue(batch[running+1:])
			s.draining.Store(false)
			return
		}
		s.draining.Store(false)
		if (s.followUp.Swap(false) || err == nil) && s.Pending() > 0 {
			s.requestTick()
		}
	}()

	if len(batch) > 0 {
		tick := Tick{
			Frame:   s.frames.Add(1),
			Elapsed: s.opts.clock().Sub(s.start),
			Budget:  s.opts.budget,
		}
		for i, cb := range batch {
			if s.closed.Load() {
				break
			}
			running = i
			if err = cb(tick); err != nil {
				s.requeue(batch[i+1:])
				break
			}
		}
	}
	finished = true
	return err
}

// requeue puts callbacks back at the head of the queue, keeping order.
func (s *Scheduler) requeue(cbs []Callback) {
	if len(cbs) == 0 {
		return
	}
	s.mu.Lock()
	s.queue = append(append(make([]Callback, 0, len(cbs)+len(s.queue)), cbs...), s.queue...)
	s.mu.Unlock()
}

// run is the internal driver loop. It parks on the wake channel, honours
// the pacing interval and stops on Close or the first callback error.
func (s *Scheduler) run() {
	defer s.wg.Done()
	var last time.Time
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		if s.opts.pacing > 0 && !last.IsZero() {
			if wait := s.opts.pacing - s.opts.clock().Sub(last); wait > 0 {
				if timer == nil {
					timer = time.NewTimer(wait)
				} else {
					timer.Reset(wait)
				}
				select {
				case <-s.done:
					return
				case <-timer.C:
				}
			}
		}

		// A host source may have taken over while parked.
		if s.activeSource() != nil {
			continue
		}
		last = s.opts.clock()
		if err := s.drain(false); err != nil {
			s.errMu.Lock()
			s.err = err
			s.errMu.Unlock()
			s.opts.logger.Warn("frame: internal driver stopped", "err", err)
			return
		}
	}
}

// Err returns the callback error that stopped the internal driver, or nil.
func (s *Scheduler) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Pending returns the number of queued callbacks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Frames returns the number of drains that ran at least one callback.
func (s *Scheduler) Frames() uint64 {
	return s.frames.Load()
}

// State returns the current life-cycle state.
func (s *Scheduler) State() State {
	switch {
	case s.draining.Load():
		return Draining
	case s.requested.Load():
		return TickRequested
	default:
		return Idle
	}
}

// Budget returns the advisory frame budget.
func (s *Scheduler) Budget() time.Duration {
	return s.opts.budget
}

// Close detaches the external source, stops and joins the internal driver
// and drops queued callbacks. A callback already running is allowed to
// finish. Close is idempotent. It must not be called from a callback run by
// the internal driver.
func (s *Scheduler) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(s.done)

	s.mu.Lock()
	src := s.source
	s.source = nil
	dropped := len(s.queue)
	s.queue = nil
	s.mu.Unlock()

	if src != nil {
		src.Detach()
	}
	s.wg.Wait()
	s.opts.logger.Info("frame: scheduler closed", "dropped", dropped, "frames", s.frames.Load())
	return nil
}
