// Package frame schedules render callbacks against a pluggable tick source.
//
// A Scheduler collects callbacks and asks its active tick source for a
// wake-up. Requests are coalesced: at most one is outstanding per source.
// When the tick fires, the queue is drained and every callback receives the
// same Tick describing the frame.
//
// The default source is an internal driver goroutine that parks on a
// channel while idle. A host can supply its own TickSource with
// SetTickSource, in which case callbacks run on whichever goroutine delivers
// the host tick. WithAutoTick(false) disables the internal driver entirely;
// callers then step the scheduler with RunPending.
//
// Drains never overlap. A tick that arrives while a drain is running is
// folded into a follow-up request. Callbacks scheduled during a drain run
// on the next tick.
//
// Life cycle:
//
//	Idle -> TickRequested -> Draining -> Idle
package frame
