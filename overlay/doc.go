// Package overlay animates transient chart overlays.
//
// An Animator owns one AnimationState per overlay key: the cursor, each
// highlighted annotation and each series that started streaming. States
// move toward their targets once per frame in Advance and are pruned when
// they decay to nothing.
//
// The reduced-motion profile snaps slide offsets to their end position. It
// does not disable fades.
//
// Animator is not safe for concurrent use; drive it from the render
// callback.
package overlay
