// Package guidance implements look-ahead path tracking for a surface vessel.
//
// Each control step the driver asks [Tracker.FindTarget] for a target index
// near its waypoint cursor, then [Tracker.ComputeControl] for a rudder
// command toward that target. The tracker classifies the step as tracking
// or turning, builds a desired heading (cross-track correction on straight
// legs, a preview point beyond the target in turns), rate-limits it and
// feeds the heading error to the scheduled PID in package control.
//
// All memory lives in [State]; [Tracker.Reset] returns a tracker to its
// initial condition.
package guidance
