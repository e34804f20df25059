// Package control provides the gain-scheduled heading PID used by the
// path tracker.
//
// The schedule is an explicit two-row table indexed by [Mode]:
//
//	tracking  Kp      Ki    Kd      |δ| ≤ π/12
//	turning   0.7·Kp  0     1.2·Kd  |δ| ≤ π/6
//
// [HeadingPID] is pure configuration. Its memory is a [PIDState] owned by
// the caller, so one controller value can serve any number of vessels.
package control
