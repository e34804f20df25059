// Package dynamo provides the core primitives shared by the vessel model,
// the guidance law and the simulation driver.
//
//   - [Point], [Pose] and [Path]: planar geometry in metres and radians
//   - [NormalizeAngle]: constant-time wrap into (-π, π]
//   - [System] and [Integrator]: ODE stepping for the vessel model
//   - [Sample], [Metric], [Observer]: per-step recording hooks
//
// # Errors
//
// Operations return the sentinel errors in errors.go wrapped with context;
// match them with errors.Is. [ErrPathExhausted] is a termination signal,
// not a failure.
package dynamo
