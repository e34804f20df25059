// Package sim drives the closed guidance loop: target selection, rudder
// command, vessel update and waypoint advance, once per timestep.
//
// A [Simulator] owns one vessel and one tracker. Use [RunFleet] to run
// several simulators concurrently.
package sim
