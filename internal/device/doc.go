// Package device maintains kseqi's view of the slave keyboard devices
// attached to the X server: the initial enumeration at start-up, and
// incremental updates as devices are plugged or unplugged while the
// daemon runs.
package device
