// Package host drives a jobs worker from the outside world. The host owns
// the time axis: it hands the scheduler a monotonic seconds value on every
// tick, either at a fixed headless rate or from a windowed frame loop.
package host

// StepFunc advances the application by one tick at the given host time, in
// seconds. Returning an error stops the runner.
type StepFunc func(now float64) error
