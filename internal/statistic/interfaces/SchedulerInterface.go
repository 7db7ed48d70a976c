package interfaces

// SchedulerInterface drives background work: telemetry snapshots and the
// periodic weighted-stake recompute.
type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
	RunRecompute()
}
