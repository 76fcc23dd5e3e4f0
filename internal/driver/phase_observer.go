package driver

import "time"

// UnitStatus reports whether a unit started or finished.
type UnitStatus int

const (
	// UnitStart indicates that checking a unit has begun.
	UnitStart UnitStatus = iota
	UnitEnd
)

// UnitEvent describes a unit boundary during CheckPaths.
type UnitEvent struct {
	Index   int
	Path    string
	Status  UnitStatus
	Cached  bool
	Errors  int
	Elapsed time.Duration
}

// UnitObserver receives unit events. CheckPaths calls it from worker
// goroutines, so it must be safe for concurrent use.
type UnitObserver func(UnitEvent)
