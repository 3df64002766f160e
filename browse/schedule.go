package browse

import "time"

// Timer is a pending debounce commit.
type Timer interface {
	Stop() bool
}

// Scheduler starts debounce timers. The default uses time.AfterFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Runner executes a fetch task. The default runs each task on its own
// goroutine.
type Runner func(task func())

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func goRunner(task func()) { go task() }
