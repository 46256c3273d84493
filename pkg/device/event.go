package device

import "time"

// Event is the completion token for one enqueued command. Later commands
// consume events as wait-list preconditions; the host consumes them to
// synchronize and to read profiling timestamps. A failed event poisons
// everything that waits on it.
type Event struct {
	label    string
	done     chan struct{}
	err      error
	profiled bool
	start    time.Time
	end      time.Time
}

func newEvent(label string) *Event {
	return &Event{
		label: label,
		done:  make(chan struct{}),
	}
}

// complete must be called exactly once.
func (self *Event) complete(err error) {
	self.err = err
	close(self.done)
}

func (self *Event) markStart() {
	self.profiled = true
	self.start = time.Now()
}

func (self *Event) markEnd() {
	self.end = time.Now()
}

// Label identifies the command that produced this event.
func (self *Event) Label() string {
	return self.label
}

// Wait blocks until the command has completed and returns its error, if
// any.
func (self *Event) Wait() error {
	<-self.done
	return self.err
}

// Duration returns the device time between the command's start and end
// timestamps. It implicitly waits for completion. ErrNotProfiled is
// returned if the owning queue had profiling disabled or the command never
// ran.
func (self *Event) Duration() (time.Duration, error) {
	if err := self.Wait(); err != nil {
		return 0, err
	}
	if !self.profiled {
		return 0, ErrNotProfiled
	}
	return self.end.Sub(self.start), nil
}

// WaitAll waits on every event in order, returning the first error.
func WaitAll(events ...*Event) error {
	for _, ev := range events {
		if ev == nil {
			continue
		}
		if err := ev.Wait(); err != nil {
			return err
		}
	}
	return nil
}
