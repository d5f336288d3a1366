package reachability

// Recorder observes the monitor's internals. Implementations must be safe for
// concurrent use and must not call back into the monitor.
type Recorder interface {
	RawEvent(kind EventKind)
	Committed(reachable bool)
	Suppressed()
	Subscribers(n int)
}

type nopRecorder struct{}

func (nopRecorder) RawEvent(EventKind) {}
func (nopRecorder) Committed(bool)     {}
func (nopRecorder) Suppressed()        {}
func (nopRecorder) Subscribers(int)    {}
