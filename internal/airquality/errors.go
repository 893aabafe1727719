package airquality

import "fmt"

// ProviderError reports a failed fetch from the air-quality provider: network
// failure, timeout, non-success status or an unexpected response shape.
type ProviderError struct {
	Provider   string
	LocationID int64
	Err        error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: location %d: %v", e.Provider, e.LocationID, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// StoreWriteError reports a failed write for one unit of work.
type StoreWriteError struct {
	Op         string
	LocationID int64
	Err        error
}

func (e *StoreWriteError) Error() string {
	if e.LocationID != 0 {
		return fmt.Sprintf("store write %s: location %d: %v", e.Op, e.LocationID, e.Err)
	}
	return fmt.Sprintf("store write %s: %v", e.Op, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// StoreConnectivityError reports a store failure hit before a job could start
// its work. It aborts that invocation only.
type StoreConnectivityError struct {
	Op  string
	Err error
}

func (e *StoreConnectivityError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreConnectivityError) Unwrap() error { return e.Err }
