package metrics

import (
	"net/http"
	"time"
)

// Fetch outcomes
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

// Recorder receives instrumentation events from the data source and viewer
type Recorder interface {
	ObserveFetch(backend, operation, outcome string, elapsed time.Duration)
	ObserveSuperseded()
	ObserveSeries(device string, cycles int)
	Handler() http.Handler
}
