// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dissect

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	eventsWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "etw2ctf_dissect_events_written",
		Help: "Count of event records successfully written to a stream.",
	})

	dissectorMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "etw2ctf_dissect_dissector_misses",
		Help: "Count of records no registered dissector claimed.",
	})

	bytesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "etw2ctf_dissect_bytes_written",
		Help: "Count of encoded event-packet bytes written to a stream.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(eventsWritten, dissectorMisses, bytesWritten)
}
