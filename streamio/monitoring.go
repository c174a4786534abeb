// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package streamio

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	streamsOpenGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "etw2ctf_streamio_streams_open",
		Help: "Count of currently open stream files (0 or 1, since streams are opened one at a time).",
	})

	streamBytesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "etw2ctf_streamio_bytes_written",
		Help: "Count of bytes written across all streams.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(streamsOpenGauge, streamBytesWritten)
}
