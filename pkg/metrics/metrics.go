// Package metrics exposes print-head link and dispatch counters to Prometheus.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smalldrop/phead.go/pkg/l0/comm"
	"github.com/smalldrop/phead.go/pkg/phead"
)

// NewRegistry creates a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry over HTTP.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// DeviceMetrics counts link and dispatch activity of one print head.
// It implements comm.EventObserver, comm.StateNotifier and phead.Observer.
type DeviceMetrics struct {
	FrameEvents     *prometheus.CounterVec // labels: event=ready|overflow
	ChecksumFailure prometheus.Counter
	Pings           prometheus.Counter
	Commands        *prometheus.CounterVec // labels: group, code, result
	Warnings        *prometheus.CounterVec // labels: code
	LinkState       prometheus.Gauge
}

// NewDeviceMetrics registers and returns device metrics.
func NewDeviceMetrics(reg prometheus.Registerer) *DeviceMetrics {
	m := &DeviceMetrics{
		FrameEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "phead_frame_events_total",
			Help: "Receive events of the frame parser.",
		}, []string{"event"}),
		ChecksumFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "phead_checksum_failures_total",
			Help: "Frames rejected for checksum mismatch.",
		}),
		Pings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "phead_pings_total",
			Help: "Valid pings received.",
		}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "phead_commands_total",
			Help: "Dispatched commands by group, code and result.",
		}, []string{"group", "code", "result"}),
		Warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "phead_command_warnings_total",
			Help: "Non-fatal error codes reported ahead of replies.",
		}, []string{"code"}),
		LinkState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "phead_link_state",
			Help: "Link state, 0=down 1=up 2=lost.",
		}),
	}
	reg.MustRegister(m.FrameEvents, m.ChecksumFailure, m.Pings, m.Commands, m.Warnings, m.LinkState)
	return m
}

// ObserveFrameEvent implements comm.EventObserver.
func (m *DeviceMetrics) ObserveFrameEvent(e comm.Event) {
	m.FrameEvents.WithLabelValues(e.String()).Inc()
}

// StateChanged implements comm.StateNotifier.
func (m *DeviceMetrics) StateChanged(ctx context.Context, state comm.LinkState) {
	m.LinkState.Set(float64(state))
}

// ChecksumFailed implements phead.Observer.
func (m *DeviceMetrics) ChecksumFailed() {
	m.ChecksumFailure.Inc()
}

// PingHandled implements phead.Observer.
func (m *DeviceMetrics) PingHandled() {
	m.Pings.Inc()
}

// unknownLabel replaces group and code labels not in the dispatch table,
// keeping label cardinality bounded on a noisy link.
const unknownLabel = "unknown"

func commandLabels(group phead.Group, code byte) (string, string) {
	switch {
	case phead.IsKnown(group, code):
		return group.String(), fmt.Sprintf("0x%02x", code)
	case group.Known():
		return group.String(), unknownLabel
	default:
		return unknownLabel, unknownLabel
	}
}

// CommandHandled implements phead.Observer.
func (m *DeviceMetrics) CommandHandled(group phead.Group, code byte, res phead.Result) {
	result := "ok"
	if res.Err != nil {
		result = comm.CodeOf(res.Err).String()
	}
	groupLabel, codeLabel := commandLabels(group, code)
	m.Commands.WithLabelValues(groupLabel, codeLabel, result).Inc()
	for _, w := range res.Warnings {
		m.Warnings.WithLabelValues(w.String()).Inc()
	}
}
