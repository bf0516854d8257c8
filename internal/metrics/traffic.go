// Package metrics provides the traffic-statistics collaborator of a
// monitoring session on Prometheus.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oshokin/auv-alarm/internal/domain/alarm"
	"github.com/oshokin/auv-alarm/internal/packet"
)

// Latency buckets: 100ms doubling to ~100s, enough for an acoustic link.
const (
	bucketStart  = 0.1
	bucketFactor = 2
	bucketCount  = 11
)

// Summary is a point-in-time copy of the packet counters.
type Summary struct {
	Sent     uint64
	Received uint64
	Dropped  uint64
}

// Traffic records throughput, latency and alarm activity of one vehicle.
type Traffic struct {
	// Packet flow
	sentTotal     prometheus.Counter
	receivedTotal prometheus.Counter
	droppedTotal  *prometheus.CounterVec
	latency       prometheus.Histogram

	// Alarm activity
	transitionsTotal *prometheus.CounterVec
	alarmLevel       prometheus.Gauge

	sent     atomic.Uint64
	received atomic.Uint64
	dropped  atomic.Uint64
}

// NewTraffic creates traffic metrics labelled with the vehicle id and
// registers them on registry.
func NewTraffic(registry prometheus.Registerer, vehicleID string) (*Traffic, error) {
	labels := prometheus.Labels{"vehicle": vehicleID}

	m := &Traffic{
		sentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "auv_packets_sent_total",
			Help:        "Total number of status packets sent to the controller",
			ConstLabels: labels,
		}),
		receivedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "auv_packets_received_total",
			Help:        "Total number of packets received from the controller",
			ConstLabels: labels,
		}),
		droppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "auv_packets_dropped_total",
			Help:        "Total number of inbound packets dropped before the alarm logic",
			ConstLabels: labels,
		}, []string{"reason"}), // reason: OOS, DPK
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "auv_packet_latency_seconds",
			Help:        "Round-trip time from a status packet to its acknowledgment",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(bucketStart, bucketFactor, bucketCount),
		}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "auv_alarm_transitions_total",
			Help:        "Total number of alarm level transitions",
			ConstLabels: labels,
		}, []string{"from", "to"}),
		alarmLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "auv_alarm_level",
			Help:        "Current alarm level (0 clear, 1 suspect, 2 confirmed)",
			ConstLabels: labels,
		}),
	}

	if err := registry.Register(m); err != nil {
		return nil, err
	}

	return m, nil
}

// Describe implements prometheus.Collector.
func (m *Traffic) Describe(ch chan<- *prometheus.Desc) {
	m.sentTotal.Describe(ch)
	m.receivedTotal.Describe(ch)
	m.droppedTotal.Describe(ch)
	m.latency.Describe(ch)
	m.transitionsTotal.Describe(ch)
	m.alarmLevel.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Traffic) Collect(ch chan<- prometheus.Metric) {
	m.sentTotal.Collect(ch)
	m.receivedTotal.Collect(ch)
	m.droppedTotal.Collect(ch)
	m.latency.Collect(ch)
	m.transitionsTotal.Collect(ch)
	m.alarmLevel.Collect(ch)
}

// Sent records an outgoing packet.
func (m *Traffic) Sent(*packet.Packet) {
	m.sentTotal.Inc()
	m.sent.Add(1)
}

// Received records an inbound packet whatever the alarm logic does with it.
func (m *Traffic) Received(_ *packet.Packet, latency time.Duration) {
	m.receivedTotal.Inc()
	m.received.Add(1)

	if latency >= 0 {
		m.latency.Observe(latency.Seconds())
	}
}

// Dropped records an inbound packet rejected by the sequence gate.
func (m *Traffic) Dropped(reason string) {
	m.droppedTotal.WithLabelValues(reason).Inc()
	m.dropped.Add(1)
}

// Transition records an alarm level change.
func (m *Traffic) Transition(from, to alarm.Level) {
	m.transitionsTotal.WithLabelValues(from.String(), to.String()).Inc()
	m.alarmLevel.Set(float64(to))
}

// Summary returns the packet counters.
func (m *Traffic) Summary() Summary {
	return Summary{
		Sent:     m.sent.Load(),
		Received: m.received.Load(),
		Dropped:  m.dropped.Load(),
	}
}
