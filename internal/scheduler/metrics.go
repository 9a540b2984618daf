package scheduler

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes Prometheus collectors describing sweep activity.
type Metrics struct {
	sweeps           *prometheus.CounterVec
	fired            prometheus.Counter
	deliveryFailures prometheus.Counter
	sweepDuration    prometheus.Histogram
	records          prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vote_reminder",
			Subsystem: "scheduler",
			Name:      "sweeps_total",
			Help:      "Sweep passes by outcome.",
		}, []string{"status"}),
		fired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vote_reminder",
			Subsystem: "scheduler",
			Name:      "reminders_fired_total",
			Help:      "Reminders rescheduled and handed to the notifier.",
		}),
		deliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vote_reminder",
			Subsystem: "scheduler",
			Name:      "delivery_failures_total",
			Help:      "Reminders whose notification could not be delivered.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vote_reminder",
			Subsystem: "scheduler",
			Name:      "sweep_duration_seconds",
			Help:      "Time spent in one sweep pass.",
			Buckets:   prometheus.DefBuckets,
		}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vote_reminder",
			Subsystem: "scheduler",
			Name:      "registered_users",
			Help:      "Schedules seen by the last successful sweep.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.sweeps, m.fired, m.deliveryFailures, m.sweepDuration, m.records} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
