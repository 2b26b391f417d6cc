package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/waitlist-sim/waitlist-sim/sim/trace"
)

// Metrics exposes the outcome of one run as Prometheus collectors, labelled
// with the run ID so textfiles from several runs can be scraped side by side.
type Metrics struct {
	registry *prometheus.Registry

	Referrals    *prometheus.CounterVec // by referral type
	Outcomes     *prometheus.CounterVec // seen, removed, unresolved
	Exits        *prometheus.CounterVec // by exit outcome, resolved patients only
	SecondVisits prometheus.Counter
	Weeks        prometheus.Gauge
	QueueDepth   prometheus.Gauge // at the last sampled week
	PoolSize     prometheus.Gauge // at the last sampled week
	Wait         prometheus.Histogram
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics(runID string) *Metrics {
	labels := prometheus.Labels{"run_id": runID}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Referrals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "waitlist",
			Name:        "patients_referred_total",
			Help:        "Patients referred onto the wait list.",
			ConstLabels: labels,
		}, []string{"referral_type"}),
		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "waitlist",
			Name:        "patients_total",
			Help:        "Patients by how their time on the list ended.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		Exits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "waitlist",
			Name:        "exits_total",
			Help:        "Resolved patients by exit classification.",
			ConstLabels: labels,
		}, []string{"exit"}),
		SecondVisits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "waitlist",
			Name:        "second_visits_total",
			Help:        "Second appointments taken after a missed first one.",
			ConstLabels: labels,
		}),
		Weeks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "waitlist",
			Name:        "weeks_simulated",
			Help:        "Length of the run in weeks.",
			ConstLabels: labels,
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "waitlist",
			Name:        "queue_depth",
			Help:        "Patients queued at or holding the admission gate in the last week.",
			ConstLabels: labels,
		}),
		PoolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "waitlist",
			Name:        "appointments_left",
			Help:        "Unused appointments in the pool in the last week.",
			ConstLabels: labels,
		}),
		Wait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "waitlist",
			Name:        "length_of_wait_weeks",
			Help:        "Weeks from referral to appointment, or to the horizon if not yet seen.",
			ConstLabels: labels,
			Buckets:     []float64{0, 1, 2, 4, 8, 13, 18, 26, 39, 52},
		}),
	}
	m.registry.MustRegister(m.Referrals, m.Outcomes, m.Exits, m.SecondVisits,
		m.Weeks, m.QueueDepth, m.PoolSize, m.Wait)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Observe records a run's tables.
func (m *Metrics) Observe(t *trace.Tables) {
	m.Weeks.Set(float64(t.Horizon))
	for _, rec := range t.Patients {
		m.Referrals.WithLabelValues(rec.ReferralType).Inc()
		switch {
		case rec.SeenWeek != nil:
			m.Outcomes.WithLabelValues("seen").Inc()
			m.Exits.WithLabelValues(rec.Exit).Inc()
		case rec.ROTWeek != nil:
			m.Outcomes.WithLabelValues("removed").Inc()
			m.Exits.WithLabelValues(rec.Exit).Inc()
		default:
			m.Outcomes.WithLabelValues("unresolved").Inc()
		}
		if rec.DNAWeek != nil {
			m.SecondVisits.Inc()
		}
		if weeks, ok := LengthOfWait(rec, t.Horizon); ok {
			m.Wait.Observe(float64(weeks))
		}
	}
	if n := len(t.Occupancy); n > 0 {
		last := t.Occupancy[n-1]
		m.QueueDepth.Set(float64(last.QueueDepth))
		m.PoolSize.Set(float64(last.PoolSize))
	}
}

// WriteMetrics writes the run's metrics to path in the Prometheus text format.
func WriteMetrics(path string, t *trace.Tables) error {
	m := NewMetrics(t.RunID)
	m.Observe(t)
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
