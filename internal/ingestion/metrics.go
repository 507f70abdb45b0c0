package ingestion

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts import traffic. A nil *Metrics records nothing.
type Metrics struct {
	rows     *prometheus.CounterVec
	imports  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the import collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "liftdesk",
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Rows validated by import kind and outcome.",
		}, []string{"kind", "outcome"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "liftdesk",
			Subsystem: "import",
			Name:      "commits_total",
			Help:      "Import commit attempts by kind and result.",
		}, []string{"kind", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "liftdesk",
			Subsystem: "import",
			Name:      "commit_duration_seconds",
			Help:      "Time spent committing import batches.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	if reg == nil {
		return m, nil
	}
	var err error
	if m.rows, err = register(reg, m.rows); err != nil {
		return nil, err
	}
	if m.imports, err = register(reg, m.imports); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// register adopts an identical collector already registered on reg.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) observeRows(kind string, valid, invalid int) {
	if m == nil {
		return
	}
	m.rows.WithLabelValues(kind, "valid").Add(float64(valid))
	m.rows.WithLabelValues(kind, "invalid").Add(float64(invalid))
}

func (m *Metrics) observeCommit(kind string, seconds float64, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.imports.WithLabelValues(kind, result).Inc()
	m.duration.WithLabelValues(kind).Observe(seconds)
}
