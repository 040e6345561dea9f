package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts dispensing and ingestion activity. A nil *Metrics is valid
// and records nothing, which keeps tests quiet.
type Metrics struct {
	tasksDispensed    prometheus.Counter
	accountsDispensed prometheus.Counter
	poolRecycles      *prometheus.CounterVec
	ingestRows        *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		tasksDispensed: factory.NewCounter(prometheus.CounterOpts{
			Name: "isnad_tasks_dispensed_total",
			Help: "Tasks handed to agents, backlog re-serves included.",
		}),
		accountsDispensed: factory.NewCounter(prometheus.CounterOpts{
			Name: "isnad_accounts_dispensed_total",
			Help: "Target accounts handed to agents and marked used.",
		}),
		poolRecycles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "isnad_pool_recycles_total",
			Help: "Exhaustion-triggered bulk resets of the used flag.",
		}, []string{"pool"}),
		ingestRows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "isnad_ingest_rows_total",
			Help: "Rows accepted by the ingestion boundary.",
		}, []string{"kind"}),
	}
}

func (m *Metrics) taskDispensed() {
	if m != nil {
		m.tasksDispensed.Inc()
	}
}

func (m *Metrics) accountDispensed() {
	if m != nil {
		m.accountsDispensed.Inc()
	}
}

func (m *Metrics) poolRecycled(pool string) {
	if m != nil {
		m.poolRecycles.WithLabelValues(pool).Inc()
	}
}

func (m *Metrics) rowsIngested(kind string, n int) {
	if m != nil {
		m.ingestRows.WithLabelValues(kind).Add(float64(n))
	}
}
