package observability

import "github.com/prometheus/client_golang/prometheus"

// LedgerMetrics counts ledger entry writes and deletions.
type LedgerMetrics struct {
	appended prometheus.Counter
	deleted  prometheus.Counter
}

// NewLedgerMetrics registers the ledger counters on the given registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	m := &LedgerMetrics{
		appended: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockledger_entries_appended_total",
			Help: "Ledger entries appended by document submission.",
		}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockledger_entries_deleted_total",
			Help: "Ledger entries deleted by document cancellation.",
		}),
	}
	reg.MustRegister(m.appended, m.deleted)
	return m
}

func (m *LedgerMetrics) EntriesAppended(count int) {
	m.appended.Add(float64(count))
}

func (m *LedgerMetrics) EntriesDeleted(count int) {
	m.deleted.Add(float64(count))
}
