package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// SalesCommittedTotal counts committed sales by payment method.
	SalesCommittedTotal *prometheus.CounterVec
	// CheckoutRejectedTotal counts checkout rejections by reason.
	CheckoutRejectedTotal *prometheus.CounterVec
	// CommitFailuresTotal counts commit pipeline failures by pipeline and step.
	CommitFailuresTotal *prometheus.CounterVec
	// RestocksCommittedTotal counts committed purchase orders.
	RestocksCommittedTotal prometheus.Counter
	// DebtAccruedTotal accumulates debt amounts accrued by debt sales, in minor units.
	DebtAccruedTotal prometheus.Counter
	// StockLowAlertsTotal counts low-stock alerts enqueued after commits.
	StockLowAlertsTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		SalesCommittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_committed_total",
			Help:      "Count of committed sales by payment method.",
		}, []string{"method"})
		CheckoutRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_rejected_total",
			Help:      "Count of checkout rejections by reason.",
		}, []string{"reason"})
		CommitFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commit_failures_total",
			Help:      "Count of commit pipeline failures by pipeline and failing step.",
		}, []string{"pipeline", "step"})
		RestocksCommittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "restocks_committed_total",
			Help:      "Total number of committed purchase orders.",
		})
		DebtAccruedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "debt_accrued_total",
			Help:      "Total debt accrued by debt sales, in minor currency units.",
		})
		StockLowAlertsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_low_alerts_total",
			Help:      "Number of low-stock alerts enqueued after commits.",
		})

		mustRegisterCollector(reg, SalesCommittedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SalesCommittedTotal = v
			}
		})
		mustRegisterCollector(reg, CheckoutRejectedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckoutRejectedTotal = v
			}
		})
		mustRegisterCollector(reg, CommitFailuresTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CommitFailuresTotal = v
			}
		})
		mustRegisterCollector(reg, RestocksCommittedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				RestocksCommittedTotal = v
			}
		})
		mustRegisterCollector(reg, DebtAccruedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				DebtAccruedTotal = v
			}
		})
		mustRegisterCollector(reg, StockLowAlertsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				StockLowAlertsTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
