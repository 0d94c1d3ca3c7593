package events

// Topic constants for domain events emitted by the engine.
const (
	TopicSaleCommitted     = "sale.committed"
	TopicPurchaseCommitted = "purchase.committed"
	TopicStockLow          = "stock.low"
	TopicDebtAccrued       = "debt.accrued"
)

// DefaultTopics returns the canonical list of emitted topics.
func DefaultTopics() []string {
	return []string{
		TopicSaleCommitted,
		TopicPurchaseCommitted,
		TopicStockLow,
		TopicDebtAccrued,
	}
}
