// Package report aggregates committed sales into the summaries shown on the
// dashboard. Reports are read-only and cached briefly in Redis.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/yusapos/backend-pos/internal/domain"
	"github.com/yusapos/backend-pos/internal/store"
)

// Period selects the aggregation window for a sales report.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// ErrInvalidPeriod rejects unknown period values.
var ErrInvalidPeriod = errors.New("report: invalid period")

// ParsePeriod normalises the period query parameter, defaulting to daily.
func ParsePeriod(value string) (Period, error) {
	switch Period(value) {
	case PeriodDaily, "":
		return PeriodDaily, nil
	case PeriodMonthly:
		return PeriodMonthly, nil
	case PeriodYearly:
		return PeriodYearly, nil
	default:
		return "", ErrInvalidPeriod
	}
}

// Summary aggregates the sales of one reporting window.
type Summary struct {
	Period           Period               `json:"period"`
	From             time.Time            `json:"from"`
	To               time.Time            `json:"to"`
	TransactionCount int                  `json:"transactionCount"`
	ItemsSold        int                  `json:"itemsSold"`
	Revenue          domain.Money         `json:"revenue"`
	Profit           domain.Money         `json:"profit"`
	DebtAccrued      domain.Money         `json:"debtAccrued"`
	Transactions     []domain.Transaction `json:"transactions"`
}

// Service computes sales summaries from committed transactions.
type Service struct {
	Store store.Gateway
	Cache *redis.Client
	TTL   time.Duration
	Log   zerolog.Logger
}

func (s *Service) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 30 * time.Second
	}
	return s.TTL
}

func cacheKey(period Period, anchor time.Time) string {
	return fmt.Sprintf("pos:report:%s:%s", period, anchor.Format("2006-01-02"))
}

// windowFor returns the half-open interval [from, to) covering the period
// containing the anchor instant.
func windowFor(period Period, anchor time.Time) (time.Time, time.Time) {
	loc := anchor.Location()
	switch period {
	case PeriodMonthly:
		from := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(0, 1, 0)
	case PeriodYearly:
		from := time.Date(anchor.Year(), 1, 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(1, 0, 0)
	default:
		from := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, loc)
		return from, from.AddDate(0, 0, 1)
	}
}

// lineProfit computes margin for one sold line. Products restocked before
// cost tracking existed carry a zero cost basis; those fall back to an
// estimated cost of 80% of the sale price.
func lineProfit(item domain.TransactionItem) domain.Money {
	cost := item.CostPrice
	if cost == 0 {
		cost = item.UnitPrice * 80 / 100
	}
	return (item.UnitPrice - cost) * domain.Money(item.Qty)
}

// Sales builds the summary for the period containing anchor.
func (s *Service) Sales(ctx context.Context, period Period, anchor time.Time) (Summary, error) {
	if s == nil || s.Store == nil {
		return Summary{}, errors.New("report: service not configured")
	}
	key := cacheKey(period, anchor)
	if s.Cache != nil {
		if raw, err := s.Cache.Get(ctx, key).Bytes(); err == nil {
			var cached Summary
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	from, to := windowFor(period, anchor)
	transactions, err := s.Store.ListTransactionsBetween(ctx, from, to)
	if err != nil {
		return Summary{}, fmt.Errorf("report: list transactions: %w", err)
	}
	summary := Summary{
		Period:           period,
		From:             from,
		To:               to,
		TransactionCount: len(transactions),
		Transactions:     transactions,
	}
	for _, trx := range transactions {
		summary.Revenue += trx.TotalAmount
		summary.DebtAccrued += trx.DebtAmount()
		for _, item := range trx.Items {
			summary.ItemsSold += item.Qty
			summary.Profit += lineProfit(item)
		}
	}

	if s.Cache != nil {
		if raw, err := json.Marshal(summary); err == nil {
			if err := s.Cache.Set(ctx, key, raw, s.ttl()).Err(); err != nil {
				s.Log.Warn().Err(err).Str("key", key).Msg("cache report")
			}
		}
	}
	return summary, nil
}
