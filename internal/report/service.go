// Package report produces the stock balance report from the ledger's
// multi-key aggregation.
package report

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/stockledger/stockledger/internal/ledger"
)

// Service assembles stock balance report rows, caching results between ledger
// writes and deduplicating concurrent rebuilds of the same report.
type Service struct {
	valuator *ledger.Valuator
	cache    *Cache
	group    singleflight.Group
}

// NewService builds Service. cache may be nil.
func NewService(valuator *ledger.Valuator, cache *Cache) *Service {
	return &Service{valuator: valuator, cache: cache}
}

// StockBalance returns report rows as of the given date (zero time = today).
func (s *Service) StockBalance(ctx context.Context, asOf time.Time) ([]ledger.ReportRow, error) {
	effective := ledger.EffectiveAsOf(asOf)
	key, err := s.cache.BuildKey(ctx, "report", "stock-balance", effective.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	var rows []ledger.ReportRow
	err = s.cache.FetchJSON(ctx, key, &rows, func(ctx context.Context) (interface{}, error) {
		result, err, _ := s.group.Do(key, func() (interface{}, error) {
			return s.valuator.BalanceReport(ctx, effective)
		})
		return result, err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Warm precomputes today's report into the cache. Used by the nightly job.
func (s *Service) Warm(ctx context.Context) (int, error) {
	rows, err := s.StockBalance(ctx, time.Time{})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
