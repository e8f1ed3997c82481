package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/stockledger/stockledger/internal/ledger"
	"github.com/stockledger/stockledger/internal/report"
)

type stubValuationStore struct {
	calls int
}

func (s *stubValuationStore) SumForValuation(ctx context.Context, itemCode, warehouse string, asOf time.Time) (ledger.ValuationSums, error) {
	return ledger.ValuationSums{IncomingValue: 500, IncomingQty: 5, NetQty: 5}, nil
}

func (s *stubValuationStore) BalanceGroups(ctx context.Context, asOf time.Time) ([]ledger.BalanceGroup, error) {
	s.calls++
	return []ledger.BalanceGroup{
		{ItemCode: "WIDGET", ItemName: "Widget", Warehouse: "WH-A", NetQty: 5},
	}, nil
}

func TestReportWarmupHandle(t *testing.T) {
	store := &stubValuationStore{}
	reports := report.NewService(ledger.NewValuator(store), report.NewCache(nil, time.Minute))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	job := NewReportWarmupJob(reports, logger, nil)

	task, err := NewReportWarmupTask(ReportWarmupPayload{Reason: "cron"})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, 1, store.calls)
}

func TestReportWarmupSkipsRetryOnBadPayload(t *testing.T) {
	store := &stubValuationStore{}
	reports := report.NewService(ledger.NewValuator(store), report.NewCache(nil, time.Minute))
	job := NewReportWarmupJob(reports, nil, nil)

	task := asynq.NewTask(TaskReportWarmup, []byte("{not json"))
	err := job.Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}
