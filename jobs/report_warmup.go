package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/stockledger/stockledger/internal/jobs"
	"github.com/stockledger/stockledger/internal/report"
)

// ReportWarmupJob pre-populates the stock balance report cache so the first
// morning request does not pay the aggregation cost.
type ReportWarmupJob struct {
	Reports *report.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewReportWarmupJob wires dependencies for the warmup handler.
func NewReportWarmupJob(reports *report.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{
		Reports: reports,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes report warmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("report warmup: handler not configured")
	}
	var payload ReportWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskReportWarmup)

	logger := j.logger()
	start := j.now()
	logger.Info("starting report warmup", slog.String("reason", payload.Reason))

	warmCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	rows, err := j.Reports.Warm(warmCtx)
	if err != nil {
		logger.Error("warm report cache", slog.Any("error", err))
		return tracker.End(err)
	}

	logger.Info("completed report warmup", slog.Int("rows", rows), slog.Duration("duration", time.Since(start)))
	return tracker.End(nil)
}

func (j *ReportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportWarmup))
}

func (j *ReportWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
