// Package jobs holds periodic background jobs.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"food-delivery-Orurh/internal/domain"
	"food-delivery-Orurh/internal/logx"
)

// DefaultPoolAuditSchedule runs the audit once a minute.
const DefaultPoolAuditSchedule = "@every 1m"

const auditTimeout = 10 * time.Second

type poolAuditor interface {
	AuditCourierPool(ctx context.Context) (domain.PoolAudit, error)
}

// PoolAuditJob periodically counts couriers whose availability disagrees with their
// active deliveries. It only reports; it never repairs.
type PoolAuditJob struct {
	auditor  poolAuditor
	schedule string
	cron     *cron.Cron
	gauge    *prometheus.GaugeVec
	logger   logx.Logger
}

// NewPoolAuditJob creates a pool audit job. gauge may be nil.
func NewPoolAuditJob(auditor poolAuditor, schedule string, gauge *prometheus.GaugeVec, logger logx.Logger) *PoolAuditJob {
	if schedule == "" {
		schedule = DefaultPoolAuditSchedule
	}
	return &PoolAuditJob{
		auditor:  auditor,
		schedule: schedule,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		gauge:    gauge,
		logger:   logger.With(logx.String("component", "pool_audit_job")),
	}
}

// Run schedules the audit and blocks until ctx is done, then waits for a running audit.
func (j *PoolAuditJob) Run(ctx context.Context) error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, auditTimeout)
		defer cancel()
		_, _ = j.RunOnce(runCtx)
	})
	if err != nil {
		return fmt.Errorf("pool audit schedule %q: %w", j.schedule, err)
	}

	j.cron.Start()
	j.logger.Info("pool audit job started", logx.String("schedule", j.schedule))

	<-ctx.Done()
	<-j.cron.Stop().Done()
	j.logger.Info("pool audit job stopped")
	return nil
}

// RunOnce audits the pool and reports the result.
func (j *PoolAuditJob) RunOnce(ctx context.Context) (domain.PoolAudit, error) {
	a, err := j.auditor.AuditCourierPool(ctx)
	if err != nil {
		j.logger.Error("pool audit failed", logx.Err(err))
		return domain.PoolAudit{}, err
	}

	if j.gauge != nil {
		j.gauge.WithLabelValues("stranded").Set(float64(a.Stranded))
		j.gauge.WithLabelValues("overbooked").Set(float64(a.Overbooked))
		j.gauge.WithLabelValues("leaked").Set(float64(a.Leaked))
	}
	if !a.Clean() {
		j.logger.Warn("courier pool inconsistent",
			logx.Int64("stranded", a.Stranded),
			logx.Int64("overbooked", a.Overbooked),
			logx.Int64("leaked", a.Leaked),
		)
	}
	return a, nil
}
