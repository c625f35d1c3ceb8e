package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mansoorceksport/gymcard/internal/domain"
	"github.com/mansoorceksport/gymcard/internal/membership"
	"github.com/mansoorceksport/gymcard/internal/telemetry"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const refreshRunTimeout = 10 * time.Minute

// RefreshResult summarizes one refresh pass
type RefreshResult struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// RemainingRefresher rewrites the stored remaining figure of every member with the
// value computed for today. It keeps the scanned view current for records whose
// stored figure would otherwise only change when an admin edits them.
type RemainingRefresher struct {
	members domain.MemberRepository
	calc    *membership.Calculator
	metrics *telemetry.Metrics
	logger  *zap.Logger

	cron *cron.Cron
	mu   sync.Mutex // one pass at a time
}

func NewRemainingRefresher(
	members domain.MemberRepository,
	calc *membership.Calculator,
	metrics *telemetry.Metrics,
	logger *zap.Logger,
) *RemainingRefresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemainingRefresher{
		members: members,
		calc:    calc,
		metrics: metrics,
		logger:  logger,
	}
}

// Start schedules RefreshAll using a standard five-field cron spec
func (r *RemainingRefresher) Start(schedule string) error {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshRunTimeout)
		defer cancel()
		if _, err := r.RefreshAll(ctx); err != nil {
			r.logger.Error("scheduled remaining refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}

	r.cron = c
	c.Start()
	r.logger.Info("remaining refresher scheduled", zap.String("schedule", schedule))
	return nil
}

// Stop halts the schedule and waits for a running pass
func (r *RemainingRefresher) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}

// RefreshAll recomputes every member. Members whose figure is unchanged are skipped;
// unparseable records have their stored figure cleared.
func (r *RemainingRefresher) RefreshAll(ctx context.Context) (RefreshResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	var res RefreshResult

	members, err := r.members.List(ctx)
	if err != nil {
		r.metrics.RefreshRun(0, err)
		return res, fmt.Errorf("failed to list members: %w", err)
	}

	for _, m := range members {
		if err := ctx.Err(); err != nil {
			r.metrics.RefreshRun(res.Updated, err)
			return res, err
		}
		res.Scanned++

		fresh := r.calc.RemainingDays(m.RegisterDate, m.Duration)
		if sameRemaining(fresh, m.Remaining) {
			continue
		}
		if err := r.members.UpdateRemaining(ctx, m.ID, fresh); err != nil {
			res.Failed++
			r.logger.Warn("remaining update failed", zap.String("member_id", m.ID), zap.Error(err))
			continue
		}
		res.Updated++
	}

	r.metrics.RefreshRun(res.Updated, nil)
	r.logger.Info("remaining refresh finished",
		zap.Int("scanned", res.Scanned),
		zap.Int("updated", res.Updated),
		zap.Int("failed", res.Failed),
		zap.Duration("took", time.Since(start)),
	)
	return res, nil
}

func sameRemaining(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
