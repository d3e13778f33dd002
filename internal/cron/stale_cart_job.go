package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/evergreenfarmers/storefront/pkg/logger"
)

const defaultCartRetentionDays = 30

type staleCartStore interface {
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

type StaleCartJobParams struct {
	Logger    *logger.Logger
	Carts     staleCartStore
	Retention int
}

// NewStaleCartJob purges carts whose session has been idle longer than the
// retention window. Cookie sessions expire client side, so these carts can
// never be reached again.
func NewStaleCartJob(params StaleCartJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultCartRetentionDays
	}
	return &staleCartJob{
		logg:      params.Logger,
		carts:     params.Carts,
		retention: retention,
		now:       time.Now,
	}, nil
}

type staleCartJob struct {
	logg      *logger.Logger
	carts     staleCartStore
	retention int
	now       func() time.Time
}

func (j *staleCartJob) Name() string { return "stale-carts" }

func (j *staleCartJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.carts.DeleteStale(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge stale carts: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"carts_deleted":  deleted,
	})
	j.logg.Info(logCtx, "cron.stale_carts_purged")
	return nil
}
