package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evergreenfarmers/storefront/internal/cart"
	"github.com/evergreenfarmers/storefront/internal/testdb"
	"github.com/evergreenfarmers/storefront/pkg/db/models"
)

func TestStaleCartJobPurgesIdleCarts(t *testing.T) {
	conn := testdb.Open(t)
	repo := cart.NewRepository(conn)
	ctx := context.Background()
	category := testdb.Category(t, conn, "Inputs")
	product := testdb.Product(t, conn, category, "Maize Seed 2kg", "100", testdb.WithStock(10))

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	stale, err := repo.GetOrCreate(ctx, "session-stale")
	require.NoError(t, err)
	require.NoError(t, repo.UpsertLine(ctx, stale.ID, product.ID, 2))
	fresh, err := repo.GetOrCreate(ctx, "session-fresh")
	require.NoError(t, err)
	require.NoError(t, repo.UpsertLine(ctx, fresh.ID, product.ID, 1))

	require.NoError(t, conn.Model(&models.Cart{}).Where("id = ?", stale.ID).
		UpdateColumn("updated_at", now.AddDate(0, 0, -45)).Error)
	require.NoError(t, conn.Model(&models.Cart{}).Where("id = ?", fresh.ID).
		UpdateColumn("updated_at", now.AddDate(0, 0, -2)).Error)

	job, err := NewStaleCartJob(StaleCartJobParams{Logger: quietLogger(), Carts: repo, Retention: 30})
	require.NoError(t, err)
	job.(*staleCartJob).now = func() time.Time { return now }
	assert.Equal(t, "stale-carts", job.Name())

	require.NoError(t, job.Run(ctx))

	var carts []models.Cart
	require.NoError(t, conn.Find(&carts).Error)
	require.Len(t, carts, 1)
	assert.Equal(t, "session-fresh", carts[0].SessionID)

	var lines int64
	require.NoError(t, conn.Model(&models.CartItem{}).Count(&lines).Error)
	assert.Equal(t, int64(1), lines)
}

func TestNewStaleCartJobDefaults(t *testing.T) {
	_, err := NewStaleCartJob(StaleCartJobParams{Logger: quietLogger()})
	assert.Error(t, err)

	job, err := NewStaleCartJob(StaleCartJobParams{Logger: quietLogger(), Carts: cart.NewRepository(testdb.Open(t))})
	require.NoError(t, err)
	assert.Equal(t, defaultCartRetentionDays, job.(*staleCartJob).retention)
}
